package main

import (
	"context"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"campusshare/internal/config"
	"campusshare/internal/db"
	"campusshare/internal/model"
)

// seedUser is one demo account to create.
type seedUser struct {
	FirstName string
	LastName  string
	Email     string
	StudentID string
	Campus    string
	UserType  model.UserType
	Verified  bool
	Points    int
	Role      string
}

var seedUsers = []seedUser{
	{"Maria", "Santos", "maria.santos@minsu.edu.ph", "2021-10234", "main", model.UserTypeStudent, true, 120, "user"},
	{"Juan", "Dela Cruz", "juan.delacruz@minsu.edu.ph", "2022-40011", "bongabong", model.UserTypeStudent, true, 15, "user"},
	{"Elena", "Reyes", "elena.reyes@minsu.edu.ph", "2010-5001", "main", model.UserTypeFaculty, true, 540, "user"},
	{"Ramon", "Bautista", "ramon.bautista@minsu.edu.ph", "2019-77120", "victoria", model.UserTypeStaff, false, 0, "user"},
	{"Admin", "Account", "admin@minsu.edu.ph", "2000-0001", "main", model.UserTypeStaff, true, 0, "admin"},
}

type seedItem struct {
	OwnerEmail  string
	Title       string
	Description string
	Category    string
	Condition   string
	Campus      string
}

var seedItems = []seedItem{
	{"maria.santos@minsu.edu.ph", "Calculus Textbook 8th Edition", "Lightly used, no markings.", "books", "good", "main"},
	{"maria.santos@minsu.edu.ph", "Scientific Calculator", "Casio fx-991, works fine.", "electronics", "fair", "main"},
	{"elena.reyes@minsu.edu.ph", "Lab Coat Size M", "Worn one semester.", "clothing", "good", "main"},
	{"juan.delacruz@minsu.edu.ph", "Drafting Table", "Sturdy, some scratches.", "furniture", "fair", "bongabong"},
}

const seedPassword = "password123"

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.ItemImage{},
		&model.Verification{},
		&model.Transaction{},
		&model.Notification{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), 10)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	usersByEmail := make(map[string]*model.User, len(seedUsers))
	created, skipped := 0, 0
	for _, su := range seedUsers {
		var existing model.User
		if err := gormDB.WithContext(ctx).Where("email = ?", su.Email).First(&existing).Error; err == nil {
			usersByEmail[su.Email] = &existing
			skipped++
			continue
		}

		status := model.VerificationStatusNone
		if su.Verified {
			status = model.VerificationStatusApproved
		}
		tier := model.TierBronze
		if su.Points >= cfg.GoldThreshold {
			tier = model.TierGold
		} else if su.Points >= cfg.SilverThreshold {
			tier = model.TierSilver
		}

		user := &model.User{
			FirstName:          su.FirstName,
			LastName:           su.LastName,
			Email:              su.Email,
			PasswordHash:       string(hash),
			StudentID:          su.StudentID,
			Campus:             su.Campus,
			UserType:           su.UserType,
			IsVerified:         su.Verified,
			VerificationStatus: status,
			Points:             su.Points,
			Tier:               tier,
			Role:               su.Role,
		}
		if err := gormDB.WithContext(ctx).Create(user).Error; err != nil {
			log.Fatalf("Failed to create user %s: %v", su.Email, err)
		}
		usersByEmail[su.Email] = user
		created++
	}
	log.Printf("Users: %d created, %d already present", created, skipped)

	created, skipped = 0, 0
	for _, si := range seedItems {
		owner, ok := usersByEmail[si.OwnerEmail]
		if !ok {
			log.Printf("Skipping item %q: owner %s not found", si.Title, si.OwnerEmail)
			skipped++
			continue
		}

		var count int64
		gormDB.WithContext(ctx).Model(&model.Item{}).
			Where("user_id = ? AND title = ?", owner.ID, si.Title).
			Count(&count)
		if count > 0 {
			skipped++
			continue
		}

		item := &model.Item{
			UserID:         owner.ID,
			Title:          si.Title,
			Description:    si.Description,
			Category:       si.Category,
			Condition:      si.Condition,
			Campus:         si.Campus,
			MeetupLocation: cfg.DefaultMeetupLocation,
			Status:         model.ItemStatusActive,
			IsVerified:     true,
			PostedAt:       time.Now(),
		}
		if err := gormDB.WithContext(ctx).Create(item).Error; err != nil {
			log.Fatalf("Failed to create item %q: %v", si.Title, err)
		}
		created++
	}
	log.Printf("Items: %d created, %d skipped", created, skipped)

	log.Println("Seed completed")
}
