package repository

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campusshare/internal/model"
)

// newTestDB opens an isolated in-memory sqlite database with the full schema.
// The DSN is derived from the test name so parallel tests do not share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.ItemImage{},
		&model.Verification{},
		&model.Transaction{},
		&model.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: "x",
		StudentID:    "2021-10234",
		Campus:       "main",
		UserType:     model.UserTypeStudent,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestItem(t *testing.T, db *gorm.DB, ownerID uint, mutate func(*model.Item)) *model.Item {
	t.Helper()
	item := &model.Item{
		UserID:         ownerID,
		Title:          "Calculus Textbook",
		Description:    "Lightly used.",
		Category:       "books",
		Condition:      "good",
		Campus:         "main",
		MeetupLocation: "Arawatan Corner",
		Status:         model.ItemStatusActive,
	}
	if mutate != nil {
		mutate(item)
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}
