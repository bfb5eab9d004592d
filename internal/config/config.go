package config

import (
	"os"
	"strconv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	SwaggerHost string

	// Identity verification
	InstitutionEmailDomain string
	InstitutionIDPattern   string
	ApprovalThreshold      float64

	// Listings
	MonthlyItemQuota      int
	DefaultMeetupLocation string

	// Rewards
	DonorPoints     int
	ReceiverPoints  int
	SilverThreshold int
	GoldThreshold   int

	// Image storage
	UploadDir     string
	CloudinaryURL string

	// Notification events
	KafkaBroker string
	KafkaTopic  string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		JWTSecret:   getEnv("JWT_SECRET", "change-me"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),

		InstitutionEmailDomain: getEnv("INSTITUTION_EMAIL_DOMAIN", "@minsu.edu.ph"),
		InstitutionIDPattern:   getEnv("INSTITUTION_ID_PATTERN", `^\d{4}-\d{4,6}$`),
		ApprovalThreshold:      getEnvFloat("APPROVAL_THRESHOLD", 70.0),

		MonthlyItemQuota:      getEnvInt("MONTHLY_ITEM_QUOTA", 5),
		DefaultMeetupLocation: getEnv("DEFAULT_MEETUP_LOCATION", "Arawatan Corner"),

		DonorPoints:     getEnvInt("DONOR_POINTS", 10),
		ReceiverPoints:  getEnvInt("RECEIVER_POINTS", 5),
		SilverThreshold: getEnvInt("SILVER_THRESHOLD", 100),
		GoldThreshold:   getEnvInt("GOLD_THRESHOLD", 500),

		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),

		KafkaBroker: os.Getenv("KAFKA_BROKER"),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "campusshare.notifications"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
