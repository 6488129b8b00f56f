package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret          string
	JWTExpirationHours time.Duration

	UploadDir string

	AWSRegion        string
	LPRMinConfidence float32
	LPRTimeout       time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	minConfidence, _ := strconv.ParseFloat(getEnv("LPR_MIN_CONFIDENCE", "80"), 32)
	lprTimeoutSec, _ := strconv.Atoi(getEnv("LPR_TIMEOUT_SECONDS", "15"))

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "parking_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpirationHours: time.Duration(jwtExpHours) * time.Hour,

		UploadDir: getEnv("UPLOAD_DIR", "uploads/vehicles"),

		AWSRegion:        getEnv("AWS_REGION", "ap-southeast-1"),
		LPRMinConfidence: float32(minConfidence),
		LPRTimeout:       time.Duration(lprTimeoutSec) * time.Second,
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
