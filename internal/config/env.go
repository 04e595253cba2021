package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string
	AwsAccessKey  string
	AwsSecretKey  string
	AwsRegion     string
	BucketName    string
	AIAPIKey      string
	GenModel      string
	VisionModel   string
	RunwayAPIKey  string
	RunwayBaseURL string
	MaxUploadMB   int
	Port          string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		AwsAccessKey:  getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:  getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:     getEnv("AWS_REGION", "ap-northeast-2"),
		BucketName:    getEnv("BUCKET_NAME", "pagecraft-media"),
		AIAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GenModel:      getEnv("GEN_MODEL", "gemini-1.5-flash"),
		VisionModel:   getEnv("VISION_MODEL", "gemini-1.5-pro"),
		RunwayAPIKey:  getEnv("RUNWAY_API_KEY", ""),
		RunwayBaseURL: getEnv("RUNWAY_BASE_URL", "https://api.dev.runwayml.com"),
		MaxUploadMB:   getEnvInt("MAX_UPLOAD_MB", 10),
		Port:          getEnv("PORT", "5000"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
