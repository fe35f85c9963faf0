package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port          string
	JWTSecret     string
	JWTExpiresIn  string
	AdminPassword string
	NodeEnv       string
	DataDir       string
	UploadsDir    string

	// NormalizerURL/Key/Model configure the LM provider component F talks to.
	// An empty NormalizerURL means the Normalizer runs in rule-based-only mode.
	NormalizerURL   string
	NormalizerKey   string
	NormalizerModel string

	// CategoryServiceURL points the category taxonomy service at a remote
	// API; empty means fallback-table-only.
	CategoryServiceURL string

	// RedisAddr, when set, backs the normalizer cache with a shared store
	// instead of the process-local one, for multi-host deployments.
	RedisAddr string

	// GCSBucket and CropEnabled configure the optional bbox-cropper
	// collaborator; cropping is skipped entirely when CropEnabled is false.
	GCSBucket   string
	CropEnabled bool

	// IMAP* configure the optional email-intake stand-in (cmd/ingest-email).
	IMAPHost     string
	IMAPUser     string
	IMAPPassword string
	IMAPMailbox  string
}

var AppConfig *Config

func Load() *Config {
	config := &Config{
		Port:          getEnv("PORT", "3001"),
		JWTSecret:     getJWTSecret(),
		JWTExpiresIn:  getEnv("JWT_EXPIRES_IN", "168h"), // 7 days
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		NodeEnv:       getEnv("NODE_ENV", "development"),
		DataDir:       getEnv("DATA_DIR", "./data"),
		UploadsDir:    getEnv("UPLOADS_DIR", "./uploads"),

		NormalizerURL:   getEnv("SCANNER_NORMALIZER_URL", ""),
		NormalizerKey:   os.Getenv("SCANNER_NORMALIZER_KEY"),
		NormalizerModel: getEnv("SCANNER_NORMALIZER_MODEL", "gpt-4o-mini"),

		CategoryServiceURL: getEnv("SCANNER_CATEGORY_SERVICE_URL", ""),
		RedisAddr:          getEnv("SCANNER_REDIS_ADDR", ""),

		GCSBucket:   getEnv("SCANNER_GCS_BUCKET", ""),
		CropEnabled: getEnvBool("SCANNER_CROP_ENABLED", false),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: os.Getenv("IMAP_PASSWORD"),
		IMAPMailbox:  getEnv("IMAP_MAILBOX", "INBOX"),
	}
	AppConfig = config
	return config
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getJWTSecret() string {
	secret := os.Getenv("JWT_SECRET")
	if secret != "" {
		return secret
	}

	// In production, warn about missing JWT_SECRET
	if os.Getenv("NODE_ENV") == "production" {
		log.Println("⚠️ WARNING: JWT_SECRET not set in production. Using generated secret (will change on restart).")
	}

	// Generate a random secret
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal("Failed to generate JWT secret:", err)
	}
	return hex.EncodeToString(bytes)
}
