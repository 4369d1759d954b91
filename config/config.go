package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppMode string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3Endpoint   string
	S3PublicBase string

	// UploadPrefix is the key namespace every generated object key lives
	// under. Keys never contain user-controlled path components.
	UploadPrefix string

	// PresignExpiryMin applies to direct single-object PUT URLs,
	// PartURLExpiryMin to individual multipart part URLs.
	PresignExpiryMin int
	PartURLExpiryMin int

	// MaxUploadBytes of 0 means unlimited. The check still runs so the
	// ceiling can be re-enabled without a code change.
	MaxUploadBytes int64

	AccessCodeHash   string
	SessionSecret    string
	SessionExpiryMin int

	JanitorMaxAgeMin   int
	JanitorIntervalMin int
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort: getEnv("APP_PORT", "8080"),
		AppMode: getEnv("APP_MODE", "debug"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "wedding_album"),
		DBPort:     getEnv("DB_PORT", "5432"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		S3Region:     getEnv("S3_REGION", ""),
		S3Bucket:     getEnv("S3_BUCKET", ""),
		S3AccessKey:  getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:  getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),
		S3PublicBase: getEnv("S3_PUBLIC_BASE", ""),

		UploadPrefix: getEnv("UPLOAD_PREFIX", "uploads"),

		PresignExpiryMin: getEnvAsInt("PRESIGN_EXPIRY_MIN", 15),
		PartURLExpiryMin: getEnvAsInt("PART_URL_EXPIRY_MIN", 60),

		MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 0),

		AccessCodeHash:   getEnv("ACCESS_CODE_HASH", ""),
		SessionSecret:    getEnv("SESSION_SECRET", "change-me"),
		SessionExpiryMin: getEnvAsInt("SESSION_EXPIRY_MIN", 720),

		JanitorMaxAgeMin:   getEnvAsInt("JANITOR_MAX_AGE_MIN", 1440),
		JanitorIntervalMin: getEnvAsInt("JANITOR_INTERVAL_MIN", 60),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return fallback
}
