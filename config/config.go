package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// Values come from the environment (optionally a .env file) with defaults.
type Config struct {
	FFmpegPath       string
	OutputSampleRate int    // Sample rate of rendered mixdowns, default 44100
	DecodeSampleRate int    // Sample rate assets are decoded at
	ProbeTimeoutMs   int    // Bound for best-effort duration probing
	UploadDir        string // Base directory for all uploads
	AudioUploadDir   string // Subdirectory for audio files: UploadDir/audio
	MixdownDir       string // Local scratch directory for rendered mixdowns
	WatchIngestDir   bool   // Auto-ingest audio files dropped into AudioUploadDir

	SeparationAPIURL string // Stem separation collaborator; empty disables it

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	JWTSecret string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	uploadBase := getEnv("UPLOAD_DIR", "uploads")

	return &Config{
		FFmpegPath:       getEnv("FFMPEG_PATH", "ffmpeg"),
		OutputSampleRate: getEnvInt("OUTPUT_SAMPLE_RATE", 44100),
		DecodeSampleRate: getEnvInt("DECODE_SAMPLE_RATE", 44100),
		ProbeTimeoutMs:   getEnvInt("PROBE_TIMEOUT_MS", 5000),
		UploadDir:        uploadBase,
		AudioUploadDir:   filepath.Join(uploadBase, "audio"),
		MixdownDir:       filepath.Join(uploadBase, "mixdowns"),
		WatchIngestDir:   getEnvBool("WATCH_INGEST_DIR", true),

		SeparationAPIURL: getEnv("SEPARATION_API_URL", ""),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"), // no hardcoded default for secrets
		DBName:     getEnv("DB_NAME", "mashfm"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "mashfm"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
	}
}
