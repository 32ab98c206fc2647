package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Storage    StorageConfig
	Cloudinary CloudinaryConfig
	MinIO      MinIOConfig
	Proximity  ProximityConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver          string // postgres | mysql | memory
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// RedisConfig backs rate limits and cross-instance message events. An empty
// Addr keeps both in process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	RequestsPerMin        int
	LocationUpdatesPerMin int
	MessagesPerMin        int
}

// StorageConfig picks the media backend: cloudinary, minio or none.
type StorageConfig struct {
	Backend string
	Folder  string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string
}

type ProximityConfig struct {
	// Range is the degree delta of the nearby bounding box. It trades
	// precision against privacy for the whole service.
	Range float64
	// MaxRange caps the range a client may ask for on GET /nearby.
	MaxRange     float64
	FeedPageSize int
}

type LogConfig struct {
	Level string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            getEnv("ENV", "development"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DATABASE_DRIVER", "postgres"),
			DSN:             getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=nearby port=5432 sslmode=disable"),
			MaxIdleConns:    getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DATABASE_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_SECRET", "change-me-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", time.Hour),
			Issuer:       getEnv("JWT_ISSUER", "nearby"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMin:        getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MIN", 100),
			LocationUpdatesPerMin: getEnvAsInt("RATE_LIMIT_LOCATION_PER_MIN", 6),
			MessagesPerMin:        getEnvAsInt("RATE_LIMIT_MESSAGES_PER_MIN", 30),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "none"),
			Folder:  getEnv("STORAGE_FOLDER", "nearby"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "nearby-media"),
			Region:    getEnv("MINIO_REGION", "us-east-1"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		},
		Proximity: ProximityConfig{
			Range:        getEnvAsFloat("PROXIMITY_RANGE_DEGREES", 0.02),
			MaxRange:     getEnvAsFloat("PROXIMITY_MAX_RANGE_DEGREES", 0.5),
			FeedPageSize: getEnvAsInt("FEED_PAGE_SIZE", 50),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if !finiteNonNegative(c.Proximity.Range) {
		return fmt.Errorf("PROXIMITY_RANGE_DEGREES must be a finite number >= 0, got %v", c.Proximity.Range)
	}
	if !finiteNonNegative(c.Proximity.MaxRange) || c.Proximity.MaxRange < c.Proximity.Range {
		return fmt.Errorf("PROXIMITY_MAX_RANGE_DEGREES must be finite and >= PROXIMITY_RANGE_DEGREES, got %v", c.Proximity.MaxRange)
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "memory":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	switch c.Storage.Backend {
	case "none", "":
	case "cloudinary":
		if c.Cloudinary.CloudName == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME is required for STORAGE_BACKEND=cloudinary")
		}
	case "minio":
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("MINIO_ENDPOINT and MINIO_BUCKET are required for STORAGE_BACKEND=minio")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.Server.Env == "production" && c.JWT.AccessSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
