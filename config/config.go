package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Issue sources.
const (
	SourceAPI    = "api"
	SourceMongo  = "mongo"
	SourceMemory = "memory"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Environment string
	Domain      string
	Port        string

	// Issues
	IssueSource string
	IssueAPIURL string
	SeedFile    string

	// Database
	MongoURI      string
	MongoDatabase string

	// Redis
	RedisAddress  string
	RedisPassword string

	// Sessions
	JWTSecret  string
	SessionTTL time.Duration
	LoginDelay time.Duration

	MutationLimit       int
	MutationLimitQueue  string
	MutationLimitWindow time.Duration

	CacheTTL  time.Duration
	CacheSize int

	CORSOrigins []string

	// S3 storage for resolution images
	S3Bucket    string
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	LogDir   string
	Timezone string
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("GO_ENV", "development"),
		Domain:      getEnv("DOMAIN", ""),
		Port:        getEnv("PORT", "8081"),

		IssueSource: strings.ToLower(getEnv("ISSUE_SOURCE", SourceAPI)),
		IssueAPIURL: getEnv("ISSUE_API_URL", "http://localhost:8080/api"),
		SeedFile:    getEnv("SEED_FILE", ""),

		MongoURI:      getEnv("MONGODB_URI", ""),
		MongoDatabase: getEnv("MONGODB_DATABASE", "mydb"),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: getEnvAsDuration("SESSION_TTL", 8*time.Hour),
		LoginDelay: getEnvAsDuration("LOGIN_DELAY", 1500*time.Millisecond),

		MutationLimit:       getEnvAsInt("MUTATION_LIMIT", 0),
		MutationLimitQueue:  getEnv("REDIS_QUEUE_FOR_MUTATION_LIMIT", "civicsync:mutations"),
		MutationLimitWindow: getEnvAsDuration("MUTATION_LIMIT_WINDOW", time.Hour),

		CacheTTL:  getEnvAsDuration("CACHE_TTL", 5*time.Minute),
		CacheSize: getEnvAsInt("CACHE_SIZE", 256),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),

		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "ap-south-1"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3PublicURL: getEnv("S3_PUBLIC_URL", ""),

		LogDir:   getEnv("LOG_DIR", ""),
		Timezone: getEnv("TZ_NAME", ""),
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings the chosen issue source depends on.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	switch c.IssueSource {
	case SourceAPI:
		if c.IssueAPIURL == "" {
			return fmt.Errorf("ISSUE_API_URL is required for the %s source", SourceAPI)
		}
	case SourceMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("please define the MONGODB_URI environment variable")
		}
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the %s source", SourceMongo)
		}
	case SourceMemory:
	default:
		return fmt.Errorf("unknown ISSUE_SOURCE %q", c.IssueSource)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("CACHE_SIZE must be positive")
	}
	return nil
}

func (c *Config) Production() bool {
	return c.Environment == "production"
}

// Location resolves TZ_NAME, falling back to the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
