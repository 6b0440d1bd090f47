package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type MongoConfig struct {
	URI         string
	Database    string
	Collections Collections
}

// Collections holds the collection name for every stored resource.
type Collections struct {
	Lands         string
	Houses        string
	Apartments    string
	Users         string
	Payments      string
	Favorites     string
	Announcements string
	Teams         string
	Inspections   string
}

type JWTConfig struct {
	Secret       string
	Expiry       time.Duration
	CookieSecure bool
}

type RedisConfig struct {
	Addr     string
	Password string
	CacheTTL time.Duration
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether all credentials needed to talk to the CDN are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type LogConfig struct {
	Level string
	JSON  bool
}

type FluentBitConfig struct {
	Enabled bool
	Host    string
	Port    int
	Level   string
}

type Config struct {
	AppName           string
	Env               string
	Port              string
	CORSOrigins       []string
	PublicBaseURL     string
	ResetTokenTTL     time.Duration
	AdminDashboardDir string

	Mongo      MongoConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Cloudinary CloudinaryConfig
	SMTP       SMTPConfig
	Log        LogConfig
	FluentBit  FluentBitConfig
}

// Load reads the configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		AppName:           getEnv("APP_NAME", "estatehub"),
		Env:               getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
		PublicBaseURL:     strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:3000"), "/"),
		ResetTokenTTL:     time.Duration(getEnvAsInt("RESET_TOKEN_TTL_MINUTES", 30)) * time.Minute,
		AdminDashboardDir: os.Getenv("ADMIN_DASHBOARD_DIR"),
	}

	cfg.Mongo = MongoConfig{
		URI:      os.Getenv("MONGODB_URI"),
		Database: getEnv("MONGODB_DATABASE", "estatehub"),
		Collections: Collections{
			Lands:         getEnv("MONGODB_COLLECTION_LANDS", "lands"),
			Houses:        getEnv("MONGODB_COLLECTION_HOUSES", "houses"),
			Apartments:    getEnv("MONGODB_COLLECTION_APARTMENTS", "apartments"),
			Users:         getEnv("MONGODB_COLLECTION_USERS", "users"),
			Payments:      getEnv("MONGODB_COLLECTION_PAYMENTS", "payments"),
			Favorites:     getEnv("MONGODB_COLLECTION_FAVORITES", "favorites"),
			Announcements: getEnv("MONGODB_COLLECTION_ANNOUNCEMENTS", "announcements"),
			Teams:         getEnv("MONGODB_COLLECTION_TEAMS", "teams"),
			Inspections:   getEnv("MONGODB_COLLECTION_INSPECTIONS", "inspections"),
		},
	}

	cfg.JWT = JWTConfig{
		Secret:       os.Getenv("JWT_SECRET"),
		Expiry:       time.Duration(getEnvAsInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		CookieSecure: getEnvAsBool("COOKIE_SECURE", false),
	}

	cfg.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		CacheTTL: time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 60)) * time.Second,
	}

	cfg.Cloudinary = CloudinaryConfig{
		CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		Folder:    getEnv("CLOUDINARY_FOLDER", "estatehub"),
	}

	cfg.SMTP = SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     getEnvAsInt("SMTP_PORT", 587),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}

	cfg.Log = LogConfig{
		Level: getEnv("LOG_LEVEL", "debug"),
		JSON:  getEnvAsBool("LOG_JSON", false),
	}

	cfg.FluentBit = FluentBitConfig{
		Enabled: getEnvAsBool("FLUENTBIT_ENABLED", false),
		Host:    os.Getenv("FLUENTBIT_HOST"),
		Port:    getEnvAsInt("FLUENTBIT_PORT", 24224),
		Level:   getEnv("FLUENTBIT_LOG_LEVEL", "info"),
	}
	if cfg.FluentBit.Enabled && cfg.FluentBit.Host == "" {
		log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
		cfg.FluentBit.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Mongo.URI == "" {
		errs = append(errs, fmt.Errorf("MONGODB_URI environment variable is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, fmt.Errorf("JWT_SECRET environment variable is required"))
	}
	if c.JWT.Expiry <= 0 {
		errs = append(errs, fmt.Errorf("JWT_EXPIRY_HOURS must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: %s=%q is not an int, using default %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: %s=%q is not a bool, using default %t", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
