// Package config loads service configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"nutrisnap-backend/models"
	"nutrisnap-backend/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Storage StorageConfig `mapstructure:"storage"`
	Recipes RecipesConfig `mapstructure:"recipes"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GeminiConfig contains generative-language API configuration
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Transport   string        `mapstructure:"transport"`
	VisionModel string        `mapstructure:"vision_model"`
	RecipeModel string        `mapstructure:"recipe_model"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// StorageConfig contains persistence configuration
type StorageConfig struct {
	Type         string `mapstructure:"type"`
	LocalPath    string `mapstructure:"local_path"`
	Secret       string `mapstructure:"secret"`
	S3Bucket     string `mapstructure:"s3_bucket"`
	S3Prefix     string `mapstructure:"s3_prefix"`
	S3Endpoint   string `mapstructure:"s3_endpoint"`
	AWSRegion    string `mapstructure:"aws_region"`
	AWSAccessKey string `mapstructure:"aws_access_key_id"`
	AWSSecretKey string `mapstructure:"aws_secret_access_key"`
	DatabaseURL  string `mapstructure:"database_url"`
	RedisURL     string `mapstructure:"redis_url"`
	SQLitePath   string `mapstructure:"sqlite_path"`
}

// RecipesConfig controls recipe batch sizes. MinResults of zero means the
// requested count is the minimum.
type RecipesConfig struct {
	DefaultCount int `mapstructure:"default_count"`
	MinResults   int `mapstructure:"min_results"`
}

// LogConfig contains logger configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Development bool   `mapstructure:"development"`
}

// Transports accepted by gemini.transport
const (
	TransportREST = "rest"
	TransportSDK  = "sdk"
)

// envBindings maps config keys to the environment variables they are read from
var envBindings = map[string]string{
	"server.port":                   "PORT",
	"server.max_upload_bytes":       "MAX_UPLOAD_BYTES",
	"server.shutdown_timeout":       "SHUTDOWN_TIMEOUT",
	"gemini.api_key":                "GEMINI_API_KEY",
	"gemini.base_url":               "GEMINI_BASE_URL",
	"gemini.transport":              "GEMINI_TRANSPORT",
	"gemini.vision_model":           "GEMINI_VISION_MODEL",
	"gemini.recipe_model":           "GEMINI_RECIPE_MODEL",
	"gemini.timeout":                "GEMINI_TIMEOUT",
	"storage.type":                  "STORAGE_TYPE",
	"storage.local_path":            "STORAGE_LOCAL_PATH",
	"storage.secret":                "STORAGE_SECRET",
	"storage.s3_bucket":             "AWS_S3_BUCKET",
	"storage.s3_prefix":             "AWS_S3_PREFIX",
	"storage.s3_endpoint":           "AWS_S3_ENDPOINT",
	"storage.aws_region":            "AWS_REGION",
	"storage.aws_access_key_id":     "AWS_ACCESS_KEY_ID",
	"storage.aws_secret_access_key": "AWS_SECRET_ACCESS_KEY",
	"storage.database_url":          "DATABASE_URL",
	"storage.redis_url":             "REDIS_URL",
	"storage.sqlite_path":           "SQLITE_PATH",
	"recipes.default_count":         "RECIPES_DEFAULT_COUNT",
	"recipes.min_results":           "RECIPES_MIN_RESULTS",
	"log.level":                     "LOG_LEVEL",
	"log.format":                    "LOG_FORMAT",
	"log.development":               "LOG_DEVELOPMENT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.transport", TransportREST)
	v.SetDefault("gemini.vision_model", models.DefaultModel)
	v.SetDefault("gemini.recipe_model", models.DefaultModel)
	v.SetDefault("gemini.timeout", 60*time.Second)

	v.SetDefault("storage.type", string(storage.StorageTypeLocal))
	v.SetDefault("storage.local_path", "./data/buckets")
	v.SetDefault("storage.aws_region", "us-east-1")
	v.SetDefault("storage.sqlite_path", "./data/nutrisnap.db")

	v.SetDefault("recipes.default_count", 5)
	v.SetDefault("recipes.min_results", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.development", false)
}

// Load reads .env (current directory, then the project root relative to
// cmd/<binary>/) and then the environment. Missing .env files are not an
// error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load("../../.env")
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only
func FromEnv() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail much later
func (c *Config) Validate() error {
	c.Gemini.Transport = strings.ToLower(strings.TrimSpace(c.Gemini.Transport))
	switch c.Gemini.Transport {
	case TransportREST, TransportSDK:
	default:
		return fmt.Errorf("invalid GEMINI_TRANSPORT %q: want %q or %q", c.Gemini.Transport, TransportREST, TransportSDK)
	}

	switch storage.StorageType(strings.ToLower(c.Storage.Type)) {
	case storage.StorageTypeMemory, storage.StorageTypeNone, storage.StorageTypeLocal,
		storage.StorageTypeS3, storage.StorageTypePostgres, storage.StorageTypeRedis,
		storage.StorageTypeSQLite:
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q", c.Storage.Type)
	}

	if c.Recipes.DefaultCount <= 0 || c.Recipes.DefaultCount > models.MaxRecipeCount {
		return fmt.Errorf("RECIPES_DEFAULT_COUNT must be between 1 and %d, got %d", models.MaxRecipeCount, c.Recipes.DefaultCount)
	}
	if c.Recipes.MinResults < 0 || c.Recipes.MinResults > models.MaxRecipeCount {
		return fmt.Errorf("RECIPES_MIN_RESULTS must be between 0 and %d, got %d", models.MaxRecipeCount, c.Recipes.MinResults)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.Server.MaxUploadBytes)
	}
	return nil
}

// StorageBackend converts the storage section for storage.NewStorage
func (c *Config) StorageBackend() storage.StorageConfig {
	return storage.StorageConfig{
		Type:         storage.StorageType(strings.ToLower(c.Storage.Type)),
		LocalPath:    c.Storage.LocalPath,
		S3Bucket:     c.Storage.S3Bucket,
		S3Prefix:     c.Storage.S3Prefix,
		S3Region:     c.Storage.AWSRegion,
		S3Endpoint:   c.Storage.S3Endpoint,
		AWSAccessKey: c.Storage.AWSAccessKey,
		AWSSecretKey: c.Storage.AWSSecretKey,
		DatabaseURL:  c.Storage.DatabaseURL,
		RedisURL:     c.Storage.RedisURL,
		SQLitePath:   c.Storage.SQLitePath,
	}
}
