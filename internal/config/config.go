package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	CORS    CORSConfig
	Convert ConvertConfig
	S3      S3Config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ConvertConfig holds conversion settings.
type ConvertConfig struct {
	IncludeNarrative bool   `mapstructure:"include_narrative"`
	MaxUploadMB      int64  `mapstructure:"max_upload_mb" validate:"min=1"`
	Concurrency      int    `mapstructure:"concurrency" validate:"min=1,max=64"`
	Namespace        string `mapstructure:"namespace" validate:"required"`
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *ConvertConfig) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// S3Config holds AWS S3 settings for the object source.
type S3Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region" validate:"required_if=Enabled true"`
	Bucket        string `mapstructure:"bucket" validate:"required_if=Enabled true"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry" validate:"min=60"`
}

// Load reads configuration from a .env file, when present, and from
// environment variables with the NFSE_ prefix.
func Load() (*Config, error) {
	// Missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("NFSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", "https://vertex-convert.netlify.app")

	// Convert defaults
	v.SetDefault("convert.include_narrative", true)
	v.SetDefault("convert.max_upload_mb", 50)
	v.SetDefault("convert.concurrency", 4)
	v.SetDefault("convert.namespace", "http://nfse.goiania.go.gov.br/xsd/nfse_gyn_v02.xsd")

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "NFSE_SERVER_PORT",
		"server.read_timeout":       "NFSE_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "NFSE_SERVER_WRITE_TIMEOUT",
		"server.environment":        "NFSE_SERVER_ENVIRONMENT",
		"log.level":                 "NFSE_LOG_LEVEL",
		"log.format":                "NFSE_LOG_FORMAT",
		"cors.allowed_origins":      "NFSE_CORS_ALLOWED_ORIGINS",
		"convert.include_narrative": "NFSE_CONVERT_INCLUDE_NARRATIVE",
		"convert.max_upload_mb":     "NFSE_CONVERT_MAX_UPLOAD_MB",
		"convert.concurrency":       "NFSE_CONVERT_CONCURRENCY",
		"convert.namespace":         "NFSE_CONVERT_NAMESPACE",
		"s3.enabled":                "NFSE_S3_ENABLED",
		"s3.region":                 "NFSE_S3_REGION",
		"s3.bucket":                 "NFSE_S3_BUCKET",
		"s3.endpoint":               "NFSE_S3_ENDPOINT",
		"s3.access_key":             "NFSE_S3_ACCESS_KEY",
		"s3.secret_key":             "NFSE_S3_SECRET_KEY",
		"s3.presign_expiry":         "NFSE_S3_PRESIGN_EXPIRY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Render/Heroku set a PORT env var. Use it if NFSE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("NFSE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  strings.ToLower(v.GetString("log.level")),
		Format: strings.ToLower(v.GetString("log.format")),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Convert = ConvertConfig{
		IncludeNarrative: v.GetBool("convert.include_narrative"),
		MaxUploadMB:      v.GetInt64("convert.max_upload_mb"),
		Concurrency:      v.GetInt("convert.concurrency"),
		Namespace:        v.GetString("convert.namespace"),
	}
	cfg.S3 = S3Config{
		Enabled:       v.GetBool("s3.enabled"),
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg against its validate tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
