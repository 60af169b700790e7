package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultDatabase     = "school_mongo"
	DefaultCollection   = "cars"
	DefaultPort         = "8080"
	DefaultMaxBodyBytes = int64(1 << 20)
	DefaultCrashLogDir  = "/app/logs/crash/"
	DefaultLogLevel     = "info"
)

// Config holds everything the server reads from the environment at startup.
type Config struct {
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	Port            string
	MaxBodyBytes    int64
	CrashLogDir     string
	LogLevel        string

	AwsRegion       string
	AwsExportBucket string
	AwsAccessKey    string
	AwsSecretKey    string
	AwsS3Endpoint   string
}

// Load reads envFile (if it exists) into the process environment and builds a Config from it.
// A missing env file is fine, the values may already be set in the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s file: %w", envFile, err)
		}
	}

	cfg := &Config{
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   getenvDefault("MONGODB_DATABASE", DefaultDatabase),
		MongoCollection: getenvDefault("MONGODB_COLLECTION", DefaultCollection),
		Port:            getenvDefault("PORT", DefaultPort),
		MaxBodyBytes:    DefaultMaxBodyBytes,
		CrashLogDir:     getenvDefault("CRASH_LOG_DIR", DefaultCrashLogDir),
		LogLevel:        getenvDefault("LOG_LEVEL", DefaultLogLevel),
		AwsRegion:       os.Getenv("AWS_REGION"),
		AwsExportBucket: os.Getenv("AWS_S3_EXPORT_BUCKET"),
		AwsAccessKey:    os.Getenv("AWS_ACCESS_KEY"),
		AwsSecretKey:    os.Getenv("AWS_SECRET_KEY"),
		AwsS3Endpoint:   os.Getenv("AWS_S3_ENDPOINT"),
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("could not get mongodb uri environment variable")
	}

	if raw := os.Getenv("MAX_BODY_BYTES"); raw != "" {
		maxBytes, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || maxBytes <= 0 {
			return nil, fmt.Errorf("MAX_BODY_BYTES must be a positive integer, got %q", raw)
		}
		cfg.MaxBodyBytes = maxBytes
	}

	if cfg.AwsExportBucket != "" && cfg.AwsRegion == "" {
		return nil, errors.New("AWS_REGION must be set when AWS_S3_EXPORT_BUCKET is set")
	}

	return cfg, nil
}

// ExportEnabled reports whether snapshot exports to S3 are configured.
func (c *Config) ExportEnabled() bool {
	return c.AwsExportBucket != ""
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func getenvDefault(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
