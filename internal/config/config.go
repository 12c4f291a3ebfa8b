package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host string
		Port string
	}

	GRPC struct {
		Host string
		Port string
	}

	// Storage points at any S3-compatible bucket (AWS, Spaces, MinIO).
	Storage struct {
		Driver     string // s3 or memory
		Endpoint   string
		Region     string
		Bucket     string
		AccessKey  string
		SecretKey  string
		PresignTTL time.Duration
	}

	Quota struct {
		FreeDailyUploads     int
		PremiumDailyUploads  int
		FreeStorageBytes     int64
		PremiumStorageBytes  int64
		FreeDailySearches    int
		PremiumDailySearches int
		PostLifetime         time.Duration
		MaxUploadSizeBytes   int64
	}
}

func New() *Config {
	// .env is optional; real environment always wins
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "development")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "api")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "cardswap")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// HTTP + gRPC
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// Object storage
	cfg.Storage.Driver = strings.ToLower(getEnvDefault("STORAGE_DRIVER", "s3"))
	cfg.Storage.Endpoint = getEnvDefault("STORAGE_ENDPOINT", "")
	cfg.Storage.Region = getEnvDefault("STORAGE_REGION", "us-east-1")
	cfg.Storage.Bucket = getEnvDefault("STORAGE_BUCKET", "cardswap-uploads")
	cfg.Storage.AccessKey = getEnvDefault("STORAGE_ACCESS_KEY", "")
	cfg.Storage.SecretKey = getEnvDefault("STORAGE_SECRET_KEY", "")
	cfg.Storage.PresignTTL = getEnvDuration("STORAGE_PRESIGN_TTL", 15*time.Minute)

	// Quotas
	cfg.Quota.FreeDailyUploads = getEnvInt("QUOTA_FREE_DAILY_UPLOADS", 10)
	cfg.Quota.PremiumDailyUploads = getEnvInt("QUOTA_PREMIUM_DAILY_UPLOADS", 100)
	cfg.Quota.FreeStorageBytes = int64(getEnvInt("QUOTA_FREE_STORAGE_MB", 100)) << 20
	cfg.Quota.PremiumStorageBytes = int64(getEnvInt("QUOTA_PREMIUM_STORAGE_MB", 2048)) << 20
	cfg.Quota.FreeDailySearches = getEnvInt("QUOTA_FREE_DAILY_SEARCHES", 5)
	cfg.Quota.PremiumDailySearches = getEnvInt("QUOTA_PREMIUM_DAILY_SEARCHES", 50)
	cfg.Quota.PostLifetime = getEnvDuration("POST_LIFETIME", 30*24*time.Hour)
	cfg.Quota.MaxUploadSizeBytes = int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)) << 20

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if n, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return n
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnvDefault(k, "")); err == nil {
		return d
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
