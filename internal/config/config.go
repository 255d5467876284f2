package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DatabaseURL builds a postgres:// URL for the migration runner.
func (c DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// DSN builds a keyword/value DSN for GORM.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds cache backend settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig holds object-store settings. PublicDomain is the base
// of every public URL the store hands out.
type StorageConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	PublicDomain string
	UseSSL       bool
	Timeout      time.Duration
}

// UploadConfig bounds what files the service accepts.
type UploadConfig struct {
	MaxSizeBytes      int64
	AllowedMIMETypes  []string
	AllowedExtensions []string
}

// CacheConfig carries the TTL policy and the bounded page-invalidation
// window.
type CacheConfig struct {
	TTL        time.Duration
	TTLLong    time.Duration
	PageWindow int
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds event bus settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// ServiceConfig holds all configuration for the photovault service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	DBConfig      DatabaseConfig
	RedisConfig   RedisConfig
	StorageConfig StorageConfig
	UploadConfig  UploadConfig
	CacheConfig   CacheConfig
	JWTConfig     JWTConfig
	KafkaConfig   KafkaConfig
}

// Load reads configuration from environment variables with the
// PHOTOVAULT_ prefix.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("PHOTOVAULT")
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "photovault")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("STORAGE_ENDPOINT", "localhost:9000")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "photovault")
	v.SetDefault("STORAGE_PUBLIC_DOMAIN", "localhost:9000/photovault")
	v.SetDefault("STORAGE_USE_SSL", false)
	v.SetDefault("STORAGE_TIMEOUT", "10s")

	v.SetDefault("UPLOAD_MAX_SIZE_BYTES", int64(10*1024*1024))
	v.SetDefault("UPLOAD_ALLOWED_MIME_TYPES", []string{"image/jpeg", "image/png", "image/gif", "image/webp"})
	v.SetDefault("UPLOAD_ALLOWED_EXTENSIONS", []string{"jpg", "jpeg", "png", "gif", "webp"})

	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("CACHE_TTL_LONG", "1h")
	v.SetDefault("CACHE_PAGE_WINDOW", 10)

	v.SetDefault("JWT_SECRET", "")

	v.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	v.SetDefault("KAFKA_GROUP_PREFIX", "photovault-")

	cfg := &ServiceConfig{
		Port:   v.GetString("SERVICE_PORT"),
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		RedisConfig: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		StorageConfig: StorageConfig{
			Endpoint:     v.GetString("STORAGE_ENDPOINT"),
			AccessKey:    v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:    v.GetString("STORAGE_SECRET_KEY"),
			Bucket:       v.GetString("STORAGE_BUCKET"),
			PublicDomain: v.GetString("STORAGE_PUBLIC_DOMAIN"),
			UseSSL:       v.GetBool("STORAGE_USE_SSL"),
			Timeout:      v.GetDuration("STORAGE_TIMEOUT"),
		},
		UploadConfig: UploadConfig{
			MaxSizeBytes:      v.GetInt64("UPLOAD_MAX_SIZE_BYTES"),
			AllowedMIMETypes:  v.GetStringSlice("UPLOAD_ALLOWED_MIME_TYPES"),
			AllowedExtensions: v.GetStringSlice("UPLOAD_ALLOWED_EXTENSIONS"),
		},
		CacheConfig: CacheConfig{
			TTL:        v.GetDuration("CACHE_TTL"),
			TTLLong:    v.GetDuration("CACHE_TTL_LONG"),
			PageWindow: v.GetInt("CACHE_PAGE_WINDOW"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     v.GetStringSlice("KAFKA_BROKERS"),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
	}

	if cfg.AppEnv != "development" && cfg.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("PHOTOVAULT_JWT_SECRET is required outside development")
	}

	return cfg, nil
}
