package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
	// TrustedProxies are IPs or CIDR ranges allowed to set X-Forwarded-For.
	TrustedProxies []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	CookieName   string
	SessionHours int
	SecureCookie bool
}

const (
	StorageDriverMemory = "memory"
	StorageDriverMinio  = "minio"
)

// StorageConfig points at an S3-compatible bucket that holds product and
// review images. Driver is "minio" or "memory"; left unset it is "minio"
// exactly when an endpoint is configured.
type StorageConfig struct {
	Driver        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// AdminConfig seeds the back-office account on startup when Email is set.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

type RateLimitConfig struct {
	RequestsPerWindow int
	WindowSeconds     int
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

func (c JWTConfig) SessionDuration() time.Duration {
	return time.Duration(c.SessionHours) * time.Hour
}

func Load() *Config {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:5174")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_COOKIE_NAME", "user_token")
	viper.SetDefault("JWT_SESSION_HOURS", 24)
	viper.SetDefault("STORAGE_BUCKET", "clothing-store")
	viper.SetDefault("STORAGE_USE_SSL", false)
	viper.SetDefault("ADMIN_NAME", "Administrator")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 20)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	env := viper.GetString("SERVER_ENV")

	storageEndpoint := strings.TrimSpace(viper.GetString("STORAGE_ENDPOINT"))
	storageDriver := strings.ToLower(strings.TrimSpace(viper.GetString("STORAGE_DRIVER")))
	if storageDriver == "" {
		storageDriver = StorageDriverMemory
		if storageEndpoint != "" {
			storageDriver = StorageDriverMinio
		}
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            env,
			AllowedOrigins: splitList(viper.GetString("ALLOWED_ORIGINS")),
			TrustedProxies: splitList(viper.GetString("TRUSTED_PROXIES")),
		},
		Database: DatabaseConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			Database:     viper.GetString("DB_DATABASE"),
			SSLMode:      viper.GetString("DB_SSL_MODE"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			CookieName:   viper.GetString("JWT_COOKIE_NAME"),
			SessionHours: viper.GetInt("JWT_SESSION_HOURS"),
			SecureCookie: env == "production",
		},
		Storage: StorageConfig{
			Driver:        storageDriver,
			Endpoint:      storageEndpoint,
			AccessKey:     viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:     viper.GetString("STORAGE_SECRET_KEY"),
			Bucket:        viper.GetString("STORAGE_BUCKET"),
			UseSSL:        viper.GetBool("STORAGE_USE_SSL"),
			PublicBaseURL: viper.GetString("STORAGE_PUBLIC_BASE_URL"),
		},
		Admin: AdminConfig{
			Name:     viper.GetString("ADMIN_NAME"),
			Email:    viper.GetString("ADMIN_EMAIL"),
			Password: viper.GetString("ADMIN_PASSWORD"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds:     viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}
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
