package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type AuthConfig struct {
	SecretKey    string
	Algorithm    string
	CookieDomain string
	Production   bool

	// TTLs in minutes, matching the token codec's contract.
	AccessTTL  int
	RefreshTTL int
}

type CORSConfig struct {
	FrontendURL string
}

func Load() *Config {
	isProd := getEnv("ENVIRONMENT", "") == "prod"

	cookieDomain := ""
	if isProd {
		cookieDomain = getEnv("COOKIE_DOMAIN", "ziondocs.com.br")
	}

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "eventos"),
			User:         getEnv("DB_USER", "eventos"),
			Password:     getEnv("DB_PASSWORD", ""),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Auth: AuthConfig{
			SecretKey:    getEnv("SECRET_KEY", "CHANGE_ME"),
			Algorithm:    getEnv("JWT_ALGORITHM", "HS256"),
			CookieDomain: cookieDomain,
			Production:   isProd,
			AccessTTL:    60 * 24 * 7,
			RefreshTTL:   60 * 24 * 30,
		},
		CORS: CORSConfig{
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		},
	}
}

// DSN builds a lib/pq connection string. The password is escaped so
// special characters survive.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		d.Host, d.Port, d.Name, d.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
