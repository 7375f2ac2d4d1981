package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	AuthFirebase = "firebase"
	AuthJWT      = "jwt"

	DefaultMaxBodyBytes = 16 << 20
)

type Config struct {
	Port     string
	LogLevel string

	// MaxBodyBytes caps request bodies. Zero or less disables the cap.
	MaxBodyBytes int64

	DatabaseURL      string
	DBConnectRetries int

	// CanonicalDomain is where requests on the legacy host are redirected.
	// An empty value disables the redirect.
	CanonicalDomain   string
	LegacyHostPattern string

	AuthProvider        string
	FirebaseCredentials string
	JWTSecret           string
}

// Load reads the configuration from the environment. Callers are expected to
// have loaded any .env file beforehand.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		MaxBodyBytes:        int64(getEnvAsInt("MAX_BODY_BYTES", DefaultMaxBodyBytes)),
		DatabaseURL:         databaseURL(),
		DBConnectRetries:    getEnvAsInt("DB_CONNECT_RETRIES", 5),
		CanonicalDomain:     getEnv("DOMAIN", ""),
		LegacyHostPattern:   getEnv("LEGACY_HOST_PATTERN", "herokuapp"),
		AuthProvider:        strings.ToLower(getEnv("AUTH_PROVIDER", AuthFirebase)),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	switch c.AuthProvider {
	case AuthFirebase:
		if c.FirebaseCredentials == "" {
			return errors.New("FIREBASE_CREDENTIALS is not set")
		}
	case AuthJWT:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}
	return nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles a URL from the
// discrete user/password/host/port/dbname variables.
func databaseURL() string {
	if url := strings.TrimSpace(os.Getenv("DATABASE_URL")); url != "" {
		return url
	}

	dbHost := strings.TrimSpace(os.Getenv("host"))
	if dbHost == "" {
		return ""
	}
	dbUser := strings.TrimSpace(os.Getenv("user"))
	dbPass := strings.TrimSpace(os.Getenv("password"))
	dbPort := strings.TrimSpace(getEnv("port", "5432"))
	dbName := strings.TrimSpace(os.Getenv("dbname"))

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=require", dbUser, dbPass, dbHost, dbPort, dbName)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
