package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	AppEnv       string
	IsStaging    bool
	IsProduction bool

	JWTSecret string
	Port      string

	// database connection settings (MySQL)
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string

	// runtime tunables
	RateLimitWindowSeconds int
	RateLimitCapacity      int
	UserConcurrencyLimit   int
	DuplicateWindowSeconds int
	ListCacheTTLSeconds    int
	ListCacheMaxItems      int
)

// loadAppEnv loads .env unless running in production, where the host
// environment is the only source of truth.
func loadAppEnv() {
	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "production" {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}
}

func init() {
	loadAppEnv()

	// re-read APP_ENV after the .env file has been merged in
	AppEnv = os.Getenv("APP_ENV")
	if !slices.Contains([]string{"staging", "production"}, AppEnv) {
		AppEnv = "staging"
	}
	IsStaging = AppEnv == "staging"
	IsProduction = AppEnv == "production"

	JWTSecret = os.Getenv("JWT_SECRET_KEY")
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "5000"
	}

	DatabaseHost = envOr("DATABASE_HOST", "localhost")
	DatabasePort = envOr("DATABASE_PORT", "3306")
	DatabaseUser = envOr("DATABASE_USER", "root")
	DatabasePassword = envOr("DATABASE_PASSWORD", "password")
	DatabaseName = envOr("DATABASE_NAME", "omnix")

	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 5)
	UserConcurrencyLimit = atoiOr(os.Getenv("USER_CONCURRENCY_LIMIT"), 2)
	DuplicateWindowSeconds = atoiOr(os.Getenv("DUPLICATE_WINDOW_SECONDS"), 45)
	ListCacheTTLSeconds = atoiOr(os.Getenv("LIST_CACHE_TTL_SECONDS"), 30)
	ListCacheMaxItems = atoiOr(os.Getenv("LIST_CACHE_MAX_ITEMS"), 500)

	if IsProduction && JWTSecret == "" {
		log.Fatal("JWT_SECRET_KEY must be set in production")
	}

	log.Printf("[config] AppEnv=%s IsStaging=%v IsProduction=%v", AppEnv, IsStaging, IsProduction)
	log.Printf("[config] Database=%s@%s:%s/%s", DatabaseUser, DatabaseHost, DatabasePort, DatabaseName)
	log.Printf("[config] RateLimit window=%ds capacity=%d userConc=%d dupWindow=%ds listCacheTTL=%ds listCacheMax=%d",
		RateLimitWindowSeconds, RateLimitCapacity, UserConcurrencyLimit, DuplicateWindowSeconds, ListCacheTTLSeconds, ListCacheMaxItems)
}

// DatabaseDSN builds the MySQL DSN from the DATABASE_* settings.
func DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		DatabaseUser, DatabasePassword, DatabaseHost, DatabasePort, DatabaseName)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
