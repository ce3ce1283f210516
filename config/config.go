package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type Config struct {
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string
	DatabaseSSLMode  string
	ServerPort       string
	JWTSecret        string
	JWTTTL           time.Duration
	TxTimeout        time.Duration
	SignupCredits    int
	Environment      string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}
	return Config{
		DatabaseHost:     getEnv("DATABASE_HOST", "db"),
		DatabasePort:     getEnv("DATABASE_PORT", "5432"),
		DatabaseUser:     getEnv("DATABASE_USER", "postgres"),
		DatabasePassword: getEnv("DATABASE_PASSWORD", "password"),
		DatabaseName:     getEnv("DATABASE_NAME", "marketplace"),
		DatabaseSSLMode:  getEnv("DATABASE_SSLMODE", "disable"),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		JWTTTL:           getDuration("JWT_TTL", 24*time.Hour),
		TxTimeout:        getDuration("TX_TIMEOUT", 5*time.Second),
		SignupCredits:    getInt("SIGNUP_CREDITS", 1000),
		Environment:      getEnv("ENVIRONMENT", "development"),
	}
}

// IsProduction reports whether error details must be hidden from clients.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) PostgresConnStr() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func InitDB(ctx context.Context, cfg Config) *sql.DB {
	db, err := sql.Open("postgres", cfg.PostgresConnStr())
	if err != nil {
		panic(fmt.Sprintf("database open failed: %v", err))
	}
	if err = db.PingContext(ctx); err != nil {
		panic(fmt.Sprintf("database ping failed: %v", err))
	}
	return db
}
