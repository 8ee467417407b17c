// Package config loads application configuration from environment
// variables.  Required variables are enforced at startup: a missing value
// exits the process rather than limping along half-configured.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.
type Config struct {
	Env         string // application environment (dev/test/prod)
	Port        string // HTTP port to listen on
	DBUser      string // database username
	DBPass      string // database password (optional)
	DBHost      string // database host address
	DBPort      string // database port number
	DBName      string // database name
	JWTSecret   string // secret used to verify seller JWTs
	Timezone    string // IANA zone for schedules and order-number dates
	OrderPrefix string // prefix for generated order numbers
	Currency    string // ISO currency code stamped onto orders
	RabbitURL   string // AMQP URL; empty disables event publishing
}

// Load reads configuration from the environment.  must() enforces the
// required variables; the rest default sensibly.
func Load() Config {
	return Config{
		Env:         must("APP_ENV"),
		Port:        must("APP_PORT"),
		DBUser:      must("DB_USER"),
		DBPass:      os.Getenv("DB_PASS"),
		DBHost:      must("DB_HOST"),
		DBPort:      must("DB_PORT"),
		DBName:      must("DB_NAME"),
		JWTSecret:   must("JWT_SECRET"),
		Timezone:    envStr("TIMEZONE", "Asia/Tehran"),
		OrderPrefix: envStr("ORDER_PREFIX", "ORD"),
		Currency:    envStr("CURRENCY", "IRR"),
		RabbitURL:   os.Getenv("RABBITMQ_URL"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}
