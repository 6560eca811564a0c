// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server, the external
// endpoints and the storage backend.
type Config struct {
	Port string

	// External collaborators.
	CheckoutAPIURL string // payment session endpoint
	OrderAPIURL    string // order-creation endpoint
	ClientTimeout  time.Duration

	// Auth.
	JWTSecret   string
	AdminAPIKey string

	// Routes handed back to the storefront for navigation.
	LoginRoute   string
	LandingRoute string

	// Storage backend: memory, file or postgres.
	StorageDriver string
	StorageDir    string
	DatabaseURL   string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durenvs(key string, defSec int) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return time.Duration(defSec) * time.Second
	}
	sec, err := strconv.Atoi(v)
	if err != nil {
		return time.Duration(defSec) * time.Second
	}
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		Port:           getenv("PORT", "8080"),
		CheckoutAPIURL: getenv("CHECKOUT_API_URL", "http://localhost:3000/api/checkout_sessions"),
		OrderAPIURL:    getenv("ORDER_API_URL", "http://localhost:3000/api/orders"),
		ClientTimeout:  durenvs("HTTP_CLIENT_TIMEOUT", 15),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AdminAPIKey:    os.Getenv("ADMIN_API_KEY"),
		LoginRoute:     getenv("LOGIN_ROUTE", "/login"),
		LandingRoute:   getenv("LANDING_ROUTE", "/"),
		StorageDriver:  getenv("STORAGE_DRIVER", "memory"),
		StorageDir:     getenv("STORAGE_DIR", "./data"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
	}
}
