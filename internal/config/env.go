package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Env holds the process settings the tools read from the environment.
type Env struct {
	DatabaseURL string // DATABASE_URL, Postgres journal
	MQTTURL     string // MQTT_URL, dispatch broker
	ClientID    string // ROUTE_CLIENT_ID, MQTT client id
	MaxTicks    int    // ROUTE_MAX_TICKS, cooperative search horizon
}

// LoadEnv loads .env style files into the process environment. Missing files are
// ignored; variables already set win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Get returns the value of key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt is Get for integers. Unparseable values fall back.
func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// FromEnv reads Env from the process environment.
func FromEnv() Env {
	return Env{
		DatabaseURL: Get("DATABASE_URL", ""),
		MQTTURL:     Get("MQTT_URL", "tcp://localhost:1883"),
		ClientID:    Get("ROUTE_CLIENT_ID", "whroute"),
		MaxTicks:    GetInt("ROUTE_MAX_TICKS", 0),
	}
}
