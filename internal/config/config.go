// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server and snapshot store.
type Config struct {
	HTTPAddr        string
	SnapshotPath    string
	ShutdownTimeout time.Duration
	SaveTimeout     time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		SnapshotPath:    getenv("SNAPSHOT_PATH", "info.json"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		SaveTimeout:     durenvms("SAVE_TIMEOUT_MS", 5000),
	}
}
