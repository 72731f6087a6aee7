package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	InputDir  string
	OutputDir string

	WatcherConfigID    int
	WatcherIntervalSec int
	WatcherAutoExport  bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		InputDir:  getEnv("INPUT_DIR", filepath.Join(cwd, "data", "inbox")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		WatcherConfigID:    getEnvInt("WATCHER_CONFIG_ID", 0),
		WatcherIntervalSec: getEnvInt("WATCHER_INTERVAL_SEC", 30),
		WatcherAutoExport:  getEnvBool("WATCHER_AUTO_EXPORT", true),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
