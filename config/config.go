package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// ListenAddr is the HTTP/socket listen address, e.g. ":3002".
	ListenAddr string

	// StorageType selects the document store: "memory", "sqlite" or
	// "filesystem".
	StorageType string

	// DataSourceName is the sqlite database path when StorageType is
	// "sqlite".
	DataSourceName string

	// LocalStoragePath is the base directory when StorageType is
	// "filesystem".
	LocalStoragePath string
}

// Load reads configuration from the environment, with a .env file as an
// optional source. Missing variables fall back to defaults; there are no
// required settings.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:       getEnv("LISTEN_ADDR", ":3002"),
		StorageType:      getEnv("STORAGE_TYPE", "memory"),
		DataSourceName:   getEnv("DATA_SOURCE_NAME", "documents.db"),
		LocalStoragePath: getEnv("LOCAL_STORAGE_PATH", "data"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
