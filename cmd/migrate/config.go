package main

import (
	"os"

	"bookshelf/internal/config"
)

func loadEnvFiles() {
	config.LoadEnvFiles()
}

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}

// databaseDSN resolves the DSN the same way the API does, so both binaries
// always point at the same database.
func databaseDSN() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.DB.DSN, nil
}
