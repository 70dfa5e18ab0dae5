// Command migrate applies the goose migrations to the configured database.
// The server only migrates automatically in development; production deploys
// run this command instead.
package main

import (
	"log"

	"github.com/dschrander/uv-energy-saver/internal/config"
	"github.com/dschrander/uv-energy-saver/internal/db"
	"github.com/dschrander/uv-energy-saver/internal/migrations"
)

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, "migrations"); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	log.Printf("migrations applied to %s", cfg.DBPath)
}
