package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/noah-isme/tour-inventory/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	direction := flag.String("direction", "up", "up or down")
	steps := flag.Int("steps", 1, "migrations to roll back when direction=down")
	dbURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "postgres connection url")
	flag.Parse()

	if *dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	m, err := db.NewMigrator(*dbURL)
	if err != nil {
		log.Fatalf("Failed to initialise migrator: %v", err)
	}
	defer func() { _, _ = m.Close() }()

	switch *direction {
	case "up":
		err = db.Up(m)
	case "down":
		err = db.Down(m, *steps)
	default:
		log.Fatalf("Unknown direction %q", *direction)
	}
	if err != nil {
		log.Fatalf("Migration %s failed: %v", *direction, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		log.Printf("Migration %s completed; no version recorded", *direction)
		return
	}
	log.Printf("Migration %s completed at version %d (dirty=%t)", *direction, version, dirty)
}
