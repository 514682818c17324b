package main

import (
	"log"
	"os"

	"ai-cservice-be/internal/model"
	"ai-cservice-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Extensions required for UUID generation.
	preMigrationSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}
	for _, stmt := range preMigrationSQL {
		if err := db.Exec(stmt).Error; err != nil {
			log.Fatalf("pre-migration statement failed (%s): %v", stmt, err)
		}
	}

	log.Println("Running auto-migration...")
	if err := db.AutoMigrate(
		&model.Document{},
		&model.DocumentChunk{},
	); err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	log.Println("Migration completed successfully")
}
