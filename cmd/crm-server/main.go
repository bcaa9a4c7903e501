package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/zoomlabs/crm-server/db"
	"github.com/zoomlabs/crm-server/internal/auth"
	"github.com/zoomlabs/crm-server/internal/crypto"
	"github.com/zoomlabs/crm-server/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	if err := crypto.Init(); err != nil {
		log.Fatalf("Failed to initialize PII encryption: %v", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	r := router.SetupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	log.Printf("CRM server listening on port %s", port)

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
