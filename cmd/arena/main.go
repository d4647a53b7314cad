package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/znyiri100/snake-rivals-arena/db"
	"github.com/znyiri100/snake-rivals-arena/internal/auth"
	"github.com/znyiri100/snake-rivals-arena/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if err := auth.InitTokenSecret(); err != nil {
		log.Fatalf("Failed to initialize token secret: %v", err)
	}

	if err := db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
