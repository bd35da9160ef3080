// server/cmd/api/main.go
package main

import (
	"log"

	"github.com/joho/godotenv"

	"car-dealership-api-server/config"
	"car-dealership-api-server/internal/api/routes"
	"car-dealership-api-server/internal/auth"
	"car-dealership-api-server/internal/database"
	"car-dealership-api-server/internal/s3"
	"car-dealership-api-server/internal/socket"
)

func main() {
	// 1. Load configuration (.env first so it can feed viper's env binds)
	godotenv.Load()
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	if err := auth.Init(cfg.JWT); err != nil {
		log.Fatalf("Could not initialize auth: %v", err)
	}

	// 2. Connect MongoDB and prepare indexes
	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := database.EnsureIndexes(db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// 3. Seed the initial admin account
	if err := database.SeedAdmin(db, cfg.Admin); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	// 4. S3 uploader for car images
	s3Uploader, err := s3.NewUploader(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to create S3 uploader: %v", err)
	}

	// 5. WebSocket hub for inventory events
	wsHub := socket.NewHub()

	// 6. Router
	router := routes.SetupRouter(db, s3Uploader, wsHub)

	// 7. Start server
	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
