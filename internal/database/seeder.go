// server/internal/database/seeder.go
package database

import (
	"context"
	"errors"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"car-dealership-api-server/config"
	"car-dealership-api-server/internal/auth"
	"car-dealership-api-server/internal/models"
)

// SeedAdmin creates the initial admin account when the users collection has
// none. Email and password come from config; both are required so no
// well-known default credential ever reaches a deployment.
func SeedAdmin(db *mongo.Database, cfg config.AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return errors.New("admin.email and admin.password must be configured for seeding")
	}

	userCollection := db.Collection("users")

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"role": models.RoleAdmin})
	if err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin already exists. Seeding skipped.")
		return nil
	}

	log.Println("Admin not found. Seeding...")
	hashedPassword, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    cfg.Email,
		Name:     "Administrator",
		Password: hashedPassword,
		Role:     models.RoleAdmin,
		Status:   "active",
	}

	_, err = userCollection.InsertOne(context.Background(), admin)
	if err != nil {
		return err
	}

	log.Println("Admin seeded successfully.")
	return nil
}
