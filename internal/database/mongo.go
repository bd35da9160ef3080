// server/internal/database/mongo.go
package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"car-dealership-api-server/config"
)

// Connect opens a client, pings it and returns the configured database.
func Connect(cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return client.Database(cfg.DBName), nil
}

// EnsureIndexes creates the indexes the report queries and the plate
// uniqueness guarantee depend on.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cars := db.Collection("cars")
	_, err := cars.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "plateNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "sale.date", Value: 1}}},
		{Keys: bson.D{{Key: "ownerBookTransfer.transferDate", Value: 1}}},
		{Keys: bson.D{{Key: "isAvailable", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("expenses").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "expenseDate", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
