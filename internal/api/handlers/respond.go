// server/internal/api/handlers/respond.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"car-dealership-api-server/internal/models"
)

// errConcurrentUpdate is returned when the optimistic revision check fails:
// another writer changed the car between our read and our replace.
var errConcurrentUpdate = errors.New("car was modified concurrently, retry the operation")

// respondDomainError maps domain errors to HTTP statuses. Validation is 400,
// state-machine conflicts (already sold, already transferred, lost race) are
// 409, operations illegal in the current state are 422.
func respondDomainError(c *gin.Context, err error) {
	var vErr *models.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
	case errors.Is(err, models.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotAvailable),
		errors.Is(err, models.ErrAlreadyTransferred),
		errors.Is(err, errConcurrentUpdate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotSold),
		errors.Is(err, models.ErrNotInstallment),
		errors.Is(err, models.ErrNotFullyPaid),
		errors.Is(err, models.ErrLedgerFrozen):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// findCar loads a car by its hex ObjectID, falling back to the normalized
// plate number for human-friendly lookups.
func findCar(ctx context.Context, db *mongo.Database, idParam string) (*models.Car, error) {
	collection := db.Collection("cars")

	var filter bson.M
	if oid, err := primitive.ObjectIDFromHex(idParam); err == nil {
		filter = bson.M{"_id": oid}
	} else {
		filter = bson.M{"plateNumber": models.NormalizePlate(idParam)}
	}

	var car models.Car
	if err := collection.FindOne(ctx, filter).Decode(&car); err != nil {
		return nil, err
	}
	return &car, nil
}

// replaceCar persists a mutated car with an optimistic revision check. The
// whole document is replaced in one write, so a reader can never observe a
// half-applied sale. A MatchedCount of zero means a concurrent writer won
// the race and the caller's mutation must be retried against fresh state.
func replaceCar(ctx context.Context, db *mongo.Database, car *models.Car) error {
	previous := car.Revision
	car.Revision = previous + 1

	result, err := db.Collection("cars").ReplaceOne(ctx,
		bson.M{"_id": car.ID, "revision": previous},
		car,
	)
	if err != nil {
		car.Revision = previous
		return err
	}
	if result.MatchedCount == 0 {
		car.Revision = previous
		return errConcurrentUpdate
	}
	return nil
}
