// server/internal/api/handlers/report_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"car-dealership-api-server/internal/finance"
	"car-dealership-api-server/internal/models"
)

// ReportHandler serves the period profit reports. Reads only; runs
// concurrently with mutations without coordination because every car write
// is a single document replace.
type ReportHandler struct {
	DB *mongo.Database
}

// recognizedCarsFilter selects cars whose profit is recognized inside the
// window. Cash sales anchor on the sale date. Installment sales anchor on
// the owner book transfer date and must be fully paid and transferred;
// filtering on the installment start date instead would attribute
// in-progress contracts to the wrong period.
func recognizedCarsFilter(from, to time.Time) bson.M {
	return bson.M{"$or": []bson.M{
		{"sale.date": bson.M{"$gte": from, "$lte": to}},
		{
			"ownerBookTransfer.transferred":  true,
			"ownerBookTransfer.transferDate": bson.M{"$gte": from, "$lte": to},
			"installment.remainingAmount":    bson.M{"$lte": 0},
		},
	}}
}

func (h *ReportHandler) queryRecognizedCars(ctx context.Context, from, to time.Time) ([]models.Car, error) {
	cursor, err := h.DB.Collection("cars").Find(ctx, recognizedCarsFilter(from, to))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var cars []models.Car
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

// GetProfitReport aggregates general and detailed profit over the period.
func (h *ReportHandler) GetProfitReport(c *gin.Context) {
	period, err := finance.ParsePeriod(c.Query("period"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	now := time.Now()
	from, to := period.Range(now)

	cars, err := h.queryRecognizedCars(context.Background(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query cars"})
		return
	}

	c.JSON(http.StatusOK, finance.BuildProfitReport(period, now, cars))
}

// GetNetProfitReport is the profit report netted against general expenses
// dated inside the window.
func (h *ReportHandler) GetNetProfitReport(c *gin.Context) {
	period, err := finance.ParsePeriod(c.Query("period"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	now := time.Now()
	from, to := period.Range(now)

	cars, err := h.queryRecognizedCars(context.Background(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query cars"})
		return
	}

	cursor, err := h.DB.Collection("expenses").Find(context.Background(),
		bson.M{"expenseDate": bson.M{"$gte": from, "$lte": to}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query expenses"})
		return
	}
	defer cursor.Close(context.Background())

	var expenses []models.Expense
	if err := cursor.All(context.Background(), &expenses); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode expenses"})
		return
	}

	c.JSON(http.StatusOK, finance.BuildNetProfitReport(period, now, cars, expenses))
}
