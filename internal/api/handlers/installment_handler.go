// server/internal/api/handlers/installment_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"car-dealership-api-server/internal/models"
)

// InstallmentHandler owns the payment ledger endpoints.
type InstallmentHandler struct {
	DB *mongo.Database
}

func (h *InstallmentHandler) loadCar(c *gin.Context) (*models.Car, bool) {
	car, err := findCar(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve car"})
		}
		return nil, false
	}
	return car, true
}

type UpsertMonthlyPaymentPayload struct {
	Month      int       `json:"month" binding:"required,gte=1"`
	Paid       *bool     `json:"paid" binding:"required"`
	Amount     *float64  `json:"amount"`
	PenaltyFee float64   `json:"penaltyFee" binding:"gte=0"`
	Date       time.Time `json:"date"`
	Notes      string    `json:"notes"`
}

// UpsertMonthlyPayment records, corrects or (with paid=false) removes the
// payment for one contract month. The operation is idempotent: the new
// balance is re-derived from the anchored contract total, so retries and
// out-of-order corrections cannot drift it.
func (h *InstallmentHandler) UpsertMonthlyPayment(c *gin.Context) {
	var payload UpsertMonthlyPaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car, ok := h.loadCar(c)
	if !ok {
		return
	}

	summary, err := car.UpsertMonthlyPayment(models.MonthlyPaymentInput{
		Month:      payload.Month,
		Paid:       *payload.Paid,
		Amount:     payload.Amount,
		PenaltyFee: payload.PenaltyFee,
		Date:       payload.Date,
		Notes:      payload.Notes,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if err := replaceCar(context.Background(), h.DB, car); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

type RecordPaymentPayload struct {
	Amount float64   `json:"amount" binding:"required,gt=0"`
	Date   time.Time `json:"date"`
	Notes  string    `json:"notes"`
}

// RecordPayment is the simple additive form: it appends a ledger entry under
// the next free month number and decrements the balance.
func (h *InstallmentHandler) RecordPayment(c *gin.Context) {
	var payload RecordPaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car, ok := h.loadCar(c)
	if !ok {
		return
	}

	if err := car.RecordPayment(payload.Amount, payload.Date, payload.Notes); err != nil {
		respondDomainError(c, err)
		return
	}

	if err := replaceCar(context.Background(), h.DB, car); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, car.PaymentSummary())
}

// GetPaymentSummary returns the ledger and its summary for a car sold on
// installment.
func (h *InstallmentHandler) GetPaymentSummary(c *gin.Context) {
	car, ok := h.loadCar(c)
	if !ok {
		return
	}

	if car.Installment == nil {
		respondDomainError(c, models.ErrNotInstallment)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"installment": car.Installment,
		"summary":     car.PaymentSummary(),
		"status":      car.Status(),
	})
}
