// server/internal/api/handlers/sale_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"car-dealership-api-server/internal/models"
	"car-dealership-api-server/internal/socket"
)

// SaleHandler owns the sale state machine endpoints: cash sale, installment
// sale, detail corrections and the owner book transfer. Every mutation is a
// read-validate-replace cycle guarded by the car's revision counter, so two
// concurrent "mark as sold" calls cannot both succeed: the loser either hits
// the not-available guard or the revision check.
type SaleHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
}

type BuyerPayload struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Passport string `json:"passport" binding:"required"`
}

func (b BuyerPayload) toModel() models.Buyer {
	return models.Buyer{Name: b.Name, Phone: b.Phone, Passport: b.Passport}
}

type MarkSoldPaidPayload struct {
	Price    float64      `json:"price" binding:"required,gt=0"`
	Date     time.Time    `json:"date"`
	Odometer float64      `json:"odometer" binding:"gte=0"`
	Buyer    BuyerPayload `json:"buyer" binding:"required"`
}

// loadCar fetches the target car or writes the 404/500 response itself.
func (h *SaleHandler) loadCar(c *gin.Context) (*models.Car, bool) {
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

// MarkSoldPaid transitions an available car to sold-for-cash.
func (h *SaleHandler) MarkSoldPaid(c *gin.Context) {
	var payload MarkSoldPaidPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car, ok := h.loadCar(c)
	if !ok {
		return
	}

	err := car.MarkSoldPaid(models.SaleInput{
		Price:    payload.Price,
		Date:     payload.Date,
		Odometer: payload.Odometer,
		Buyer:    payload.Buyer.toModel(),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if err := replaceCar(context.Background(), h.DB, car); err != nil {
		respondDomainError(c, err)
		return
	}

	h.Hub.Broadcast(socket.Event{
		Type:        socket.EventCarSold,
		PlateNumber: car.PlateNumber,
		Payload:     gin.H{"boughtType": car.BoughtType},
	})
	c.JSON(http.StatusOK, car)
}

// UpdateSaleDetails corrects an existing cash sale record.
func (h *SaleHandler) UpdateSaleDetails(c *gin.Context) {
	var payload MarkSoldPaidPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car, ok := h.loadCar(c)
	if !ok {
		return
	}

	err := car.UpdateSaleDetails(models.SaleInput{
		Price:    payload.Price,
		Date:     payload.Date,
		Odometer: payload.Odometer,
		Buyer:    payload.Buyer.toModel(),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if err := replaceCar(context.Background(), h.DB, car); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, car)
}

type MarkSoldInstallmentPayload struct {
	DownPayment     float64      `json:"downPayment" binding:"gte=0"`
	RemainingAmount float64      `json:"remainingAmount" binding:"gte=0"`
	Months          int          `json:"months" binding:"required,gte=1"`
	MonthlyPayment  float64      `json:"monthlyPayment" binding:"required,gt=0"`
	Buyer           BuyerPayload `json:"buyer" binding:"required"`
	StartDate       time.Time    `json:"startDate"`
}

// MarkSoldInstallment transitions an available car to sold-on-credit with an
// empty payment ledger.
func (h *SaleHandler) MarkSoldInstallment(c *gin.Context) {
	var payload MarkSoldInstallmentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car, ok := h.loadCar(c)
	if !ok {
		return
	}

	err := car.MarkSoldInstallment(models.InstallmentInput{
		DownPayment:     payload.DownPayment,
		RemainingAmount: payload.RemainingAmount,
		Months:          payload.Months,
		MonthlyPayment:  payload.MonthlyPayment,
		Buyer:           payload.Buyer.toModel(),
		StartDate:       payload.StartDate,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if err := replaceCar(context.Background(), h.DB, car); err != nil {
		respondDomainError(c, err)
		return
	}

	h.Hub.Broadcast(socket.Event{
		Type:        socket.EventCarSold,
		PlateNumber: car.PlateNumber,
		Payload:     gin.H{"boughtType": car.BoughtType},
	})
	c.JSON(http.StatusOK, car)
}

type UpdateInstallmentPayload struct {
	Months         int          `json:"months" binding:"required,gte=1"`
	MonthlyPayment float64      `json:"monthlyPayment" binding:"required,gt=0"`
	Buyer          BuyerPayload `json:"buyer" binding:"required"`
	StartDate      time.Time    `json:"startDate"`
}

// UpdateInstallmentDetails corrects contract terms that do not move money.
// Balances only ever change through the payment ledger.
func (h *SaleHandler) UpdateInstallmentDetails(c *gin.Context) {
	var payload UpdateInstallmentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car, ok := h.loadCar(c)
	if !ok {
		return
	}

	err := car.UpdateInstallmentDetails(models.InstallmentDetailsInput{
		Months:         payload.Months,
		MonthlyPayment: payload.MonthlyPayment,
		Buyer:          payload.Buyer.toModel(),
		StartDate:      payload.StartDate,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	if err := replaceCar(context.Background(), h.DB, car); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, car)
}

type TransferOwnershipPayload struct {
	Date  time.Time `json:"date"`
	Notes string    `json:"notes"`
}

// TransferOwnership records the legal title transfer. Requires the car to be
// sold and, for installment sales, fully paid. Calling it again on an
// already transferred car is a conflict.
func (h *SaleHandler) TransferOwnership(c *gin.Context) {
	var payload TransferOwnershipPayload
	if err := c.ShouldBindJSON(&payload); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car, ok := h.loadCar(c)
	if !ok {
		return
	}

	if err := car.TransferOwnership(payload.Date, payload.Notes); err != nil {
		respondDomainError(c, err)
		return
	}

	if err := replaceCar(context.Background(), h.DB, car); err != nil {
		respondDomainError(c, err)
		return
	}

	h.Hub.Broadcast(socket.Event{
		Type:        socket.EventOwnershipTransferred,
		PlateNumber: car.PlateNumber,
		Payload:     gin.H{"transferDate": car.OwnerBookTransfer.TransferDate},
	})
	c.JSON(http.StatusOK, car)
}
