// server/internal/api/handlers/expense_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"car-dealership-api-server/internal/models"
)

// ExpenseHandler is plain CRUD over the general expense ledger. Expenses
// never reference a car; they only feed the net-profit report.
type ExpenseHandler struct {
	DB *mongo.Database
}

type ExpensePayload struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description" binding:"max=1000"`
	Amount      float64   `json:"amount" binding:"gte=0"`
	ExpenseDate time.Time `json:"expenseDate"`
}

func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var payload ExpensePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expenseDate := payload.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = time.Now()
	}

	expense := models.Expense{
		Title:       payload.Title,
		Description: payload.Description,
		Amount:      payload.Amount,
		ExpenseDate: expenseDate,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	result, err := h.DB.Collection("expenses").InsertOne(context.Background(), expense)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create expense"})
		return
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		expense.ID = oid
	}

	c.JSON(http.StatusCreated, expense)
}

func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	cursor, err := h.DB.Collection("expenses").Find(context.Background(), bson.M{})
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

	if expenses == nil {
		expenses = []models.Expense{}
	}

	c.JSON(http.StatusOK, expenses)
}

func (h *ExpenseHandler) GetExpenseByID(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expense id"})
		return
	}

	var expense models.Expense
	err = h.DB.Collection("expenses").FindOne(context.Background(), bson.M{"_id": oid}).Decode(&expense)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve expense"})
		}
		return
	}

	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expense id"})
		return
	}

	var payload ExpensePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := bson.M{"$set": bson.M{
		"title":       payload.Title,
		"description": payload.Description,
		"amount":      payload.Amount,
		"updatedAt":   time.Now(),
	}}
	if !payload.ExpenseDate.IsZero() {
		update["$set"].(bson.M)["expenseDate"] = payload.ExpenseDate
	}

	result, err := h.DB.Collection("expenses").UpdateOne(context.Background(), bson.M{"_id": oid}, update)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expense"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense updated successfully"})
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expense id"})
		return
	}

	result, err := h.DB.Collection("expenses").DeleteOne(context.Background(), bson.M{"_id": oid})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}
