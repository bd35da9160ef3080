// server/internal/api/handlers/car_handler.go
package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"car-dealership-api-server/internal/finance"
	"car-dealership-api-server/internal/models"
	"car-dealership-api-server/internal/s3"
)

type CarHandler struct {
	DB         *mongo.Database
	S3Uploader *s3.Uploader
}

type CreateCarPayload struct {
	PlateNumber   string    `json:"plateNumber" binding:"required"`
	Brand         string    `json:"brand" binding:"required"`
	Model         string    `json:"model" binding:"required"`
	Year          int       `json:"year" binding:"required,gte=1950"`
	EnginePower   float64   `json:"enginePower" binding:"omitempty,gte=0"`
	Transmission  string    `json:"transmission" binding:"required,oneof=Manual Automatic"`
	Color         string    `json:"color"`
	Drivetrain    string    `json:"drivetrain" binding:"required,oneof=FWD RWD 4WD AWD"`
	Odometer      float64   `json:"odometer" binding:"gte=0"`
	PurchaseDate  time.Time `json:"purchaseDate"`
	PurchasePrice float64   `json:"purchasePrice" binding:"required,gt=0"`
	PriceToSell   float64   `json:"priceToSell" binding:"required,gt=0"`
}

// CreateCar takes a new car into inventory. Images are attached afterwards
// through UploadImages.
func (h *CarHandler) CreateCar(c *gin.Context) {
	var payload CreateCarPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plate := models.NormalizePlate(payload.PlateNumber)
	collection := h.DB.Collection("cars")

	count, err := collection.CountDocuments(context.Background(), bson.M{"plateNumber": plate})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for plate number"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Car with this plate number already exists"})
		return
	}

	purchaseDate := payload.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = time.Now()
	}

	newCar := models.Car{
		PlateNumber:   plate,
		Brand:         payload.Brand,
		Model:         payload.Model,
		Year:          payload.Year,
		EnginePower:   payload.EnginePower,
		Transmission:  payload.Transmission,
		Color:         payload.Color,
		Drivetrain:    payload.Drivetrain,
		Odometer:      payload.Odometer,
		PurchaseDate:  purchaseDate,
		PurchasePrice: payload.PurchasePrice,
		PriceToSell:   payload.PriceToSell,
		IsAvailable:   true,
		Revision:      1,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), newCar)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Car with this plate number already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create car"})
		return
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newCar.ID = oid
	}

	c.JSON(http.StatusCreated, newCar)
}

// GetCars lists inventory, optionally filtered by availability.
func (h *CarHandler) GetCars(c *gin.Context) {
	filter := bson.M{}
	switch c.Query("available") {
	case "true":
		filter["isAvailable"] = true
	case "false":
		filter["isAvailable"] = false
	}

	collection := h.DB.Collection("cars")
	cursor, err := collection.Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query cars"})
		return
	}
	defer cursor.Close(context.Background())

	var cars []models.Car
	if err := cursor.All(context.Background(), &cars); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode cars"})
		return
	}

	if cars == nil {
		cars = []models.Car{}
	}

	c.JSON(http.StatusOK, cars)
}

// GetCar returns one car together with its derived status and, when sold,
// the computed profit breakdown. The breakdown is never stored; it is
// recomputed from the current repairs and ledger on every read.
func (h *CarHandler) GetCar(c *gin.Context) {
	car, err := findCar(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve car"})
		}
		return
	}

	response := gin.H{
		"car":    car,
		"status": car.Status(),
	}
	if breakdown, ok := finance.Compute(car); ok {
		response["profit"] = breakdown
	}

	c.JSON(http.StatusOK, response)
}

type UpdateCarPayload struct {
	Brand         string    `json:"brand" binding:"required"`
	Model         string    `json:"model" binding:"required"`
	Year          int       `json:"year" binding:"required,gte=1950"`
	EnginePower   float64   `json:"enginePower" binding:"omitempty,gte=0"`
	Transmission  string    `json:"transmission" binding:"required,oneof=Manual Automatic"`
	Color         string    `json:"color"`
	Drivetrain    string    `json:"drivetrain" binding:"required,oneof=FWD RWD 4WD AWD"`
	Odometer      float64   `json:"odometer" binding:"gte=0"`
	PurchaseDate  time.Time `json:"purchaseDate"`
	PurchasePrice float64   `json:"purchasePrice" binding:"required,gt=0"`
	PriceToSell   float64   `json:"priceToSell" binding:"required,gt=0"`
}

// UpdateCar edits descriptive and commercial attributes. Sale state is only
// reachable through the sale/installment/transfer endpoints.
func (h *CarHandler) UpdateCar(c *gin.Context) {
	var payload UpdateCarPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car, err := findCar(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve car"})
		}
		return
	}

	car.Brand = payload.Brand
	car.Model = payload.Model
	car.Year = payload.Year
	car.EnginePower = payload.EnginePower
	car.Transmission = payload.Transmission
	car.Color = payload.Color
	car.Drivetrain = payload.Drivetrain
	car.Odometer = payload.Odometer
	if !payload.PurchaseDate.IsZero() {
		car.PurchaseDate = payload.PurchaseDate
	}
	car.PurchasePrice = payload.PurchasePrice
	car.PriceToSell = payload.PriceToSell
	car.UpdatedAt = time.Now()

	if err := replaceCar(context.Background(), h.DB, car); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, car)
}

// DeleteCar removes the record and its stored images. Image deletion is
// best effort: a failed blob delete is logged, it never blocks the delete.
func (h *CarHandler) DeleteCar(c *gin.Context) {
	car, err := findCar(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve car"})
		}
		return
	}

	_, err = h.DB.Collection("cars").DeleteOne(context.Background(), bson.M{"_id": car.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete car"})
		return
	}

	for _, img := range car.Images {
		if err := h.S3Uploader.DeleteFile(context.Background(), img.ID); err != nil {
			log.Printf("Failed to delete image %s of car %s: %v", img.ID, car.PlateNumber, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Car deleted successfully"})
}

// UploadImages attaches up to the image cap via multipart form field
// "images". When any upload fails, the objects already uploaded in this
// request are deleted again so no orphan blobs survive the error.
func (h *CarHandler) UploadImages(c *gin.Context) {
	car, err := findCar(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve car"})
		}
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one image file is required"})
		return
	}
	if len(car.Images)+len(files) > models.MaxCarImages {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("A car can hold at most %d images", models.MaxCarImages),
		})
		return
	}

	var uploaded []models.MediaPointer
	cleanup := func() {
		for _, img := range uploaded {
			if err := h.S3Uploader.DeleteFile(context.Background(), img.ID); err != nil {
				log.Printf("Failed to clean up image %s after upload error: %v", img.ID, err)
			}
		}
	}

	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			cleanup()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return
		}

		objectKey := fmt.Sprintf("cars/%s/%s%s", car.ID.Hex(), uuid.New().String(), filepath.Ext(fileHeader.Filename))
		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "image/jpeg"
		}

		url, err := h.S3Uploader.UploadFile(context.Background(), file, objectKey, contentType)
		file.Close()
		if err != nil {
			cleanup()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image", "details": err.Error()})
			return
		}

		uploaded = append(uploaded, models.MediaPointer{
			ID:       objectKey,
			URL:      url,
			FileName: fileHeader.Filename,
		})
	}

	car.Images = append(car.Images, uploaded...)
	car.UpdatedAt = time.Now()

	if err := replaceCar(context.Background(), h.DB, car); err != nil {
		cleanup()
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"images": car.Images})
}

type AddRepairPayload struct {
	Description string    `json:"description" binding:"required"`
	Cost        float64   `json:"cost" binding:"gte=0"`
	Date        time.Time `json:"date"`
}

// AddRepair appends a repair cost entry; legal in any lifecycle state.
func (h *CarHandler) AddRepair(c *gin.Context) {
	var payload AddRepairPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	car, err := findCar(context.Background(), h.DB, c.Param("id"))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve car"})
		}
		return
	}

	if err := car.AddRepair(payload.Description, payload.Cost, payload.Date); err != nil {
		respondDomainError(c, err)
		return
	}

	if err := replaceCar(context.Background(), h.DB, car); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repairs":         car.Repairs,
		"totalRepairCost": car.TotalRepairCost(),
	})
}
