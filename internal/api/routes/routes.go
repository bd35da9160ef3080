// server/internal/api/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"car-dealership-api-server/internal/api/handlers"
	"car-dealership-api-server/internal/api/middleware"
	"car-dealership-api-server/internal/models"
	"car-dealership-api-server/internal/s3"
	"car-dealership-api-server/internal/socket"
)

// SetupRouter wires handlers, middleware and role gates.
func SetupRouter(
	db *mongo.Database,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	carHandler := &handlers.CarHandler{DB: db, S3Uploader: s3Uploader}
	saleHandler := &handlers.SaleHandler{DB: db, Hub: wsHub}
	installmentHandler := &handlers.InstallmentHandler{DB: db}
	reportHandler := &handlers.ReportHandler{DB: db}
	expenseHandler := &handlers.ExpenseHandler{DB: db}
	userHandler := &handlers.UserHandler{DB: db}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		// WebSocket event stream (token in query string).
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		apiV1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// Admin-only user management.
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize(models.RoleAdmin))
		{
			admin.POST("/users", userHandler.CreateUser)
		}

		// Every business route requires authentication; writes additionally
		// require the editor or admin role.
		authed := apiV1.Group("/")
		authed.Use(middleware.Authenticate())
		authed.Use(middleware.Authorize(models.RoleViewer, models.RoleEditor, models.RoleAdmin))
		{
			cars := authed.Group("/cars")
			{
				cars.GET("/", carHandler.GetCars)
				cars.GET("/:id", carHandler.GetCar)
				cars.GET("/:id/installment/payments", installmentHandler.GetPaymentSummary)

				editorCars := cars.Group("/")
				editorCars.Use(middleware.Authorize(models.RoleEditor, models.RoleAdmin))
				{
					editorCars.POST("/", carHandler.CreateCar)
					editorCars.PUT("/:id", carHandler.UpdateCar)
					editorCars.POST("/:id/images", carHandler.UploadImages)
					editorCars.POST("/:id/repairs", carHandler.AddRepair)

					// Sale state machine.
					editorCars.POST("/:id/sale", saleHandler.MarkSoldPaid)
					editorCars.PUT("/:id/sale", saleHandler.UpdateSaleDetails)
					editorCars.POST("/:id/installment", saleHandler.MarkSoldInstallment)
					editorCars.PUT("/:id/installment", saleHandler.UpdateInstallmentDetails)
					editorCars.POST("/:id/installment/payments", installmentHandler.UpsertMonthlyPayment)
					editorCars.POST("/:id/installment/pay", installmentHandler.RecordPayment)
					editorCars.POST("/:id/transfer", saleHandler.TransferOwnership)
				}

				adminCars := cars.Group("/")
				adminCars.Use(middleware.Authorize(models.RoleAdmin))
				{
					adminCars.DELETE("/:id", carHandler.DeleteCar)
				}
			}

			reports := authed.Group("/reports")
			{
				reports.GET("/profit", reportHandler.GetProfitReport)
				reports.GET("/net-profit", reportHandler.GetNetProfitReport)
			}

			expenses := authed.Group("/expenses")
			{
				expenses.GET("/", expenseHandler.GetExpenses)
				expenses.GET("/:id", expenseHandler.GetExpenseByID)

				editorExpenses := expenses.Group("/")
				editorExpenses.Use(middleware.Authorize(models.RoleEditor, models.RoleAdmin))
				{
					editorExpenses.POST("/", expenseHandler.CreateExpense)
					editorExpenses.PUT("/:id", expenseHandler.UpdateExpense)
					editorExpenses.DELETE("/:id", expenseHandler.DeleteExpense)
				}
			}
		}
	}

	return router
}
