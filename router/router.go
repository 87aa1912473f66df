package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/canteen-app/controllers"
	"github.com/yeremiapane/canteen-app/middlewares"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/store"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	// 50 requests per second per IP; registered before any route so every
	// handler chain picks it up
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	resolver := services.NewPollResolver(store.NewGormStore(db))

	userCtrl := controllers.NewUserController(db)
	pollCtrl := controllers.NewPollController(resolver)
	responseCtrl := controllers.NewResponseController(db, resolver)
	inventoryCtrl := controllers.NewInventoryController(db)
	expenseCtrl := controllers.NewExpenseController(db)
	invoiceCtrl := controllers.NewInvoiceController(db)
	notificationCtrl := controllers.NewNotificationController(db)
	adminCtrl := controllers.NewAdminController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter on login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.POST("/logout", userCtrl.Logout)
		auth.GET("/profile", userCtrl.GetProfile)

		// POLLS (every user sees the day's polls)
		auth.GET("/polls", pollCtrl.GetPollsForDate)

		// RESPONSES (own)
		auth.POST("/responses", responseCtrl.CastResponse)
		auth.GET("/responses/me", responseCtrl.GetMyResponses)
		auth.PATCH("/responses/:response_id/attendance", responseCtrl.SelfReport)

		// INVOICES (own)
		auth.GET("/invoices/me", invoiceCtrl.GetMyInvoices)
		invoicePDF := auth.Group("/invoices")
		invoicePDF.Use(middlewares.InvoiceLoggerMiddleware())
		{
			invoicePDF.GET("/:invoice_id/pdf", invoiceCtrl.GetInvoicePDF)
		}
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.AdminOnly())
	{
		admin.GET("/users", userCtrl.GetAllUsers)

		// POLLS
		admin.POST("/polls/ensure", pollCtrl.EnsurePoll)
		admin.POST("/polls/schema-cache/reset", pollCtrl.ResetSchemaCache)

		// RESPONSES
		admin.GET("/responses", responseCtrl.GetResponsesForDate)
		admin.PATCH("/responses/:response_id/confirm", responseCtrl.AdminConfirm)

		// INVENTORY
		admin.GET("/inventory", inventoryCtrl.GetAllItems)
		admin.GET("/inventory/low-stock", inventoryCtrl.GetLowStockItems)
		admin.POST("/inventory", inventoryCtrl.CreateItem)
		admin.PATCH("/inventory/:item_id", inventoryCtrl.UpdateItem)
		admin.DELETE("/inventory/:item_id", inventoryCtrl.DeleteItem)

		// EXPENSES
		admin.GET("/expenses", expenseCtrl.GetAllExpenses)
		admin.POST("/expenses", expenseCtrl.CreateExpense)
		admin.PATCH("/expenses/:expense_id", expenseCtrl.UpdateExpense)
		admin.DELETE("/expenses/:expense_id", expenseCtrl.DeleteExpense)
		admin.GET("/expenses/summary", expenseCtrl.GetMonthlySummary)
		admin.GET("/expenses/chart", expenseCtrl.GetMonthlyChart)

		// INVOICES
		admin.POST("/invoices", invoiceCtrl.GenerateInvoice)
		admin.GET("/invoices", invoiceCtrl.GetAllInvoices)
		admin.POST("/invoices/:invoice_id/paid", invoiceCtrl.MarkPaid)

		// NOTIFICATIONS
		admin.GET("/notifications", notificationCtrl.GetAllNotifications)
		admin.POST("/notifications", notificationCtrl.CreateNotification)
		admin.GET("/notifications/:notif_id", notificationCtrl.GetNotificationByID)
		admin.DELETE("/notifications/:notif_id", notificationCtrl.DeleteNotification)

		// DASHBOARD
		admin.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
	}

	// WebSocket endpoint with query-token auth
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("", controllers.AttendanceHubHandler)
	}

	return r
}
