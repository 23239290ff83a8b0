package routes

import (
	"github.com/gofiber/fiber/v2"

	"FasoLink/internal/handlers"
	"FasoLink/internal/middleware"
)

func SetupAdminRoutes(app *fiber.App) {
	adminHandler := handlers.NewAdminHandler()

	adminAuth := app.Group("/api/admin/auth")

	adminAuth.Post("/login", adminHandler.AdminLogin)
	adminAuth.Post("/initialize", adminHandler.InitializeFirstAdmin)

	// Protected admin routes
	admin := app.Group("/api/admin", middleware.Protected(), middleware.AdminOnly())

	// Admin profile
	admin.Get("/profile", adminHandler.GetAdminProfile)

	// Admin creation
	admin.Post("/create", adminHandler.CreateAdmin)

	// Dashboard
	admin.Get("/dashboard", adminHandler.GetDashboardStats)

	// User management
	admin.Get("/users", adminHandler.GetAllUsers)
	admin.Get("/users/:id", adminHandler.GetUserByID)
	admin.Post("/users/:id/suspend", adminHandler.SuspendUser)
	admin.Post("/users/:id/unsuspend", adminHandler.UnsuspendUser)

	// Transaction management
	admin.Get("/transactions", adminHandler.GetAllTransactions)

	// Dead-lettered provider callbacks
	admin.Get("/webhook-events", adminHandler.GetWebhookEvents)
	admin.Post("/webhook-events/:id/resolve", adminHandler.ResolveWebhookEvent)
}
