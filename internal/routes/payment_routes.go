package routes

import (
	"github.com/gofiber/fiber/v2"

	"FasoLink/internal/handlers"
	"FasoLink/internal/middleware"
	"FasoLink/internal/models"
)

func SetupPaymentRoutes(app *fiber.App) {
	// Provider webhook: public, no auth. Operators call it with POST,
	// some legacy integrations use GET, and browsers preflight with OPTIONS.
	app.Options("/api/payments/webhook", handlers.MobileMoneyWebhook)
	app.Post("/api/payments/webhook", handlers.MobileMoneyWebhook)
	app.Get("/api/payments/webhook", handlers.MobileMoneyWebhook)

	payments := app.Group("/api/payments", middleware.Protected())

	// Deposits are initiated by clients
	payments.Post("/initiate", middleware.RequireRole(models.RoleClient), handlers.InitiatePayment)
	payments.Get("/contract/:id", handlers.GetContractTransactions)

	// Mobile money accounts
	payments.Post("/momo-account", handlers.AddMomoAccount)
	payments.Get("/momo-accounts", handlers.GetMomoAccounts)
	payments.Put("/momo-account/:id/set-default", handlers.SetDefaultMomoAccount)
	payments.Delete("/momo-account/:id", handlers.DeleteMomoAccount)
}
