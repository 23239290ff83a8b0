package routes

import (
	"github.com/gofiber/fiber/v2"

	"FasoLink/internal/handlers"
	"FasoLink/internal/middleware"
	"FasoLink/internal/models"
)

func SetupQuoteRoutes(app *fiber.App) {
	quotes := app.Group("/api/quotes", middleware.Protected())

	// Artisans submit and withdraw quotes
	quotes.Post("/", middleware.RequireRole(models.RoleArtisan), handlers.SubmitQuote)
	quotes.Get("/mine", middleware.RequireRole(models.RoleArtisan), handlers.GetMyQuotes)
	quotes.Post("/:id/withdraw", middleware.RequireRole(models.RoleArtisan), handlers.WithdrawQuote)

	// Clients accept or reject quotes on their jobs
	quotes.Post("/:id/accept", middleware.RequireRole(models.RoleClient), handlers.AcceptQuote)
	quotes.Post("/:id/reject", middleware.RequireRole(models.RoleClient), handlers.RejectQuote)
}
