package routes

import (
	"github.com/gofiber/fiber/v2"

	"FasoLink/internal/handlers"
	"FasoLink/internal/middleware"
	"FasoLink/internal/models"
)

func SetupContractRoutes(app *fiber.App) {
	contracts := app.Group("/api/contracts", middleware.Protected())

	contracts.Get("/", handlers.GetMyContracts)
	contracts.Get("/:id", handlers.GetContract)

	// Artisan marks the work done
	contracts.Post("/:id/complete", middleware.RequireRole(models.RoleArtisan), handlers.CompleteWork)

	// Client releases the escrowed funds or cancels
	contracts.Post("/:id/release", middleware.RequireRole(models.RoleClient), handlers.ReleaseEscrow)
	contracts.Post("/:id/cancel", middleware.RequireRole(models.RoleClient), handlers.CancelContract)

	// Contract conversation
	contracts.Get("/:id/messages", handlers.GetContractMessages)
}
