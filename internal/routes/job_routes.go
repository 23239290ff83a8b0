package routes

import (
	"github.com/gofiber/fiber/v2"

	"FasoLink/internal/handlers"
	"FasoLink/internal/middleware"
	"FasoLink/internal/models"
)

func SetupJobRoutes(app *fiber.App) {
	jobs := app.Group("/api/jobs", middleware.Protected())

	// Browsing is open to any authenticated user
	jobs.Get("/", handlers.ListJobs)
	jobs.Get("/mine", middleware.RequireRole(models.RoleClient), handlers.GetMyJobs)
	jobs.Get("/:id", handlers.GetJob)

	// Publishing and managing jobs is for clients
	jobs.Post("/", middleware.RequireRole(models.RoleClient), handlers.CreateJob)
	jobs.Put("/:id", middleware.RequireRole(models.RoleClient), handlers.UpdateJob)
	jobs.Post("/:id/photo", middleware.RequireRole(models.RoleClient), handlers.UploadJobPhoto)
	jobs.Post("/:id/cancel", middleware.RequireRole(models.RoleClient), handlers.CancelJob)
}
