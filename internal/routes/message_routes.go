package routes

import (
	"github.com/gofiber/fiber/v2"

	"FasoLink/internal/handlers"
	"FasoLink/internal/middleware"
)

func SetupMessageRoutes(app *fiber.App) {
	messages := app.Group("/api/messages", middleware.Protected())

	messages.Post("/", handlers.SendMessage)
	messages.Get("/unread-count", handlers.GetUnreadMessageCount)
}
