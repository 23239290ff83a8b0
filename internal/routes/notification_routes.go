package routes

import (
	"github.com/gofiber/fiber/v2"

	"FasoLink/internal/handlers"
	"FasoLink/internal/middleware"
)

func SetupNotificationRoutes(app *fiber.App) {
	notifications := app.Group("/api/notifications", middleware.Protected())

	notifications.Get("/", handlers.GetNotifications)
	notifications.Get("/unread-count", handlers.GetUnreadCount)
	notifications.Put("/:id/read", handlers.MarkAsRead)
	notifications.Put("/read-all", handlers.MarkAllAsRead)
	notifications.Delete("/read", handlers.DeleteAllRead)
	notifications.Delete("/:id", handlers.DeleteNotification)
}
