package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"FasoLink/internal/database"
	"FasoLink/internal/models"
)

type SendMessageRequest struct {
	ContractID uint   `json:"contract_id" validate:"required"`
	Body       string `json:"body" validate:"required,max=2000"`
}

// SendMessage sends a message to the other party of a contract
func SendMessage(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	req := new(SendMessageRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var contract models.Contract
	if err := database.DB.First(&contract, req.ContractID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Contrat introuvable",
		})
	}

	if contract.ClientID != userID && contract.ArtisanID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Ce contrat ne vous concerne pas",
		})
	}

	receiverID := contract.ClientID
	if userID == contract.ClientID {
		receiverID = contract.ArtisanID
	}

	message := models.Message{
		ContractID: req.ContractID,
		SenderID:   userID,
		ReceiverID: receiverID,
		Body:       req.Body,
	}

	if err := database.DB.Create(&message).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to send message",
		})
	}

	var sender models.User
	if err := database.DB.First(&sender, userID).Error; err == nil {
		if err := notificationService.NotifyMessageReceived(receiverID, sender.FullName, contract.ID); err != nil {
			log.Printf("⚠️  Failed to notify receiver of new message: %v", err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
	})
}

// GetContractMessages returns a contract's conversation and marks the
// caller's unread messages as read.
func GetContractMessages(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	contractID := c.Params("id")

	var contract models.Contract
	if err := database.DB.First(&contract, contractID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Contrat introuvable",
		})
	}

	if contract.ClientID != userID && contract.ArtisanID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Ce contrat ne vous concerne pas",
		})
	}

	var messages []models.Message
	if err := database.DB.Where("contract_id = ?", contract.ID).
		Preload("Sender").
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch messages",
		})
	}

	now := time.Now()
	if err := database.DB.Model(&models.Message{}).
		Where("contract_id = ? AND receiver_id = ? AND is_read = ?", contract.ID, userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
		log.Printf("⚠️  Failed to mark messages as read: %v", err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
	})
}

// GetUnreadMessageCount returns the caller's unread message count
func GetUnreadMessageCount(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var count int64
	if err := database.DB.Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count messages",
		})
	}

	return c.JSON(fiber.Map{
		"unread_count": count,
	})
}
