package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FasoLink/internal/database"
	"FasoLink/internal/models"
	"FasoLink/internal/services"
)

var notificationService = services.NewNotificationService()

type SubmitQuoteRequest struct {
	JobID     uint    `json:"job_id" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Message   string  `json:"message"`
	DelayDays int     `json:"delay_days" validate:"gte=0"`
}

// SubmitQuote lets an artisan submit a quote on an open job
func SubmitQuote(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	req := new(SubmitQuoteRequest)
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

	var job models.Job
	if err := database.DB.First(&job, req.JobID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Offre introuvable",
		})
	}

	if job.Status != models.JobOuvert {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cette offre n'accepte plus de devis",
		})
	}

	if job.ClientID == userID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Vous ne pouvez pas soumettre un devis sur votre propre offre",
		})
	}

	// One pending quote per artisan per job
	var existing models.Quote
	if err := database.DB.Where("job_id = ? AND artisan_id = ? AND status = ?",
		req.JobID, userID, models.QuoteEnAttente).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Vous avez déjà un devis en attente sur cette offre",
		})
	}

	quote := models.Quote{
		JobID:     req.JobID,
		ArtisanID: userID,
		Amount:    req.Amount,
		Message:   req.Message,
		DelayDays: req.DelayDays,
		Status:    models.QuoteEnAttente,
	}

	if err := database.DB.Create(&quote).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit quote",
		})
	}

	var artisan models.User
	if err := database.DB.First(&artisan, userID).Error; err == nil {
		if err := notificationService.NotifyQuoteReceived(job.ClientID, artisan.FullName, quote.Amount, job.ID, quote.ID); err != nil {
			log.Printf("⚠️  Failed to notify client of new quote: %v", err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Devis envoyé avec succès",
		"quote":   quote,
	})
}

// GetMyQuotes returns the authenticated artisan's quotes
func GetMyQuotes(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var quotes []models.Quote
	if err := database.DB.Where("artisan_id = ?", userID).
		Preload("Job").
		Order("created_at DESC").
		Find(&quotes).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch quotes",
		})
	}

	return c.JSON(fiber.Map{
		"quotes": quotes,
	})
}

// AcceptQuote accepts a quote: the contract and its escrow account are
// created, the job is assigned and all competing quotes are rejected,
// all in one transaction.
func AcceptQuote(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	quoteID := c.Params("id")

	var quote models.Quote
	if err := database.DB.Preload("Job").First(&quote, quoteID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Devis introuvable",
		})
	}

	if quote.Job.ClientID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Cette offre ne vous appartient pas",
		})
	}

	if quote.Status != models.QuoteEnAttente {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Ce devis n'est plus en attente",
		})
	}

	if quote.Job.Status != models.JobOuvert {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cette offre a déjà été attribuée",
		})
	}

	now := time.Now()
	var contract models.Contract
	var rejected []models.Quote

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		quote.Status = models.QuoteAccepte
		quote.AcceptedAt = &now
		if err := tx.Save(&quote).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Job{}).Where("id = ?", quote.JobID).
			Updates(map[string]interface{}{
				"status":      models.JobAttribue,
				"assigned_at": now,
				"updated_at":  now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Where("job_id = ? AND status = ? AND id != ?",
			quote.JobID, models.QuoteEnAttente, quote.ID).Find(&rejected).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Quote{}).
			Where("job_id = ? AND status = ? AND id != ?", quote.JobID, models.QuoteEnAttente, quote.ID).
			Updates(map[string]interface{}{
				"status":     models.QuoteRefuse,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}

		contract = models.Contract{
			JobID:     quote.JobID,
			QuoteID:   quote.ID,
			ClientID:  userID,
			ArtisanID: quote.ArtisanID,
			Amount:    quote.Amount,
			Status:    models.ContractActif,
		}
		if err := tx.Create(&contract).Error; err != nil {
			return err
		}

		escrow := models.EscrowAccount{
			ContractID: contract.ID,
			Status:     models.EscrowEnAttente,
		}
		return tx.Create(&escrow).Error
	})
	if err != nil {
		log.Printf("❌ Failed to accept quote %s: %v", quoteID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to accept quote",
		})
	}

	var client models.User
	if err := database.DB.First(&client, userID).Error; err == nil {
		if err := notificationService.NotifyQuoteAccepted(quote.ArtisanID, client.FullName, quote.Amount, contract.ID); err != nil {
			log.Printf("⚠️  Failed to notify artisan of accepted quote: %v", err)
		}
	}
	for _, r := range rejected {
		if err := notificationService.NotifyQuoteRejected(r.ArtisanID, quote.Job.Title, r.ID); err != nil {
			log.Printf("⚠️  Failed to notify artisan of rejected quote: %v", err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Devis accepté, contrat créé",
		"contract": contract,
	})
}

// RejectQuote lets the client reject a pending quote on their job
func RejectQuote(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	quoteID := c.Params("id")

	var quote models.Quote
	if err := database.DB.Preload("Job").First(&quote, quoteID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Devis introuvable",
		})
	}

	if quote.Job.ClientID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Cette offre ne vous appartient pas",
		})
	}

	if quote.Status != models.QuoteEnAttente {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Ce devis n'est plus en attente",
		})
	}

	quote.Status = models.QuoteRefuse
	if err := database.DB.Save(&quote).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reject quote",
		})
	}

	if err := notificationService.NotifyQuoteRejected(quote.ArtisanID, quote.Job.Title, quote.ID); err != nil {
		log.Printf("⚠️  Failed to notify artisan of rejected quote: %v", err)
	}

	return c.JSON(fiber.Map{
		"message": "Devis refusé",
	})
}

// WithdrawQuote lets an artisan withdraw their own pending quote
func WithdrawQuote(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	quoteID := c.Params("id")

	var quote models.Quote
	if err := database.DB.Where("id = ? AND artisan_id = ?", quoteID, userID).First(&quote).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Devis introuvable",
		})
	}

	if quote.Status != models.QuoteEnAttente {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Seuls les devis en attente peuvent être retirés",
		})
	}

	quote.Status = models.QuoteRetire
	if err := database.DB.Save(&quote).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to withdraw quote",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Devis retiré",
	})
}
