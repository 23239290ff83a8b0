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

var cloudinaryService *services.CloudinaryService

// InitCloudinaryService initializes the Cloudinary upload service
func InitCloudinaryService() {
	var err error
	cloudinaryService, err = services.NewCloudinaryService()
	if err != nil {
		log.Printf("⚠️  Cloudinary not configured, photo uploads disabled: %v", err)
	}
}

type CreateJobRequest struct {
	Title       string  `json:"title" validate:"required,min=5,max=255"`
	Description string  `json:"description" validate:"required,min=20"`
	Category    string  `json:"category" validate:"required"`
	City        string  `json:"city" validate:"required"`
	Budget      float64 `json:"budget" validate:"required,gt=0"`
}

type UpdateJobRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	City        string  `json:"city"`
	Budget      float64 `json:"budget"`
}

// CreateJob lets a client publish a job offer
func CreateJob(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	req := new(CreateJobRequest)
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

	job := models.Job{
		ClientID:    userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		City:        req.City,
		Budget:      req.Budget,
		Status:      models.JobOuvert,
	}

	if err := database.DB.Create(&job).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create job",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Offre publiée avec succès",
		"job":     job,
	})
}

// ListJobs returns open jobs, filterable by category and city
func ListJobs(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Job{}).
		Preload("Client").
		Where("status = ?", models.JobOuvert)

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}

	var jobs []models.Job
	if err := query.Order("created_at DESC").Limit(50).Find(&jobs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch jobs",
		})
	}

	return c.JSON(fiber.Map{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetMyJobs returns the authenticated client's own jobs, whatever their status
func GetMyJobs(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var jobs []models.Job
	if err := database.DB.Where("client_id = ?", userID).
		Preload("Quotes").
		Preload("Quotes.Artisan").
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch jobs",
		})
	}

	return c.JSON(fiber.Map{
		"jobs": jobs,
	})
}

// GetJob returns a single job with its quotes
func GetJob(c *fiber.Ctx) error {
	jobID := c.Params("id")

	var job models.Job
	if err := database.DB.
		Preload("Client").
		Preload("Quotes").
		Preload("Quotes.Artisan").
		First(&job, jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Offre introuvable",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Database error",
		})
	}

	return c.JSON(fiber.Map{
		"job": job,
	})
}

// UpdateJob updates an open job owned by the caller
func UpdateJob(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	jobID := c.Params("id")

	var job models.Job
	if err := database.DB.Where("id = ? AND client_id = ?", jobID, userID).First(&job).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Offre introuvable",
		})
	}

	if job.Status != models.JobOuvert {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Seules les offres ouvertes peuvent être modifiées",
		})
	}

	req := new(UpdateJobRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title != "" {
		job.Title = req.Title
	}
	if req.Description != "" {
		job.Description = req.Description
	}
	if req.Category != "" {
		job.Category = req.Category
	}
	if req.City != "" {
		job.City = req.City
	}
	if req.Budget > 0 {
		job.Budget = req.Budget
	}

	if err := database.DB.Save(&job).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update job",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Offre mise à jour",
		"job":     job,
	})
}

// UploadJobPhoto attaches a photo to an open job owned by the caller
func UploadJobPhoto(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	jobID := c.Params("id")

	if cloudinaryService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Le téléversement de photos est indisponible",
		})
	}

	var job models.Job
	if err := database.DB.Where("id = ? AND client_id = ?", jobID, userID).First(&job).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Offre introuvable",
		})
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Aucun fichier fourni",
		})
	}

	// 5MB max
	if file.Size > 5*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Le fichier dépasse la taille maximale de 5 Mo",
		})
	}

	result, err := cloudinaryService.UploadFile(file, "fasolink/jobs")
	if err != nil {
		log.Printf("❌ Job photo upload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Échec du téléversement de la photo",
		})
	}

	// Replace the previous photo if any
	if job.PhotoPublicID != "" {
		if err := cloudinaryService.DeleteFile(job.PhotoPublicID); err != nil {
			log.Printf("⚠️  Failed to delete old job photo %s: %v", job.PhotoPublicID, err)
		}
	}

	job.PhotoURL = result.SecureURL
	job.PhotoPublicID = result.PublicID

	if err := database.DB.Save(&job).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save photo",
		})
	}

	return c.JSON(fiber.Map{
		"message":   "Photo ajoutée avec succès",
		"photo_url": job.PhotoURL,
	})
}

// CancelJob cancels an open job owned by the caller
func CancelJob(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	jobID := c.Params("id")

	var job models.Job
	if err := database.DB.Where("id = ? AND client_id = ?", jobID, userID).First(&job).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Offre introuvable",
		})
	}

	if job.Status != models.JobOuvert {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Seules les offres ouvertes peuvent être annulées",
		})
	}

	now := time.Now()

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		job.Status = models.JobAnnule
		job.ClosedAt = &now
		if err := tx.Save(&job).Error; err != nil {
			return err
		}

		// Pending quotes on a cancelled job are rejected
		return tx.Model(&models.Quote{}).
			Where("job_id = ? AND status = ?", job.ID, models.QuoteEnAttente).
			Updates(map[string]interface{}{
				"status":     models.QuoteRefuse,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to cancel job",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Offre annulée",
	})
}
