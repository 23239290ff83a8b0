package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FasoLink/internal/database"
	"FasoLink/internal/models"
)

type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Bio      string `json:"bio"`
	Trade    string `json:"trade"`
	City     string `json:"city"`
}

// GetMyProfile returns the authenticated user's profile
func GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Utilisateur introuvable",
		})
	}

	return c.JSON(fiber.Map{
		"user": user,
	})
}

// UpdateProfile updates the authenticated user's profile
func UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	req := new(UpdateProfileRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Utilisateur introuvable",
		})
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	// Trade and city only make sense on artisan profiles
	if user.IsArtisan() {
		if req.Trade != "" {
			user.Trade = req.Trade
		}
		if req.City != "" {
			user.City = req.City
		}
	}

	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update profile",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Profil mis à jour",
		"user":    user,
	})
}

// UploadAvatar uploads a profile picture for the authenticated user
func UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	if cloudinaryService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Le téléversement de photos est indisponible",
		})
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Utilisateur introuvable",
		})
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Aucun fichier fourni",
		})
	}

	// 2MB max for avatars
	if file.Size > 2*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Le fichier dépasse la taille maximale de 2 Mo",
		})
	}

	result, err := cloudinaryService.UploadFile(file, "fasolink/avatars")
	if err != nil {
		log.Printf("❌ Avatar upload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Échec du téléversement de la photo",
		})
	}

	if user.AvatarPublicID != "" {
		if err := cloudinaryService.DeleteFile(user.AvatarPublicID); err != nil {
			log.Printf("⚠️  Failed to delete old avatar %s: %v", user.AvatarPublicID, err)
		}
	}

	user.Avatar = result.SecureURL
	user.AvatarPublicID = result.PublicID

	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save avatar",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Photo de profil mise à jour",
		"avatar":  user.Avatar,
	})
}

// UploadPortfolioPhoto adds a work sample to the artisan's public profile
func UploadPortfolioPhoto(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	if cloudinaryService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Le téléversement de photos est indisponible",
		})
	}

	// Portfolios are capped at 12 photos
	var count int64
	database.DB.Model(&models.PortfolioPhoto{}).Where("user_id = ?", userID).Count(&count)
	if count >= 12 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Votre portfolio est plein (12 photos maximum)",
		})
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Aucun fichier fourni",
		})
	}

	if file.Size > 5*1024*1024 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Le fichier dépasse la taille maximale de 5 Mo",
		})
	}

	result, err := cloudinaryService.UploadFile(file, "fasolink/portfolios")
	if err != nil {
		log.Printf("❌ Portfolio upload failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Échec du téléversement de la photo",
		})
	}

	photo := models.PortfolioPhoto{
		UserID:        userID,
		URL:           result.SecureURL,
		PhotoPublicID: result.PublicID,
		Caption:       c.FormValue("caption"),
	}

	if err := database.DB.Create(&photo).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save photo",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Photo ajoutée au portfolio",
		"photo":   photo,
	})
}

// DeletePortfolioPhoto removes a work sample from the artisan's portfolio
func DeletePortfolioPhoto(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	photoID := c.Params("id")

	var photo models.PortfolioPhoto
	if err := database.DB.Where("id = ? AND user_id = ?", photoID, userID).First(&photo).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Photo introuvable",
		})
	}

	if cloudinaryService != nil {
		if err := cloudinaryService.DeleteFile(photo.PhotoPublicID); err != nil {
			log.Printf("⚠️  Failed to delete portfolio photo %s: %v", photo.PhotoPublicID, err)
		}
	}

	if err := database.DB.Delete(&photo).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete photo",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Photo supprimée du portfolio",
	})
}

// GetArtisanProfile returns an artisan's public profile with basic activity stats
func GetArtisanProfile(c *fiber.Ctx) error {
	artisanID := c.Params("id")

	var artisan models.User
	if err := database.DB.Where("id = ? AND role = ?", artisanID, models.RoleArtisan).
		First(&artisan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Artisan introuvable",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Database error",
		})
	}

	var completedContracts int64
	database.DB.Model(&models.Contract{}).
		Where("artisan_id = ? AND status = ?", artisan.ID, models.ContractSolde).
		Count(&completedContracts)

	var portfolio []models.PortfolioPhoto
	database.DB.Where("user_id = ?", artisan.ID).
		Order("created_at DESC").
		Find(&portfolio)

	return c.JSON(fiber.Map{
		"artisan": fiber.Map{
			"id":           artisan.ID,
			"full_name":    artisan.FullName,
			"user_tag":     artisan.UserTag,
			"trade":        artisan.Trade,
			"city":         artisan.City,
			"bio":          artisan.Bio,
			"avatar":       artisan.Avatar,
			"member_since": artisan.CreatedAt,
		},
		"completed_contracts": completedContracts,
		"portfolio":           portfolio,
	})
}

// SearchArtisans lists artisans filterable by trade and city
func SearchArtisans(c *fiber.Ctx) error {
	query := database.DB.Model(&models.User{}).
		Where("role = ? AND is_suspended = ?", models.RoleArtisan, false)

	if trade := c.Query("trade"); trade != "" {
		query = query.Where("trade = ?", trade)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}

	var artisans []models.User
	if err := query.
		Select("id", "full_name", "user_tag", "trade", "city", "bio", "avatar", "created_at").
		Order("created_at DESC").
		Limit(50).
		Find(&artisans).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search artisans",
		})
	}

	return c.JSON(fiber.Map{
		"artisans": artisans,
		"count":    len(artisans),
	})
}
