package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FasoLink/internal/database"
	"FasoLink/internal/models"
)

// GetMyContracts returns the caller's contracts, as client or artisan
func GetMyContracts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var contracts []models.Contract
	if err := database.DB.
		Where("client_id = ? OR artisan_id = ?", userID, userID).
		Preload("Job").
		Preload("Client").
		Preload("Artisan").
		Order("created_at DESC").
		Find(&contracts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch contracts",
		})
	}

	return c.JSON(fiber.Map{
		"contracts": contracts,
	})
}

// GetContract returns a contract with its escrow state, for either party
func GetContract(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	contractID := c.Params("id")

	var contract models.Contract
	if err := database.DB.
		Preload("Job").
		Preload("Quote").
		Preload("Client").
		Preload("Artisan").
		Preload("Transactions").
		First(&contract, contractID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Contrat introuvable",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Database error",
		})
	}

	if contract.ClientID != userID && contract.ArtisanID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Ce contrat ne vous concerne pas",
		})
	}

	var escrow models.EscrowAccount
	if err := database.DB.Where("contract_id = ?", contract.ID).First(&escrow).Error; err != nil {
		log.Printf("⚠️  No escrow account for contract %d: %v", contract.ID, err)
	}

	return c.JSON(fiber.Map{
		"contract": contract,
		"escrow":   escrow,
	})
}

// CompleteWork lets the artisan mark the contract's work as done
func CompleteWork(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	contractID := c.Params("id")

	var contract models.Contract
	if err := database.DB.Where("id = ? AND artisan_id = ?", contractID, userID).
		Preload("Artisan").
		First(&contract).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Contrat introuvable",
		})
	}

	if contract.Status != models.ContractActif {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Ce contrat n'est pas actif",
		})
	}

	now := time.Now()
	contract.Status = models.ContractTermine
	contract.CompletedAt = &now

	if err := database.DB.Save(&contract).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update contract",
		})
	}

	if err := notificationService.NotifyWorkCompleted(contract.ClientID, contract.Artisan.FullName, contract.ID); err != nil {
		log.Printf("⚠️  Failed to notify client of completed work: %v", err)
	}

	return c.JSON(fiber.Map{
		"message":  "Travaux marqués comme terminés",
		"contract": contract,
	})
}

// ReleaseEscrow lets the client release the escrowed funds to the artisan.
// The remaining escrow balance is credited to the artisan's payout balance.
func ReleaseEscrow(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	contractID := c.Params("id")

	var contract models.Contract
	if err := database.DB.Where("id = ? AND client_id = ?", contractID, userID).First(&contract).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Contrat introuvable",
		})
	}

	if contract.Status != models.ContractTermine {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Les fonds ne peuvent être libérés qu'une fois les travaux terminés",
		})
	}

	var released float64
	now := time.Now()

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var escrow models.EscrowAccount
		if err := tx.Where("contract_id = ?", contract.ID).First(&escrow).Error; err != nil {
			return err
		}

		released = escrow.AmountDeposited - escrow.AmountReleased
		if released <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Aucun fonds à libérer sur ce contrat")
		}

		escrow.AmountReleased = escrow.AmountDeposited
		escrow.Status = models.EscrowLibere
		escrow.ReleasedAt = &now
		if err := tx.Save(&escrow).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", contract.ArtisanID).
			Update("balance", gorm.Expr("balance + ?", released)).Error; err != nil {
			return err
		}

		contract.Status = models.ContractSolde
		contract.SettledAt = &now
		if err := tx.Save(&contract).Error; err != nil {
			return err
		}

		return tx.Model(&models.Job{}).Where("id = ?", contract.JobID).
			Updates(map[string]interface{}{
				"status":     models.JobTermine,
				"closed_at":  now,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
			})
		}
		log.Printf("❌ Failed to release escrow for contract %d: %v", contract.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to release funds",
		})
	}

	var client models.User
	if err := database.DB.First(&client, userID).Error; err == nil {
		if err := notificationService.NotifyFundsReleased(contract.ArtisanID, client.FullName, released, contract.ID); err != nil {
			log.Printf("⚠️  Failed to notify artisan of released funds: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"message":         "Fonds libérés avec succès",
		"amount_released": released,
	})
}

// CancelContract lets the client cancel an active, unfunded contract
func CancelContract(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)
	contractID := c.Params("id")

	var contract models.Contract
	if err := database.DB.Where("id = ? AND client_id = ?", contractID, userID).First(&contract).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Contrat introuvable",
		})
	}

	if contract.Status != models.ContractActif {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Seuls les contrats actifs peuvent être annulés",
		})
	}

	var escrow models.EscrowAccount
	if err := database.DB.Where("contract_id = ?", contract.ID).First(&escrow).Error; err == nil {
		if escrow.AmountDeposited > escrow.AmountReleased {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Impossible d'annuler un contrat avec des fonds sous séquestre",
			})
		}
	}

	now := time.Now()

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		contract.Status = models.ContractAnnule
		if err := tx.Save(&contract).Error; err != nil {
			return err
		}

		// The job goes back on the market
		return tx.Model(&models.Job{}).Where("id = ?", contract.JobID).
			Updates(map[string]interface{}{
				"status":      models.JobOuvert,
				"assigned_at": nil,
				"updated_at":  now,
			}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to cancel contract",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Contrat annulé, l'offre est de nouveau ouverte",
	})
}
