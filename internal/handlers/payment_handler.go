package handlers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"FasoLink/internal/database"
	"FasoLink/internal/models"
	"FasoLink/internal/services"
)

var momoService *services.MobileMoneyService

// InitMobileMoneyService initializes the mobile money client
func InitMobileMoneyService() {
	momoService = services.NewMobileMoneyService()
}

type InitiatePaymentRequest struct {
	ContractID uint    `json:"contract_id" validate:"required"`
	Provider   string  `json:"provider" validate:"required"`
	Phone      string  `json:"phone" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Type       string  `json:"type" validate:"omitempty,oneof=acompte solde"`
}

type AddMomoAccountRequest struct {
	Provider    string `json:"provider" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	AccountName string `json:"account_name" validate:"required"`
}

// setWebhookCORS applies the permissive header set the webhook answers with
// on every branch. Providers' dashboards and test consoles probe the
// endpoint cross-origin.
func setWebhookCORS(c *fiber.Ctx) {
	c.Set("Access-Control-Allow-Origin", "*")
	c.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	c.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}

// MobileMoneyWebhook receives payment callbacks from the mobile money
// operators. Each operator has its own field names and status vocabulary;
// the payload arrives as a JSON POST body or as GET query parameters
// depending on the operator. The callback is normalized, persisted, and
// acknowledged — operators retry aggressively on non-2xx, so persistence
// failures are dead-lettered instead of surfaced.
func MobileMoneyWebhook(c *fiber.Ctx) error {
	setWebhookCORS(c)

	if c.Method() == fiber.MethodOptions {
		return c.SendStatus(fiber.StatusOK)
	}

	provider := c.Query("provider")

	payload := map[string]interface{}{}
	if c.Method() == fiber.MethodPost {
		if err := json.Unmarshal(c.Body(), &payload); err != nil {
			log.Printf("❌ Webhook %s: unreadable body: %v", provider, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		}
	} else {
		c.Context().QueryArgs().VisitAll(func(key, value []byte) {
			payload[string(key)] = string(value)
		})
	}

	// Raw payload goes to the log before anything can fail, for audit
	log.Printf("📥 Webhook %s payload: %v", provider, payload)

	cb, ok := services.NormalizeCallback(provider, payload)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Provider unknown",
		})
	}

	// An identifiable callback gets persisted; one without a usable
	// transaction id is acknowledged anyway so the operator stops
	// retrying — the payload is already in the logs.
	if cb.TransactionID != "" {
		if err := services.ApplyPaymentCallback(provider, cb); err != nil {
			log.Printf("❌ Webhook %s: persisting callback %s failed: %v", provider, cb.TransactionID, err)
			services.RecordFailedCallback(provider, cb, payload, err)
		}
	}

	resp := fiber.Map{
		"success": true,
		"status":  cb.Status,
	}
	if cb.TransactionID != "" {
		resp["transactionId"] = cb.TransactionID
	}
	return c.JSON(resp)
}

// InitiatePayment starts a mobile money collection on a contract. The
// transaction row is created first with our reference as the provider
// correlation id; the operator echoes it back in the webhook.
func InitiatePayment(c *fiber.Ctx) error {
	req := new(InitiatePaymentRequest)
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

	userID := c.Locals("user_id").(uint)

	if !services.KnownProvider(req.Provider) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Opérateur mobile money non supporté",
		})
	}

	var contract models.Contract
	if err := database.DB.First(&contract, req.ContractID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Contrat introuvable",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Database error",
		})
	}

	if contract.ClientID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Seul le client du contrat peut effectuer ce paiement",
		})
	}

	if contract.Status != models.ContractActif && contract.Status != models.ContractTermine {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Ce contrat n'accepte plus de paiement",
		})
	}

	txType := models.TransactionAcompte
	if req.Type == string(models.TransactionSolde) {
		txType = models.TransactionSolde
	}

	reference := uuid.NewString()

	transaction := models.Transaction{
		ContractID:            contract.ID,
		ClientID:              userID,
		Type:                  txType,
		Amount:                req.Amount,
		Status:                models.TransactionEnAttente,
		Provider:              req.Provider,
		ProviderTransactionID: reference,
	}

	if err := database.DB.Create(&transaction).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create transaction",
		})
	}

	instruction, err := momoService.InitiatePayment(req.Provider, req.Phone, req.Amount, reference)
	if err != nil {
		log.Printf("❌ Payment initiation failed (%s, contract %d): %v", req.Provider, contract.ID, err)
		database.DB.Model(&transaction).Update("status", models.TransactionEchoue)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Échec de l'initialisation du paiement. Réessayez plus tard.",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Paiement initié. Confirmez sur votre téléphone pour finaliser.",
		"transaction": fiber.Map{
			"id":        transaction.ID,
			"reference": reference,
			"amount":    transaction.Amount,
			"type":      transaction.Type,
			"status":    transaction.Status,
			"provider":  transaction.Provider,
		},
		"payment_info": instruction,
	})
}

// GetContractTransactions retrieves the payment history of a contract
func GetContractTransactions(c *fiber.Ctx) error {
	contractID := c.Params("id")
	userID := c.Locals("user_id").(uint)

	var contract models.Contract
	if err := database.DB.First(&contract, contractID).Error; err != nil {
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
			"error": "Vous n'avez pas accès à ce contrat",
		})
	}

	var transactions []models.Transaction
	if err := database.DB.Where("contract_id = ?", contract.ID).
		Order("created_at DESC").Find(&transactions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve transactions",
		})
	}

	return c.JSON(fiber.Map{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// AddMomoAccount registers a mobile money payout account
func AddMomoAccount(c *fiber.Ctx) error {
	req := new(AddMomoAccountRequest)
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

	userID := c.Locals("user_id").(uint)

	if !services.KnownProvider(req.Provider) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Opérateur mobile money non supporté",
		})
	}

	// Check if account already exists
	var existingAccount models.MomoAccount
	if err := database.DB.Where("user_id = ? AND provider = ? AND phone_number = ?",
		userID, req.Provider, req.PhoneNumber).First(&existingAccount).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Ce compte mobile money existe déjà",
		})
	}

	var count int64
	database.DB.Model(&models.MomoAccount{}).Where("user_id = ?", userID).Count(&count)

	account := models.MomoAccount{
		UserID:      userID,
		Provider:    req.Provider,
		PhoneNumber: req.PhoneNumber,
		AccountName: req.AccountName,
		IsDefault:   count == 0, // First account becomes default
	}

	if err := database.DB.Create(&account).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add momo account",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Compte mobile money ajouté",
		"momo_account": account,
	})
}

// GetMomoAccounts retrieves the user's payout accounts
func GetMomoAccounts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var accounts []models.MomoAccount
	if err := database.DB.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").Find(&accounts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve momo accounts",
		})
	}

	return c.JSON(fiber.Map{
		"momo_accounts": accounts,
		"count":         len(accounts),
	})
}

// SetDefaultMomoAccount sets a payout account as default
func SetDefaultMomoAccount(c *fiber.Ctx) error {
	accountID := c.Params("id")
	userID := c.Locals("user_id").(uint)

	var account models.MomoAccount
	if err := database.DB.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Compte introuvable",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Database error",
		})
	}

	database.DB.Model(&models.MomoAccount{}).Where("user_id = ?", userID).Update("is_default", false)

	account.IsDefault = true
	if err := database.DB.Save(&account).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to set default account",
		})
	}

	return c.JSON(fiber.Map{
		"message":      "Compte par défaut mis à jour",
		"momo_account": account,
	})
}

// DeleteMomoAccount removes a payout account
func DeleteMomoAccount(c *fiber.Ctx) error {
	accountID := c.Params("id")
	userID := c.Locals("user_id").(uint)

	var account models.MomoAccount
	if err := database.DB.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Compte introuvable",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Database error",
		})
	}

	if err := database.DB.Delete(&account).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete momo account",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Compte mobile money supprimé",
	})
}
