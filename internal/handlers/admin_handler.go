package handlers

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"FasoLink/internal/database"
	"FasoLink/internal/models"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{
		db: database.DB,
	}
}

// AdminLogin
func (h *AdminHandler) AdminLogin(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if !user.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Admin access required",
		})
	}

	if user.IsSuspended {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Account is suspended",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour * 24 * 7).Unix(),
	})

	tokenString, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Admin login successful",
		"token":   tokenString,
		"user": fiber.Map{
			"id":        user.ID,
			"full_name": user.FullName,
			"email":     user.Email,
			"role":      user.Role,
			"user_tag":  user.UserTag,
		},
	})
}

// CreateAdmin creates a new admin account (only existing admins can create new admins)
func (h *AdminHandler) CreateAdmin(c *fiber.Ctx) error {
	var req struct {
		FullName string `json:"full_name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Phone    string `json:"phone" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var existingUser models.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Email already exists",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	admin := models.User{
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        string(hashedPassword),
		UserTag:         GenerateUserTag(req.FullName),
		Role:            models.RoleAdmin,
		IsEmailVerified: true,
		Balance:         0,
	}

	if err := h.db.Create(&admin).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create admin account",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Admin account created successfully",
		"admin": fiber.Map{
			"id":        admin.ID,
			"full_name": admin.FullName,
			"email":     admin.Email,
			"user_tag":  admin.UserTag,
			"role":      admin.Role,
		},
	})
}

// InitializeFirstAdmin
func (h *AdminHandler) InitializeFirstAdmin(c *fiber.Ctx) error {
	var adminCount int64
	h.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&adminCount)

	if adminCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Admin already exists. Use the create admin endpoint with proper authorization.",
		})
	}

	var req struct {
		FullName string `json:"full_name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Phone    string `json:"phone" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
		SetupKey string `json:"setup_key" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	setupKey := os.Getenv("ADMIN_SETUP_KEY")
	if setupKey == "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Admin setup is not configured",
		})
	}

	if req.SetupKey != setupKey {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid setup key",
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to hash password",
		})
	}

	admin := models.User{
		FullName:        req.FullName,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        string(hashedPassword),
		UserTag:         GenerateUserTag(req.FullName),
		Role:            models.RoleAdmin,
		IsEmailVerified: true,
		Balance:         0,
	}

	if err := h.db.Create(&admin).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create admin account",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "First admin account created successfully",
		"admin": fiber.Map{
			"id":        admin.ID,
			"full_name": admin.FullName,
			"email":     admin.Email,
			"user_tag":  admin.UserTag,
			"role":      admin.Role,
		},
	})
}

// GetAdminProfile returns the current admin's profile
func (h *AdminHandler) GetAdminProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var admin models.User
	if err := h.db.First(&admin, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Admin not found",
		})
	}

	return c.JSON(fiber.Map{
		"admin": fiber.Map{
			"id":                admin.ID,
			"full_name":         admin.FullName,
			"email":             admin.Email,
			"phone":             admin.Phone,
			"user_tag":          admin.UserTag,
			"role":              admin.Role,
			"is_email_verified": admin.IsEmailVerified,
			"created_at":        admin.CreatedAt,
		},
	})
}

// GetAllUsers retrieves all users with pagination
func (h *AdminHandler) GetAllUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	var users []models.User
	var total int64

	query := h.db.Model(&models.User{})

	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count users",
		})
	}

	if err := query.Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetUserByID retrieves a specific user
func (h *AdminHandler) GetUserByID(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"user": user,
	})
}

// SuspendUser suspends a user account
func (h *AdminHandler) SuspendUser(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	var req struct {
		Reason string `json:"reason" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	now := time.Now()
	if err := h.db.Model(&user).Updates(map[string]interface{}{
		"is_suspended":   true,
		"suspended_at":   &now,
		"suspend_reason": req.Reason,
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to suspend user",
		})
	}

	return c.JSON(fiber.Map{
		"message": "User suspended successfully",
	})
}

// UnsuspendUser reactivates a suspended user account
func (h *AdminHandler) UnsuspendUser(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	if err := h.db.Model(&user).Updates(map[string]interface{}{
		"is_suspended":   false,
		"suspended_at":   nil,
		"suspend_reason": "",
	}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to unsuspend user",
		})
	}

	return c.JSON(fiber.Map{
		"message": "User unsuspended successfully",
	})
}

// GetAllTransactions retrieves all payment transactions with filters
func (h *AdminHandler) GetAllTransactions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	status := c.Query("status")
	txType := c.Query("type")
	provider := c.Query("provider")

	var transactions []models.Transaction
	var total int64

	query := h.db.Model(&models.Transaction{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if txType != "" {
		query = query.Where("type = ?", txType)
	}
	if provider != "" {
		query = query.Where("provider = ?", provider)
	}

	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count transactions",
		})
	}

	if err := query.Preload("Client").Preload("Contract").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve transactions",
		})
	}

	return c.JSON(fiber.Map{
		"transactions": transactions,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetWebhookEvents retrieves dead-lettered provider callbacks
func (h *AdminHandler) GetWebhookEvents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset := (page - 1) * limit

	var events []models.PaymentWebhookEvent
	var total int64

	query := h.db.Model(&models.PaymentWebhookEvent{})

	if c.Query("resolved") == "false" {
		query = query.Where("resolved = ?", false)
	}
	if provider := c.Query("provider"); provider != "" {
		query = query.Where("provider = ?", provider)
	}

	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to count webhook events",
		})
	}

	if err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&events).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve webhook events",
		})
	}

	return c.JSON(fiber.Map{
		"events": events,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// ResolveWebhookEvent marks a dead-lettered callback as handled
func (h *AdminHandler) ResolveWebhookEvent(c *fiber.Ctx) error {
	eventID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid event ID",
		})
	}

	var event models.PaymentWebhookEvent
	if err := h.db.First(&event, eventID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Webhook event not found",
		})
	}

	if err := h.db.Model(&event).Update("resolved", true).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to resolve webhook event",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Webhook event resolved",
		"event":   event,
	})
}

// GetDashboardStats retrieves admin dashboard statistics
func (h *AdminHandler) GetDashboardStats(c *fiber.Ctx) error {
	var stats struct {
		TotalUsers          int64   `json:"total_users"`
		TotalClients        int64   `json:"total_clients"`
		TotalArtisans       int64   `json:"total_artisans"`
		SuspendedUsers      int64   `json:"suspended_users"`
		OpenJobs            int64   `json:"open_jobs"`
		TotalJobs           int64   `json:"total_jobs"`
		ActiveContracts     int64   `json:"active_contracts"`
		SettledContracts    int64   `json:"settled_contracts"`
		TotalTransactions   int64   `json:"total_transactions"`
		PendingTransactions int64   `json:"pending_transactions"`
		TotalEscrowed       float64 `json:"total_escrowed"`
		UnresolvedEvents    int64   `json:"unresolved_events"`
	}

	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.User{}).Where("role = ?", models.RoleClient).Count(&stats.TotalClients)
	h.db.Model(&models.User{}).Where("role = ?", models.RoleArtisan).Count(&stats.TotalArtisans)
	h.db.Model(&models.User{}).Where("is_suspended = ?", true).Count(&stats.SuspendedUsers)

	h.db.Model(&models.Job{}).Count(&stats.TotalJobs)
	h.db.Model(&models.Job{}).Where("status = ?", models.JobOuvert).Count(&stats.OpenJobs)

	h.db.Model(&models.Contract{}).Where("status = ?", models.ContractActif).Count(&stats.ActiveContracts)
	h.db.Model(&models.Contract{}).Where("status = ?", models.ContractSolde).Count(&stats.SettledContracts)

	h.db.Model(&models.Transaction{}).Count(&stats.TotalTransactions)
	h.db.Model(&models.Transaction{}).Where("status IN (?)",
		[]models.TransactionStatus{models.TransactionEnAttente, models.TransactionTraitement}).
		Count(&stats.PendingTransactions)

	h.db.Model(&models.EscrowAccount{}).
		Select("COALESCE(SUM(amount_deposited - amount_released), 0)").
		Scan(&stats.TotalEscrowed)

	h.db.Model(&models.PaymentWebhookEvent{}).Where("resolved = ?", false).Count(&stats.UnresolvedEvents)

	return c.JSON(fiber.Map{
		"stats": stats,
	})
}
