package database

import (
	"fmt"
	"log"

	"FasoLink/internal/models"
)

func Migrate() error {
	log.Println("Running database migrations...")

	err := DB.AutoMigrate(
		&models.User{},
		&models.PendingUser{},
		&models.Job{},
		&models.Quote{},
		&models.Contract{},
		&models.Transaction{},
		&models.EscrowAccount{},
		&models.MomoAccount{},
		&models.PortfolioPhoto{},
		&models.Message{},
		&models.Notification{},
		&models.PaymentWebhookEvent{},
	)

	if err != nil {
		log.Printf("Error migrating database: %v", err)
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("Database migration completed successfully")
	return nil
}
