package services

import (
	"encoding/json"
	"fmt"

	"FasoLink/internal/database"
	"FasoLink/internal/models"
)

type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// CreateNotification creates a new notification
func (s *NotificationService) CreateNotification(userID uint, notifType models.NotificationType, title, message string, data map[string]interface{}) error {
	// Convert data to JSON string
	var dataJSON string
	if data != nil {
		jsonBytes, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal notification data: %w", err)
		}
		dataJSON = string(jsonBytes)
	}

	notification := models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    dataJSON,
		IsRead:  false,
	}

	if err := database.DB.Create(&notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// NotifyQuoteReceived notifies the client when an artisan submits a quote
func (s *NotificationService) NotifyQuoteReceived(clientID uint, artisanName string, amount float64, jobID, quoteID uint) error {
	return s.CreateNotification(
		clientID,
		models.NotificationQuoteReceived,
		"Nouveau devis reçu",
		fmt.Sprintf("%s vous propose un devis de %.0f FCFA", artisanName, amount),
		map[string]interface{}{
			"job_id":       jobID,
			"quote_id":     quoteID,
			"artisan_name": artisanName,
			"amount":       amount,
		},
	)
}

// NotifyQuoteAccepted notifies the artisan when the client accepts their quote
func (s *NotificationService) NotifyQuoteAccepted(artisanID uint, clientName string, amount float64, contractID uint) error {
	return s.CreateNotification(
		artisanID,
		models.NotificationQuoteAccepted,
		"Devis accepté",
		fmt.Sprintf("%s a accepté votre devis de %.0f FCFA. Un contrat a été créé.", clientName, amount),
		map[string]interface{}{
			"contract_id": contractID,
			"client_name": clientName,
			"amount":      amount,
		},
	)
}

// NotifyQuoteRejected notifies the artisan when their quote is rejected
func (s *NotificationService) NotifyQuoteRejected(artisanID uint, jobTitle string, quoteID uint) error {
	return s.CreateNotification(
		artisanID,
		models.NotificationQuoteRejected,
		"Devis non retenu",
		fmt.Sprintf("Votre devis pour « %s » n'a pas été retenu", jobTitle),
		map[string]interface{}{
			"quote_id":  quoteID,
			"job_title": jobTitle,
		},
	)
}

// NotifyDepositReceived notifies both parties when an acompte funds the escrow
func (s *NotificationService) NotifyDepositReceived(clientID, artisanID uint, amount float64, contractID uint) error {
	if err := s.CreateNotification(
		clientID,
		models.NotificationDepositReceived,
		"Acompte confirmé",
		fmt.Sprintf("Votre acompte de %.0f FCFA a bien été reçu et placé sous séquestre", amount),
		map[string]interface{}{
			"contract_id": contractID,
			"amount":      amount,
		},
	); err != nil {
		return err
	}

	return s.CreateNotification(
		artisanID,
		models.NotificationDepositReceived,
		"Acompte sécurisé",
		fmt.Sprintf("Le client a versé un acompte de %.0f FCFA. Vous pouvez démarrer les travaux.", amount),
		map[string]interface{}{
			"contract_id": contractID,
			"amount":      amount,
		},
	)
}

// NotifyWorkCompleted notifies the client when the artisan marks the work done
func (s *NotificationService) NotifyWorkCompleted(clientID uint, artisanName string, contractID uint) error {
	return s.CreateNotification(
		clientID,
		models.NotificationWorkCompleted,
		"Travaux terminés",
		fmt.Sprintf("%s a marqué les travaux comme terminés. Vérifiez et libérez les fonds.", artisanName),
		map[string]interface{}{
			"contract_id":  contractID,
			"artisan_name": artisanName,
		},
	)
}

// NotifyFundsReleased notifies the artisan when the client releases the escrow
func (s *NotificationService) NotifyFundsReleased(artisanID uint, clientName string, amount float64, contractID uint) error {
	return s.CreateNotification(
		artisanID,
		models.NotificationFundsReleased,
		"Fonds libérés",
		fmt.Sprintf("%s a libéré %.0f FCFA sur votre solde", clientName, amount),
		map[string]interface{}{
			"contract_id": contractID,
			"client_name": clientName,
			"amount":      amount,
		},
	)
}

// NotifyMessageReceived notifies a user of a new message on a contract
func (s *NotificationService) NotifyMessageReceived(receiverID uint, senderName string, contractID uint) error {
	return s.CreateNotification(
		receiverID,
		models.NotificationMessageReceived,
		"Nouveau message",
		fmt.Sprintf("%s vous a envoyé un message", senderName),
		map[string]interface{}{
			"contract_id": contractID,
			"sender_name": senderName,
		},
	)
}
