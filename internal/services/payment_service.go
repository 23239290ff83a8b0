package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"FasoLink/internal/database"
	"FasoLink/internal/models"
)

// ApplyPaymentCallback persists a normalized provider callback. The matching
// transaction row is updated with the canonical status, and the first time an
// acompte completes the contract's escrow account is funded. Both writes run
// in one database transaction so a half-applied callback cannot leave a
// completed acompte without its escrow credit.
func ApplyPaymentCallback(provider string, cb NormalizedCallback) error {
	var funded *models.Transaction

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := tx.Where("provider_transaction_id = ?", cb.TransactionID).First(&txn).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				// Providers occasionally deliver callbacks for transactions
				// initiated elsewhere; acknowledge without writing.
				log.Printf("⚠️  Webhook %s: no transaction matches provider id %s", provider, cb.TransactionID)
				return nil
			}
			return fmt.Errorf("lookup transaction %s: %w", cb.TransactionID, err)
		}

		// Callbacks can arrive out of order or more than once. A terminal
		// transaction never moves back to a non-terminal status.
		if txn.Status.IsTerminal() && !cb.Status.IsTerminal() {
			log.Printf("⚠️  Webhook %s: ignoring stale status %s for terminal transaction %s",
				provider, cb.Status, cb.TransactionID)
			return nil
		}

		firstCompletion := cb.Status == models.TransactionComplete && txn.ProcessedAt == nil

		now := time.Now()
		updates := map[string]interface{}{
			"status":     cb.Status,
			"updated_at": now,
		}
		if cb.ProviderReference != "" {
			updates["provider_reference"] = cb.ProviderReference
		}
		if firstCompletion {
			updates["processed_at"] = now
		}

		if err := tx.Model(&txn).Updates(updates).Error; err != nil {
			return fmt.Errorf("update transaction %s: %w", cb.TransactionID, err)
		}

		if firstCompletion && txn.Type == models.TransactionAcompte {
			if err := fundEscrow(tx, &txn); err != nil {
				return err
			}
			funded = &txn
		}

		return nil
	})
	if err != nil {
		return err
	}

	if funded != nil {
		notifyDepositReceived(funded)
	}
	return nil
}

// fundEscrow credits the contract's escrow account with a completed acompte.
// The caller guarantees this runs at most once per transaction (processed_at
// acts as the idempotency flag), so the credit accumulates safely even when
// a contract carries several deposit transactions.
func fundEscrow(tx *gorm.DB, txn *models.Transaction) error {
	var escrow models.EscrowAccount
	if err := tx.Where("contract_id = ?", txn.ContractID).First(&escrow).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Printf("⚠️  No escrow account for contract %d, acompte %s completed without funding",
				txn.ContractID, txn.ProviderTransactionID)
			return nil
		}
		return fmt.Errorf("lookup escrow for contract %d: %w", txn.ContractID, err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"amount_deposited": escrow.AmountDeposited + txn.Amount,
		"status":           models.EscrowAlimente,
		"updated_at":       now,
	}
	if escrow.FundedAt == nil {
		updates["funded_at"] = now
	}

	if err := tx.Model(&escrow).Updates(updates).Error; err != nil {
		return fmt.Errorf("fund escrow for contract %d: %w", txn.ContractID, err)
	}
	return nil
}

// notifyDepositReceived tells both parties that the escrow has been funded.
// Best effort: a failed notification never fails the callback.
func notifyDepositReceived(txn *models.Transaction) {
	var contract models.Contract
	if err := database.DB.First(&contract, txn.ContractID).Error; err != nil {
		log.Printf("⚠️  Deposit notification skipped, contract %d not found: %v", txn.ContractID, err)
		return
	}

	ns := NewNotificationService()
	if err := ns.NotifyDepositReceived(contract.ClientID, contract.ArtisanID, txn.Amount, contract.ID); err != nil {
		log.Printf("⚠️  Failed to send deposit notifications for contract %d: %v", contract.ID, err)
	}
}

// RecordFailedCallback dead-letters a callback whose persistence failed so an
// operator can replay it once the incident is over.
func RecordFailedCallback(provider string, cb NormalizedCallback, payload map[string]interface{}, cause error) {
	raw, _ := json.Marshal(payload)

	event := models.PaymentWebhookEvent{
		Provider:              provider,
		ProviderTransactionID: cb.TransactionID,
		Status:                string(cb.Status),
		Payload:               string(raw),
		Error:                 cause.Error(),
	}

	if err := database.DB.Create(&event).Error; err != nil {
		log.Printf("❌ Failed to dead-letter %s webhook for %s: %v", provider, cb.TransactionID, err)
	}
}
