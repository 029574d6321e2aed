package utils

import (
	"context"
	"fmt"

	"raffler/domain/entities"
	"raffler/domain/events"
	"raffler/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange records a ledger entry and emits a balance change event.
// This is the single entry point for all account balance changes.
func RecordBalanceChange(ctx context.Context, ledgerRepo interfaces.LedgerRepository, eventPublisher interfaces.EventPublisher, entry *entities.LedgerEntry) error {
	if err := entry.ValidateTransaction(); err != nil {
		return fmt.Errorf("invalid ledger entry: %w", err)
	}

	if err := ledgerRepo.Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	event := events.BalanceChangeEvent{
		Participant:     entry.Participant,
		OldBalance:      entry.BalanceBefore,
		NewBalance:      entry.BalanceAfter,
		TransactionType: entry.TransactionType,
		ChangeAmount:    entry.ChangeAmount,
	}
	log.WithFields(log.Fields{
		"participant":     event.Participant,
		"oldBalance":      event.OldBalance,
		"newBalance":      event.NewBalance,
		"transactionType": event.TransactionType,
		"changeAmount":    event.ChangeAmount,
	}).Debug("Publishing BalanceChangeEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return nil
}
