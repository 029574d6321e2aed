package application

import (
	"context"
	"fmt"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
	"raffler/domain/services"

	log "github.com/sirupsen/logrus"
)

// LedgerSettlement pays raffle winners into the ledger. Each payout runs in
// its own unit of work so the credit, ledger entry and round history commit
// or roll back together.
type LedgerSettlement struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerSettlement creates a new ledger settlement
func NewLedgerSettlement(uowFactory UnitOfWorkFactory) *LedgerSettlement {
	return &LedgerSettlement{
		uowFactory: uowFactory,
	}
}

// Transfer credits payout.Amount to payout.Recipient
func (s *LedgerSettlement) Transfer(ctx context.Context, payout *entities.Payout) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settlement := services.NewSettlementService(
		uow.AccountRepository(),
		uow.LedgerRepository(),
		uow.RoundHistoryRepository(),
		uow.EventBus(),
	)

	if err := settlement.Transfer(ctx, payout); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"round_number": payout.RoundNumber,
		"recipient":    payout.Recipient,
		"amount":       payout.Amount,
	}).Info("Raffle payout settled")

	return nil
}

var _ interfaces.Settlement = (*LedgerSettlement)(nil)
