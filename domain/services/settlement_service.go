package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
	"raffler/domain/utils"
)

// settlementService credits raffle payouts to participant accounts
type settlementService struct {
	accountRepo      interfaces.AccountRepository
	ledgerRepo       interfaces.LedgerRepository
	roundHistoryRepo interfaces.RoundHistoryRepository
	eventPublisher   interfaces.EventPublisher
}

// NewSettlementService creates a settlement service over the given repositories
func NewSettlementService(
	accountRepo interfaces.AccountRepository,
	ledgerRepo interfaces.LedgerRepository,
	roundHistoryRepo interfaces.RoundHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.Settlement {
	return &settlementService{
		accountRepo:      accountRepo,
		ledgerRepo:       ledgerRepo,
		roundHistoryRepo: roundHistoryRepo,
		eventPublisher:   eventPublisher,
	}
}

// Transfer credits the payout to the recipient's account and records the resolved round
func (s *settlementService) Transfer(ctx context.Context, payout *entities.Payout) error {
	if payout == nil || payout.Recipient == "" {
		return errors.New("payout recipient is required")
	}
	if payout.Amount <= 0 {
		return fmt.Errorf("payout amount must be positive, got %d", payout.Amount)
	}

	account, err := s.accountRepo.GetByParticipantForUpdate(ctx, payout.Recipient)
	if err != nil {
		return fmt.Errorf("failed to get recipient account: %w", err)
	}
	if account == nil {
		account, err = s.accountRepo.Create(ctx, payout.Recipient, 0)
		if err != nil {
			return fmt.Errorf("failed to create recipient account: %w", err)
		}
	}

	if payout.Amount > math.MaxInt64-account.Balance {
		return fmt.Errorf("%w: %s has %d, payout %d", ErrBalanceOverflow, payout.Recipient, account.Balance, payout.Amount)
	}
	newBalance := account.Balance + payout.Amount
	if err := s.accountRepo.UpdateBalance(ctx, payout.Recipient, newBalance); err != nil {
		return fmt.Errorf("failed to update recipient balance: %w", err)
	}

	roundNumber := payout.RoundNumber
	entry := &entities.LedgerEntry{
		Participant:     payout.Recipient,
		BalanceBefore:   account.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    payout.Amount,
		TransactionType: entities.TransactionTypeRaffleWin,
		TransactionMetadata: map[string]any{
			"round_number":      payout.RoundNumber,
			"request_id":        payout.RequestID.String(),
			"participant_count": payout.ParticipantCount,
		},
		RoundNumber: &roundNumber,
	}
	if err := utils.RecordBalanceChange(ctx, s.ledgerRepo, s.eventPublisher, entry); err != nil {
		return fmt.Errorf("failed to record winner balance change: %w", err)
	}

	randomWord := ""
	if payout.RandomWord != nil {
		randomWord = payout.RandomWord.String()
	}
	resolved := &entities.ResolvedRound{
		RoundNumber:      payout.RoundNumber,
		Winner:           payout.Recipient,
		Payout:           payout.Amount,
		RequestID:        payout.RequestID,
		RandomWord:       randomWord,
		ParticipantCount: payout.ParticipantCount,
		StartedAt:        payout.RoundStartedAt,
	}
	if err := s.roundHistoryRepo.Record(ctx, resolved); err != nil {
		return fmt.Errorf("failed to record resolved round: %w", err)
	}

	return nil
}
