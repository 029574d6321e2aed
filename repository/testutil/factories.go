package testutil

import (
	"math/big"
	"time"

	"raffler/domain/entities"
)

// CreateTestLedgerEntry creates a raffle win ledger entry crediting amount to an empty account
func CreateTestLedgerEntry(participant string, amount int64) *entities.LedgerEntry {
	return CreateTestLedgerEntryWithAmounts(participant, 0, amount, amount)
}

// CreateTestLedgerEntryWithAmounts creates a ledger entry with specific amounts
func CreateTestLedgerEntryWithAmounts(participant string, before, after, change int64) *entities.LedgerEntry {
	roundNumber := int64(1)
	return &entities.LedgerEntry{
		Participant:     participant,
		BalanceBefore:   before,
		BalanceAfter:    after,
		ChangeAmount:    change,
		TransactionType: entities.TransactionTypeRaffleWin,
		TransactionMetadata: map[string]any{
			"test": true,
		},
		RoundNumber: &roundNumber,
	}
}

// CreateTestResolvedRound creates a resolved round with default values
func CreateTestResolvedRound(roundNumber int64, winner string) *entities.ResolvedRound {
	return &entities.ResolvedRound{
		RoundNumber:      roundNumber,
		Winner:           winner,
		Payout:           300,
		RequestID:        entities.RequestID(roundNumber),
		RandomWord:       "7",
		ParticipantCount: 3,
		StartedAt:        time.Now().UTC().Add(-time.Minute).Truncate(time.Microsecond),
	}
}

// CreateTestPayout creates a payout for the given winner and amount
func CreateTestPayout(roundNumber int64, recipient string, amount int64) *entities.Payout {
	return &entities.Payout{
		RoundNumber:      roundNumber,
		Recipient:        recipient,
		Amount:           amount,
		RequestID:        entities.RequestID(roundNumber + 100),
		RandomWord:       big.NewInt(42),
		ParticipantCount: 2,
		RoundStartedAt:   time.Now().UTC().Add(-time.Minute).Truncate(time.Microsecond),
	}
}
