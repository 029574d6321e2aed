package entities

import (
	"errors"
	"time"
)

// LedgerEntry represents a historical balance change on an account
type LedgerEntry struct {
	ID                  int64           `db:"id"`
	Participant         string          `db:"participant"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RoundNumber         *int64          `db:"round_number"`
	CreatedAt           time.Time       `db:"created_at"`
}

// IsPositiveChange returns true if the change amount is positive
func (le *LedgerEntry) IsPositiveChange() bool {
	return le.ChangeAmount > 0
}

// ValidateTransaction performs basic validation on the entry
func (le *LedgerEntry) ValidateTransaction() error {
	if le.ChangeAmount == 0 {
		return errors.New("change amount cannot be zero")
	}

	if le.BalanceAfter != le.BalanceBefore+le.ChangeAmount {
		return errors.New("balance calculation is inconsistent")
	}

	return nil
}
