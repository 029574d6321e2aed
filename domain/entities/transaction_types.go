package entities

// TransactionType represents the type of ledger movement
type TransactionType string

const (
	TransactionTypeRaffleWin TransactionType = "raffle_win"
)
