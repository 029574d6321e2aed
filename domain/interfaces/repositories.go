package interfaces

import (
	"context"

	"raffler/domain/entities"
	"raffler/domain/events"
)

// AccountRepository defines the interface for participant account data access
type AccountRepository interface {
	// GetByParticipant retrieves an account, returning nil if none exists
	GetByParticipant(ctx context.Context, participant string) (*entities.Account, error)

	// GetByParticipantForUpdate retrieves an account with a row lock
	GetByParticipantForUpdate(ctx context.Context, participant string) (*entities.Account, error)

	// Create creates a new account with the given balance
	Create(ctx context.Context, participant string, initialBalance int64) (*entities.Account, error)

	// UpdateBalance sets the account balance
	UpdateBalance(ctx context.Context, participant string, newBalance int64) error
}

// LedgerRepository defines the interface for ledger entry data access
type LedgerRepository interface {
	// Record stores a ledger entry, filling in its ID and CreatedAt
	Record(ctx context.Context, entry *entities.LedgerEntry) error

	// GetByParticipant returns the most recent entries for a participant
	GetByParticipant(ctx context.Context, participant string, limit int) ([]*entities.LedgerEntry, error)
}

// RoundHistoryRepository defines the interface for resolved round data access
type RoundHistoryRepository interface {
	// Record stores a resolved round, filling in its ID
	Record(ctx context.Context, round *entities.ResolvedRound) error

	// GetRecent returns the most recently resolved rounds, newest first
	GetRecent(ctx context.Context, limit int) ([]*entities.ResolvedRound, error)

	// GetByRoundNumber retrieves a resolved round, returning nil if none exists
	GetByRoundNumber(ctx context.Context, roundNumber int64) (*entities.ResolvedRound, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher holds events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes every pending event
	Flush(ctx context.Context) error

	// Discard drops every pending event
	Discard()
}
