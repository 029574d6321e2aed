package application

import (
	"context"

	"raffler/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and publishes events raised inside it
	Commit() error

	// Rollback rolls back the transaction and drops events raised inside it
	Rollback() error

	// Repository getters
	AccountRepository() interfaces.AccountRepository
	LedgerRepository() interfaces.LedgerRepository
	RoundHistoryRepository() interfaces.RoundHistoryRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
