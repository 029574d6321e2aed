package infrastructure

import (
	"raffler/application"
	"raffler/database"
	"raffler/domain/interfaces"
	"raffler/repository"
)

// UnitOfWorkFactory creates units of work whose events are published only after commit
type UnitOfWorkFactory struct {
	repoFactory interface {
		CreateWithPublisher(interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// Create creates a new UnitOfWork with its own transactional publisher
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(NewTransactionalPublisher(f.eventPublisher))
}

var _ application.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
