package application

import (
	"context"

	"raffler/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// mockUnitOfWork is a testify mock of UnitOfWork
type mockUnitOfWork struct {
	mock.Mock
	accounts  interfaces.AccountRepository
	ledger    interfaces.LedgerRepository
	history   interfaces.RoundHistoryRepository
	publisher interfaces.EventPublisher
}

func (m *mockUnitOfWork) Begin(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Commit() error {
	return m.Called().Error(0)
}

func (m *mockUnitOfWork) Rollback() error {
	return m.Called().Error(0)
}

func (m *mockUnitOfWork) AccountRepository() interfaces.AccountRepository {
	return m.accounts
}

func (m *mockUnitOfWork) LedgerRepository() interfaces.LedgerRepository {
	return m.ledger
}

func (m *mockUnitOfWork) RoundHistoryRepository() interfaces.RoundHistoryRepository {
	return m.history
}

func (m *mockUnitOfWork) EventBus() interfaces.EventPublisher {
	return m.publisher
}

// singleUnitOfWorkFactory always hands out the same unit of work
type singleUnitOfWorkFactory struct {
	uow UnitOfWork
}

func (f *singleUnitOfWorkFactory) Create() UnitOfWork {
	return f.uow
}
