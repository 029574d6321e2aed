package repository

import (
	"context"
	"testing"

	"raffler/domain/events"
	"raffler/domain/services"
	"raffler/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bufferingPublisher records flushed and discarded events
type bufferingPublisher struct {
	pending   []events.Event
	flushed   []events.Event
	discarded int
}

func (p *bufferingPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

func (p *bufferingPublisher) Flush(ctx context.Context) error {
	p.flushed = append(p.flushed, p.pending...)
	p.pending = nil
	return nil
}

func (p *bufferingPublisher) Discard() {
	p.discarded += len(p.pending)
	p.pending = nil
}

func TestUnitOfWork_NotStarted(t *testing.T) {
	t.Parallel()

	uow := NewUnitOfWorkFactory(nil).CreateWithPublisher(&bufferingPublisher{})

	assert.Panics(t, func() { uow.AccountRepository() })
	assert.Panics(t, func() { uow.LedgerRepository() })
	assert.Panics(t, func() { uow.RoundHistoryRepository() })
	assert.Error(t, uow.Commit())
	assert.NoError(t, uow.Rollback())
}

func TestUnitOfWork_SettlementCommitAndRollback(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	factory := NewUnitOfWorkFactory(testDB.DB)

	t.Run("commit persists and flushes events", func(t *testing.T) {
		publisher := &bufferingPublisher{}
		uow := factory.CreateWithPublisher(publisher)
		require.NoError(t, uow.Begin(ctx))

		settlement := services.NewSettlementService(uow.AccountRepository(), uow.LedgerRepository(), uow.RoundHistoryRepository(), uow.EventBus())
		require.NoError(t, settlement.Transfer(ctx, testutil.CreateTestPayout(1, "alice", 200)))
		assert.Empty(t, publisher.flushed)

		require.NoError(t, uow.Commit())
		require.Len(t, publisher.flushed, 1)
		assert.Equal(t, events.EventTypeBalanceChange, publisher.flushed[0].Type())

		account, err := NewAccountRepository(testDB.DB).GetByParticipant(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, int64(200), account.Balance)

		round, err := NewRoundHistoryRepository(testDB.DB).GetByRoundNumber(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, round)
		assert.Equal(t, "alice", round.Winner)
		assert.Equal(t, "42", round.RandomWord)
	})

	t.Run("second win accumulates", func(t *testing.T) {
		uow := factory.CreateWithPublisher(&bufferingPublisher{})
		require.NoError(t, uow.Begin(ctx))

		settlement := services.NewSettlementService(uow.AccountRepository(), uow.LedgerRepository(), uow.RoundHistoryRepository(), uow.EventBus())
		require.NoError(t, settlement.Transfer(ctx, testutil.CreateTestPayout(2, "alice", 300)))
		require.NoError(t, uow.Commit())

		account, err := NewAccountRepository(testDB.DB).GetByParticipant(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(500), account.Balance)

		entries, err := NewLedgerRepository(testDB.DB).GetByParticipant(ctx, "alice", 10)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("rollback discards writes and events", func(t *testing.T) {
		publisher := &bufferingPublisher{}
		uow := factory.CreateWithPublisher(publisher)
		require.NoError(t, uow.Begin(ctx))

		settlement := services.NewSettlementService(uow.AccountRepository(), uow.LedgerRepository(), uow.RoundHistoryRepository(), uow.EventBus())
		require.NoError(t, settlement.Transfer(ctx, testutil.CreateTestPayout(3, "bob", 100)))
		require.NoError(t, uow.Rollback())

		assert.Empty(t, publisher.flushed)
		assert.Equal(t, 1, publisher.discarded)

		account, err := NewAccountRepository(testDB.DB).GetByParticipant(ctx, "bob")
		require.NoError(t, err)
		assert.Nil(t, account)

		round, err := NewRoundHistoryRepository(testDB.DB).GetByRoundNumber(ctx, 3)
		require.NoError(t, err)
		assert.Nil(t, round)
	})

	t.Run("double begin", func(t *testing.T) {
		uow := factory.CreateWithPublisher(&bufferingPublisher{})
		require.NoError(t, uow.Begin(ctx))
		defer func() { _ = uow.Rollback() }()

		assert.ErrorContains(t, uow.Begin(ctx), "already started")
	})
}
