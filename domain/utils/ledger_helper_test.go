package utils

import (
	"context"
	"errors"
	"testing"

	"raffler/domain/entities"
	"raffler/domain/events"
	"raffler/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecordBalanceChange(t *testing.T) {
	t.Parallel()

	t.Run("records and publishes", func(t *testing.T) {
		t.Parallel()
		ledger := new(testhelpers.MockLedgerRepository)
		publisher := new(testhelpers.RecordingEventPublisher)
		entry := &entities.LedgerEntry{
			Participant:     "alice",
			BalanceBefore:   0,
			BalanceAfter:    500,
			ChangeAmount:    500,
			TransactionType: entities.TransactionTypeRaffleWin,
		}
		ledger.On("Record", mock.Anything, entry).Return(nil)

		err := RecordBalanceChange(context.Background(), ledger, publisher, entry)

		require.NoError(t, err)
		published := publisher.OfType(events.EventTypeBalanceChange)
		require.Len(t, published, 1)
		event := published[0].(events.BalanceChangeEvent)
		assert.Equal(t, "alice", event.Participant)
		assert.Equal(t, int64(500), event.NewBalance)
		assert.Equal(t, entities.TransactionTypeRaffleWin, event.TransactionType)
		ledger.AssertExpectations(t)
	})

	t.Run("rejects inconsistent entry", func(t *testing.T) {
		t.Parallel()
		ledger := new(testhelpers.MockLedgerRepository)
		publisher := new(testhelpers.RecordingEventPublisher)
		entry := &entities.LedgerEntry{
			Participant:   "alice",
			BalanceBefore: 10,
			BalanceAfter:  500,
			ChangeAmount:  500,
		}

		err := RecordBalanceChange(context.Background(), ledger, publisher, entry)

		assert.ErrorContains(t, err, "invalid ledger entry")
		assert.Empty(t, publisher.Events())
		ledger.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("repository failure skips event", func(t *testing.T) {
		t.Parallel()
		ledger := new(testhelpers.MockLedgerRepository)
		publisher := new(testhelpers.RecordingEventPublisher)
		entry := &entities.LedgerEntry{
			Participant:   "alice",
			BalanceBefore: 0,
			BalanceAfter:  5,
			ChangeAmount:  5,
		}
		ledger.On("Record", mock.Anything, entry).Return(errors.New("insert failed"))

		err := RecordBalanceChange(context.Background(), ledger, publisher, entry)

		assert.ErrorContains(t, err, "failed to record ledger entry")
		assert.Empty(t, publisher.Events())
	})

	t.Run("publish failure is not fatal", func(t *testing.T) {
		t.Parallel()
		ledger := new(testhelpers.MockLedgerRepository)
		publisher := new(testhelpers.MockEventPublisher)
		entry := &entities.LedgerEntry{
			Participant:   "alice",
			BalanceBefore: 0,
			BalanceAfter:  5,
			ChangeAmount:  5,
		}
		ledger.On("Record", mock.Anything, entry).Return(nil)
		publisher.On("Publish", mock.Anything).Return(errors.New("nats down"))

		err := RecordBalanceChange(context.Background(), ledger, publisher, entry)

		assert.NoError(t, err)
		publisher.AssertExpectations(t)
	})
}
