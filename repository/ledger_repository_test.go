package repository

import (
	"context"
	"testing"

	"raffler/domain/entities"
	"raffler/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_Record(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	accounts := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	_, err := accounts.Create(ctx, "alice", 0)
	require.NoError(t, err)

	t.Run("successful record", func(t *testing.T) {
		entry := testutil.CreateTestLedgerEntry("alice", 300)

		err := repo.Record(ctx, entry)
		require.NoError(t, err)
		assert.NotZero(t, entry.ID)
		assert.False(t, entry.CreatedAt.IsZero())
	})

	t.Run("nil metadata", func(t *testing.T) {
		entry := testutil.CreateTestLedgerEntryWithAmounts("alice", 300, 400, 100)
		entry.TransactionMetadata = nil

		err := repo.Record(ctx, entry)
		require.NoError(t, err)
		assert.NotZero(t, entry.ID)
	})

	t.Run("unknown participant violates foreign key", func(t *testing.T) {
		entry := testutil.CreateTestLedgerEntry("nobody", 300)

		err := repo.Record(ctx, entry)
		assert.Error(t, err)
	})

	t.Run("inconsistent balances rejected by schema", func(t *testing.T) {
		entry := testutil.CreateTestLedgerEntryWithAmounts("alice", 0, 999, 1)

		err := repo.Record(ctx, entry)
		assert.Error(t, err)
	})
}

func TestLedgerRepository_GetByParticipant(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	accounts := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	for _, p := range []string{"alice", "bob"} {
		_, err := accounts.Create(ctx, p, 0)
		require.NoError(t, err)
	}

	t.Run("no entries", func(t *testing.T) {
		entries, err := repo.GetByParticipant(ctx, "alice", 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	require.NoError(t, repo.Record(ctx, testutil.CreateTestLedgerEntryWithAmounts("alice", 0, 100, 100)))
	require.NoError(t, repo.Record(ctx, testutil.CreateTestLedgerEntryWithAmounts("alice", 100, 350, 250)))
	require.NoError(t, repo.Record(ctx, testutil.CreateTestLedgerEntryWithAmounts("bob", 0, 50, 50)))

	t.Run("newest first with metadata", func(t *testing.T) {
		entries, err := repo.GetByParticipant(ctx, "alice", 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, int64(250), entries[0].ChangeAmount)
		assert.Equal(t, int64(100), entries[1].ChangeAmount)
		assert.Equal(t, entities.TransactionTypeRaffleWin, entries[0].TransactionType)
		assert.Equal(t, true, entries[0].TransactionMetadata["test"])
		require.NotNil(t, entries[0].RoundNumber)
		assert.Equal(t, int64(1), *entries[0].RoundNumber)
	})

	t.Run("limit", func(t *testing.T) {
		entries, err := repo.GetByParticipant(ctx, "alice", 1)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
