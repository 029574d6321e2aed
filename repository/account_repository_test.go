package repository

import (
	"context"
	"testing"

	"raffler/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing account returns nil", func(t *testing.T) {
		account, err := repo.GetByParticipant(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("create and get", func(t *testing.T) {
		created, err := repo.Create(ctx, "alice", 0)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "alice", created.Participant)
		assert.Equal(t, int64(0), created.Balance)
		assert.False(t, created.CreatedAt.IsZero())

		fetched, err := repo.GetByParticipant(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, created.ID, fetched.ID)
	})

	t.Run("duplicate participant fails", func(t *testing.T) {
		_, err := repo.Create(ctx, "alice", 0)
		assert.Error(t, err)
	})

	t.Run("update balance", func(t *testing.T) {
		err := repo.UpdateBalance(ctx, "alice", 1500)
		require.NoError(t, err)

		account, err := repo.GetByParticipant(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1500), account.Balance)
	})

	t.Run("update missing account", func(t *testing.T) {
		err := repo.UpdateBalance(ctx, "nobody", 10)
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("negative balance rejected", func(t *testing.T) {
		err := repo.UpdateBalance(ctx, "alice", -1)
		assert.Error(t, err)
	})
}
