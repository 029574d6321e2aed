package repository

import (
	"context"
	"errors"
	"fmt"

	"raffler/database"
	"raffler/domain/entities"
	"raffler/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// accountRepository implements the AccountRepository interface
type accountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) interfaces.AccountRepository {
	return &accountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx Queryable) interfaces.AccountRepository {
	return &accountRepository{q: tx}
}

const accountColumns = `id, participant, balance, created_at, updated_at`

// GetByParticipant retrieves an account by participant identity
func (r *accountRepository) GetByParticipant(ctx context.Context, participant string) (*entities.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE participant = $1`
	return r.getOne(ctx, query, participant)
}

// GetByParticipantForUpdate retrieves an account and locks its row until the transaction ends
func (r *accountRepository) GetByParticipantForUpdate(ctx context.Context, participant string) (*entities.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE participant = $1 FOR UPDATE`
	return r.getOne(ctx, query, participant)
}

func (r *accountRepository) getOne(ctx context.Context, query, participant string) (*entities.Account, error) {
	var account entities.Account
	err := r.q.QueryRow(ctx, query, participant).Scan(
		&account.ID,
		&account.Participant,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for %s: %w", participant, err)
	}

	return &account, nil
}

// Create creates a new account with the initial balance
func (r *accountRepository) Create(ctx context.Context, participant string, initialBalance int64) (*entities.Account, error) {
	query := `
		INSERT INTO accounts (participant, balance)
		VALUES ($1, $2)
		RETURNING ` + accountColumns

	var account entities.Account
	err := r.q.QueryRow(ctx, query, participant, initialBalance).Scan(
		&account.ID,
		&account.Participant,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account for %s: %w", participant, err)
	}

	return &account, nil
}

// UpdateBalance sets an account balance
func (r *accountRepository) UpdateBalance(ctx context.Context, participant string, newBalance int64) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE participant = $2
	`

	result, err := r.q.Exec(ctx, query, newBalance, participant)
	if err != nil {
		return fmt.Errorf("failed to update balance for %s: %w", participant, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account for %s not found", participant)
	}

	return nil
}
