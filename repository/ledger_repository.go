package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"raffler/database"
	"raffler/domain/entities"
	"raffler/domain/interfaces"
)

// ledgerRepository implements the LedgerRepository interface
type ledgerRepository struct {
	q Queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) interfaces.LedgerRepository {
	return &ledgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository with a transaction
func newLedgerRepositoryWithTx(tx Queryable) interfaces.LedgerRepository {
	return &ledgerRepository{q: tx}
}

// Record creates a new ledger entry
func (r *ledgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	metadata := entry.TransactionMetadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}

	query := `
		INSERT INTO ledger_entries
		(participant, balance_before, balance_after, change_amount, transaction_type, transaction_metadata, round_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		entry.Participant,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.ChangeAmount,
		string(entry.TransactionType),
		metadataJSON,
		entry.RoundNumber,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry for %s: %w", entry.Participant, err)
	}

	return nil
}

// GetByParticipant returns the most recent ledger entries for a participant
func (r *ledgerRepository) GetByParticipant(ctx context.Context, participant string, limit int) ([]*entities.LedgerEntry, error) {
	query := `
		SELECT id, participant, balance_before, balance_after, change_amount,
		       transaction_type, transaction_metadata, round_number, created_at
		FROM ledger_entries
		WHERE participant = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, participant, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for %s: %w", participant, err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		var entry entities.LedgerEntry
		var transactionType string
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.Participant,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ChangeAmount,
			&transactionType,
			&metadataJSON,
			&entry.RoundNumber,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entry.TransactionType = entities.TransactionType(transactionType)

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.TransactionMetadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}
