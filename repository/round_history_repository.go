package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"raffler/database"
	"raffler/domain/entities"
	"raffler/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// roundHistoryRepository implements the RoundHistoryRepository interface.
// Request ids and random words are NUMERIC columns exchanged as decimal text.
type roundHistoryRepository struct {
	q Queryable
}

// NewRoundHistoryRepository creates a new round history repository
func NewRoundHistoryRepository(db *database.DB) interfaces.RoundHistoryRepository {
	return &roundHistoryRepository{q: db.Pool}
}

// newRoundHistoryRepositoryWithTx creates a new round history repository with a transaction
func newRoundHistoryRepositoryWithTx(tx Queryable) interfaces.RoundHistoryRepository {
	return &roundHistoryRepository{q: tx}
}

const resolvedRoundColumns = `id, round_number, winner, payout, request_id::text, random_word::text,
		       participant_count, started_at, resolved_at`

// Record stores a resolved round. A zero ResolvedAt is filled in by the database.
func (r *roundHistoryRepository) Record(ctx context.Context, round *entities.ResolvedRound) error {
	var resolvedAt any
	if !round.ResolvedAt.IsZero() {
		resolvedAt = round.ResolvedAt
	}

	query := `
		INSERT INTO resolved_rounds
		(round_number, winner, payout, request_id, random_word, participant_count, started_at, resolved_at)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, COALESCE($8, NOW()))
		RETURNING id, resolved_at
	`

	err := r.q.QueryRow(ctx, query,
		round.RoundNumber,
		round.Winner,
		round.Payout,
		round.RequestID.String(),
		round.RandomWord,
		round.ParticipantCount,
		round.StartedAt,
		resolvedAt,
	).Scan(&round.ID, &round.ResolvedAt)
	if err != nil {
		return fmt.Errorf("failed to record resolved round %d: %w", round.RoundNumber, err)
	}

	return nil
}

// GetRecent returns the most recently resolved rounds, newest first
func (r *roundHistoryRepository) GetRecent(ctx context.Context, limit int) ([]*entities.ResolvedRound, error) {
	query := `
		SELECT ` + resolvedRoundColumns + `
		FROM resolved_rounds
		ORDER BY resolved_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent resolved rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*entities.ResolvedRound
	for rows.Next() {
		round, err := scanResolvedRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resolved rounds: %w", err)
	}

	return rounds, nil
}

// GetByRoundNumber returns the latest resolution recorded for a round number
func (r *roundHistoryRepository) GetByRoundNumber(ctx context.Context, roundNumber int64) (*entities.ResolvedRound, error) {
	query := `
		SELECT ` + resolvedRoundColumns + `
		FROM resolved_rounds
		WHERE round_number = $1
		ORDER BY resolved_at DESC, id DESC
		LIMIT 1
	`

	round, err := scanResolvedRound(r.q.QueryRow(ctx, query, roundNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return round, nil
}

func scanResolvedRound(row pgx.Row) (*entities.ResolvedRound, error) {
	var round entities.ResolvedRound
	var requestID string

	err := row.Scan(
		&round.ID,
		&round.RoundNumber,
		&round.Winner,
		&round.Payout,
		&requestID,
		&round.RandomWord,
		&round.ParticipantCount,
		&round.StartedAt,
		&round.ResolvedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan resolved round: %w", err)
	}

	id, err := strconv.ParseUint(requestID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse request id %q: %w", requestID, err)
	}
	round.RequestID = entities.RequestID(id)

	return &round, nil
}
