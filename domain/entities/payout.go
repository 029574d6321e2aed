package entities

import (
	"math/big"
	"time"
)

// Payout is the transfer owed to a round winner
type Payout struct {
	RoundNumber      int64
	Recipient        string
	Amount           int64
	RequestID        RequestID
	RandomWord       *big.Int
	ParticipantCount int
	RoundStartedAt   time.Time
}

// ResolvedRound records a round that paid out its winner
type ResolvedRound struct {
	ID               int64     `db:"id" json:"id,omitempty"`
	RoundNumber      int64     `db:"round_number" json:"roundNumber"`
	Winner           string    `db:"winner" json:"winner"`
	Payout           int64     `db:"payout" json:"payout"`
	RequestID        RequestID `db:"request_id" json:"requestId"`
	RandomWord       string    `db:"random_word" json:"randomWord"`
	ParticipantCount int       `db:"participant_count" json:"participantCount"`
	StartedAt        time.Time `db:"started_at" json:"startedAt"`
	ResolvedAt       time.Time `db:"resolved_at" json:"resolvedAt"`
}
