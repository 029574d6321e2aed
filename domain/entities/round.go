package entities

import (
	"math/big"
	"time"
)

// RoundState represents whether a round is accepting entries
type RoundState int

const (
	RoundStateOpen RoundState = iota
	RoundStateCalculating
)

// String returns the wire name of the state
func (s RoundState) String() string {
	switch s {
	case RoundStateOpen:
		return "OPEN"
	case RoundStateCalculating:
		return "CALCULATING"
	default:
		return "UNKNOWN"
	}
}

// Round is the mutable state of the single active raffle round.
// It is owned by the coordinator and is not safe for concurrent use on its own.
type Round struct {
	Number       int64
	State        RoundState
	Participants []string
	Balance      int64
	LastRoundAt  time.Time
	RecentWinner string

	// Correlation for the outstanding randomness request, zero when none
	PendingRequestID RequestID
	RequestedAt      *time.Time

	// Winner chosen by a fulfilled request whose payout has not settled yet
	SelectedWinner    string
	SelectedRequestID RequestID
	SelectedWord      *big.Int
}

// NewRound creates the first round, open and empty
func NewRound(startedAt time.Time) *Round {
	return &Round{
		Number:       1,
		State:        RoundStateOpen,
		Participants: make([]string, 0),
		LastRoundAt:  startedAt,
	}
}

// IsOpen returns true if the round accepts entries
func (r *Round) IsOpen() bool {
	return r.State == RoundStateOpen
}

// UpkeepNeeded evaluates the upkeep predicate: open, interval elapsed,
// at least one participant and a positive balance
func (r *Round) UpkeepNeeded(now time.Time, interval time.Duration) bool {
	timePassed := now.Sub(r.LastRoundAt) >= interval
	hasPlayers := len(r.Participants) > 0
	hasBalance := r.Balance > 0
	return r.IsOpen() && timePassed && hasPlayers && hasBalance
}

// AddEntry appends a participant and adds the paid amount to the pot
func (r *Round) AddEntry(participant string, amount int64) {
	r.Participants = append(r.Participants, participant)
	r.Balance += amount
}

// BeginCalculating moves the round to CALCULATING and records the request correlation
func (r *Round) BeginCalculating(requestID RequestID, at time.Time) {
	r.State = RoundStateCalculating
	r.PendingRequestID = requestID
	r.RequestedAt = &at
}

// HasPendingRequest returns true if a randomness request is outstanding
func (r *Round) HasPendingRequest() bool {
	return r.PendingRequestID != 0
}

// IsPending returns true if requestID is the outstanding request
func (r *Round) IsPending(requestID RequestID) bool {
	return r.HasPendingRequest() && r.PendingRequestID == requestID
}

// SelectWinner picks the participant at randomWord mod participant count and
// clears the pending correlation so the request cannot resolve twice
func (r *Round) SelectWinner(randomWord *big.Int) string {
	winner := r.Participants[WinnerIndex(randomWord, len(r.Participants))]
	r.SelectedWinner = winner
	r.SelectedRequestID = r.PendingRequestID
	r.SelectedWord = new(big.Int).Set(randomWord)
	r.PendingRequestID = 0
	r.RequestedAt = nil
	return winner
}

// HasSelectedWinner returns true if a winner is waiting for settlement
func (r *Round) HasSelectedWinner() bool {
	return r.SelectedWinner != ""
}

// Payout describes the transfer owed to the selected winner
func (r *Round) Payout() *Payout {
	return &Payout{
		RoundNumber:      r.Number,
		Recipient:        r.SelectedWinner,
		Amount:           r.Balance,
		RequestID:        r.SelectedRequestID,
		RandomWord:       r.SelectedWord,
		ParticipantCount: len(r.Participants),
		RoundStartedAt:   r.LastRoundAt,
	}
}

// Resolve resets the round after a successful payout and starts the next one
func (r *Round) Resolve(now time.Time) *ResolvedRound {
	resolved := &ResolvedRound{
		RoundNumber:      r.Number,
		Winner:           r.SelectedWinner,
		Payout:           r.Balance,
		RequestID:        r.SelectedRequestID,
		RandomWord:       r.SelectedWord.String(),
		ParticipantCount: len(r.Participants),
		StartedAt:        r.LastRoundAt,
		ResolvedAt:       now,
	}

	r.Participants = make([]string, 0)
	r.Balance = 0
	r.State = RoundStateOpen
	r.LastRoundAt = now
	r.RecentWinner = resolved.Winner
	r.PendingRequestID = 0
	r.RequestedAt = nil
	r.SelectedWinner = ""
	r.SelectedRequestID = 0
	r.SelectedWord = nil
	r.Number++

	return resolved
}

// WinnerIndex returns randomWord mod count
func WinnerIndex(randomWord *big.Int, count int) int {
	index := new(big.Int).Mod(randomWord, big.NewInt(int64(count)))
	return int(index.Int64())
}

// RoundSnapshot is a consistent read-only view of the coordinator state
type RoundSnapshot struct {
	RoundNumber      int64
	State            RoundState
	Participants     []string
	Balance          int64
	EntranceFee      int64
	Interval         time.Duration
	LastRoundAt      time.Time
	RecentWinner     string
	PendingRequestID RequestID
	RequestedAt      *time.Time
	UnsettledWinner  string
}

// ParticipantCount returns the number of entries in the round
func (s *RoundSnapshot) ParticipantCount() int {
	return len(s.Participants)
}

// PendingFor returns how long the outstanding request has been waiting
func (s *RoundSnapshot) PendingFor(now time.Time) time.Duration {
	if s.RequestedAt == nil {
		return 0
	}
	return now.Sub(*s.RequestedAt)
}
