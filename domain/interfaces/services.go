package interfaces

import (
	"context"
	"math/big"
	"time"

	"raffler/domain/entities"
)

// RandomnessProvider issues randomness requests. Results arrive later,
// asynchronously, on the provider's fulfillment channel.
type RandomnessProvider interface {
	// RequestRandomness sends a request and returns its id without waiting for the result
	RequestRandomness(ctx context.Context, params entities.RandomnessParams) (entities.RequestID, error)

	// Fulfillments delivers results keyed by request id
	Fulfillments() <-chan entities.Fulfillment
}

// Settlement moves value to a recipient
type Settlement interface {
	// Transfer pays the full payout amount to its recipient
	Transfer(ctx context.Context, payout *entities.Payout) error
}

// RaffleCoordinator defines the raffle state machine operations
type RaffleCoordinator interface {
	// Enter adds a participant to the open round
	Enter(ctx context.Context, participant string, amountPaid int64) error

	// CheckUpkeep reports whether the round is ready to request randomness
	CheckUpkeep(ctx context.Context) (bool, []byte)

	// PerformUpkeep re-checks eligibility and requests randomness
	PerformUpkeep(ctx context.Context, payload []byte) (entities.RequestID, error)

	// OnRandomnessFulfilled resolves the round for the pending request
	OnRandomnessFulfilled(ctx context.Context, requestID entities.RequestID, randomWord *big.Int) (*entities.ResolvedRound, error)

	// RetrySettlement re-attempts a payout that previously failed
	RetrySettlement(ctx context.Context) (*entities.ResolvedRound, error)

	// HasUnsettledWinner returns true if a selected winner is waiting for payout
	HasUnsettledWinner() bool

	// Snapshot returns a consistent view of the round state
	Snapshot() entities.RoundSnapshot

	// Participant returns the participant at the given entry index
	Participant(index int) (string, error)

	State() entities.RoundState
	NumberOfParticipants() int
	EntranceFee() int64
	Interval() time.Duration
	RecentWinner() string
	LatestTimestamp() time.Time
}
