package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync"
	"time"

	"raffler/domain/entities"
	"raffler/domain/events"
	"raffler/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

var (
	ErrInsufficientPayment        = errors.New("insufficient payment")
	ErrRoundNotOpen               = errors.New("round is not open")
	ErrUpkeepNotNeeded            = errors.New("upkeep not needed")
	ErrUnknownRequest             = errors.New("unknown randomness request")
	ErrTransferFailed             = errors.New("transfer failed")
	ErrNoUnsettledRound           = errors.New("no unsettled round")
	ErrParticipantIndexOutOfRange = errors.New("participant index out of range")
	ErrInvalidParticipant         = errors.New("participant is required")
	ErrInvalidRandomWord          = errors.New("random word must be a non-negative integer")
	ErrBalanceOverflow            = errors.New("balance would overflow")
)

// RaffleConfig holds the coordinator parameters, fixed at construction
type RaffleConfig struct {
	EntranceFee int64
	Interval    time.Duration
	Randomness  entities.RandomnessParams
}

// Validate checks the configuration
func (c RaffleConfig) Validate() error {
	if c.EntranceFee <= 0 {
		return fmt.Errorf("entrance fee must be positive, got %d", c.EntranceFee)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	return nil
}

// CoordinatorOption customizes a raffle coordinator
type CoordinatorOption func(*raffleCoordinator)

// WithClock replaces the wall clock used for interval and timestamp bookkeeping
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *raffleCoordinator) {
		c.now = now
	}
}

// raffleCoordinator implements the raffle state machine. Every mutation runs
// under the write lock; accessors take the read lock.
type raffleCoordinator struct {
	mu             sync.RWMutex
	config         RaffleConfig
	round          *entities.Round
	randomness     interfaces.RandomnessProvider
	settlement     interfaces.Settlement
	eventPublisher interfaces.EventPublisher
	now            func() time.Time
}

// NewRaffleCoordinator creates a coordinator with an open, empty first round
func NewRaffleCoordinator(
	config RaffleConfig,
	randomness interfaces.RandomnessProvider,
	settlement interfaces.Settlement,
	eventPublisher interfaces.EventPublisher,
	opts ...CoordinatorOption,
) (interfaces.RaffleCoordinator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid raffle config: %w", err)
	}
	if randomness == nil {
		return nil, errors.New("randomness provider is required")
	}
	if settlement == nil {
		return nil, errors.New("settlement is required")
	}
	if eventPublisher == nil {
		return nil, errors.New("event publisher is required")
	}

	c := &raffleCoordinator{
		config:         config,
		randomness:     randomness,
		settlement:     settlement,
		eventPublisher: eventPublisher,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.round = entities.NewRound(c.now())

	return c, nil
}

// Enter adds a participant to the open round
func (c *raffleCoordinator) Enter(ctx context.Context, participant string, amountPaid int64) error {
	if participant == "" {
		return ErrInvalidParticipant
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if amountPaid < c.config.EntranceFee {
		return fmt.Errorf("%w: paid %d, entrance fee is %d", ErrInsufficientPayment, amountPaid, c.config.EntranceFee)
	}
	if !c.round.IsOpen() {
		return fmt.Errorf("%w: round %d is %s", ErrRoundNotOpen, c.round.Number, c.round.State)
	}
	if amountPaid > math.MaxInt64-c.round.Balance {
		return fmt.Errorf("%w: pot %d cannot take %d more", ErrBalanceOverflow, c.round.Balance, amountPaid)
	}

	c.round.AddEntry(participant, amountPaid)

	log.WithFields(log.Fields{
		"round_number": c.round.Number,
		"participant":  participant,
		"amountPaid":   amountPaid,
		"roundBalance": c.round.Balance,
	}).Info("Participant entered raffle")

	c.publish(events.ParticipantEnteredEvent{
		RoundNumber:  c.round.Number,
		Participant:  participant,
		AmountPaid:   amountPaid,
		RoundBalance: c.round.Balance,
		Participants: len(c.round.Participants),
	})

	return nil
}

// CheckUpkeep reports whether upkeep is needed. It never mutates state.
func (c *raffleCoordinator) CheckUpkeep(ctx context.Context) (bool, []byte) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.round.UpkeepNeeded(c.now(), c.config.Interval), []byte{}
}

// PerformUpkeep re-evaluates the upkeep predicate, moves the round to
// CALCULATING and requests randomness. It returns without waiting for the result.
func (c *raffleCoordinator) PerformUpkeep(ctx context.Context, payload []byte) (entities.RequestID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.round.UpkeepNeeded(c.now(), c.config.Interval) {
		return 0, fmt.Errorf("%w: state=%s participants=%d balance=%d",
			ErrUpkeepNotNeeded, c.round.State, len(c.round.Participants), c.round.Balance)
	}

	requestID, err := c.randomness.RequestRandomness(ctx, c.config.Randomness)
	if err != nil {
		return 0, fmt.Errorf("failed to request randomness: %w", err)
	}
	if requestID == 0 {
		return 0, errors.New("randomness provider returned an empty request id")
	}

	c.round.BeginCalculating(requestID, c.now())

	log.WithFields(log.Fields{
		"round_number": c.round.Number,
		"requestId":    requestID,
		"participants": len(c.round.Participants),
		"roundBalance": c.round.Balance,
	}).Info("Requested raffle winner")

	c.publish(events.RoundCalculatingEvent{
		RoundNumber:  c.round.Number,
		RequestID:    requestID,
		Participants: len(c.round.Participants),
		RoundBalance: c.round.Balance,
	})

	return requestID, nil
}

// OnRandomnessFulfilled selects the winner for the pending request, pays
// them and resets the round. Only the outstanding request id is honored.
func (c *raffleCoordinator) OnRandomnessFulfilled(ctx context.Context, requestID entities.RequestID, randomWord *big.Int) (*entities.ResolvedRound, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.round.IsPending(requestID) {
		return nil, fmt.Errorf("%w: %s (pending %s)", ErrUnknownRequest, requestID, c.round.PendingRequestID)
	}
	if randomWord == nil || randomWord.Sign() < 0 {
		return nil, ErrInvalidRandomWord
	}

	winner := c.round.SelectWinner(randomWord)

	log.WithFields(log.Fields{
		"round_number": c.round.Number,
		"requestId":    requestID,
		"winner":       winner,
		"participants": len(c.round.Participants),
	}).Info("Raffle winner selected")

	return c.settleLocked(ctx)
}

// RetrySettlement re-attempts the payout for a winner whose transfer failed
func (c *raffleCoordinator) RetrySettlement(ctx context.Context) (*entities.ResolvedRound, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.round.HasSelectedWinner() {
		return nil, ErrNoUnsettledRound
	}

	log.WithFields(log.Fields{
		"round_number": c.round.Number,
		"winner":       c.round.SelectedWinner,
		"amount":       c.round.Balance,
	}).Info("Retrying raffle settlement")

	return c.settleLocked(ctx)
}

// settleLocked pays the selected winner and, only once the transfer
// succeeded, resets the round. On failure the pot, participants and
// CALCULATING state are kept so the round stays resolvable.
func (c *raffleCoordinator) settleLocked(ctx context.Context) (*entities.ResolvedRound, error) {
	payout := c.round.Payout()

	if err := c.settlement.Transfer(ctx, payout); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"round_number": payout.RoundNumber,
			"winner":       payout.Recipient,
			"amount":       payout.Amount,
		}).Error("Failed to transfer raffle pot to winner")

		c.publish(events.SettlementFailedEvent{
			RoundNumber: payout.RoundNumber,
			Winner:      payout.Recipient,
			Amount:      payout.Amount,
			Reason:      err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	resolved := c.round.Resolve(c.now())

	log.WithFields(log.Fields{
		"round_number": resolved.RoundNumber,
		"winner":       resolved.Winner,
		"payout":       resolved.Payout,
		"participants": resolved.ParticipantCount,
	}).Info("Raffle winner picked")

	c.publish(events.WinnerPickedEvent{
		RoundNumber:  resolved.RoundNumber,
		Winner:       resolved.Winner,
		Payout:       resolved.Payout,
		RequestID:    resolved.RequestID,
		Participants: resolved.ParticipantCount,
		ResolvedAt:   resolved.ResolvedAt,
	})

	return resolved, nil
}

// publish emits a notification; observers never affect round state
func (c *raffleCoordinator) publish(event events.Event) {
	if err := c.eventPublisher.Publish(event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to publish raffle event")
	}
}

// HasUnsettledWinner returns true if a selected winner is waiting for payout
func (c *raffleCoordinator) HasUnsettledWinner() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.round.HasSelectedWinner()
}

// Snapshot returns a consistent copy of the round state
func (c *raffleCoordinator) Snapshot() entities.RoundSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	participants := make([]string, len(c.round.Participants))
	copy(participants, c.round.Participants)

	var requestedAt *time.Time
	if c.round.RequestedAt != nil {
		at := *c.round.RequestedAt
		requestedAt = &at
	}

	return entities.RoundSnapshot{
		RoundNumber:      c.round.Number,
		State:            c.round.State,
		Participants:     participants,
		Balance:          c.round.Balance,
		EntranceFee:      c.config.EntranceFee,
		Interval:         c.config.Interval,
		LastRoundAt:      c.round.LastRoundAt,
		RecentWinner:     c.round.RecentWinner,
		PendingRequestID: c.round.PendingRequestID,
		RequestedAt:      requestedAt,
		UnsettledWinner:  c.round.SelectedWinner,
	}
}

// Participant returns the participant at the given entry index
func (c *raffleCoordinator) Participant(index int) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index < 0 || index >= len(c.round.Participants) {
		return "", fmt.Errorf("%w: %d of %d", ErrParticipantIndexOutOfRange, index, len(c.round.Participants))
	}
	return c.round.Participants[index], nil
}

// State returns whether the round is open or calculating
func (c *raffleCoordinator) State() entities.RoundState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.round.State
}

// NumberOfParticipants returns the number of entries in the round
func (c *raffleCoordinator) NumberOfParticipants() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.round.Participants)
}

// EntranceFee returns the minimum payment for an entry
func (c *raffleCoordinator) EntranceFee() int64 {
	return c.config.EntranceFee
}

// Interval returns the minimum time between resolutions
func (c *raffleCoordinator) Interval() time.Duration {
	return c.config.Interval
}

// RecentWinner returns the winner of the last resolved round, empty before the first
func (c *raffleCoordinator) RecentWinner() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.round.RecentWinner
}

// LatestTimestamp returns when the current round started
func (c *raffleCoordinator) LatestTimestamp() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.round.LastRoundAt
}
