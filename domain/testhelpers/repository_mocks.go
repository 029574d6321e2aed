package testhelpers

import (
	"context"
	"math/big"
	"sync"
	"time"

	"raffler/domain/entities"
	"raffler/domain/events"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByParticipant(ctx context.Context, participant string) (*entities.Account, error) {
	args := m.Called(ctx, participant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByParticipantForUpdate(ctx context.Context, participant string) (*entities.Account, error) {
	args := m.Called(ctx, participant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, participant string, initialBalance int64) (*entities.Account, error) {
	args := m.Called(ctx, participant, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, participant string, newBalance int64) error {
	args := m.Called(ctx, participant, newBalance)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByParticipant(ctx context.Context, participant string, limit int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, participant, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

// MockRoundHistoryRepository is a mock implementation of RoundHistoryRepository
type MockRoundHistoryRepository struct {
	mock.Mock
}

func (m *MockRoundHistoryRepository) Record(ctx context.Context, round *entities.ResolvedRound) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockRoundHistoryRepository) GetRecent(ctx context.Context, limit int) ([]*entities.ResolvedRound, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ResolvedRound), args.Error(1)
}

func (m *MockRoundHistoryRepository) GetByRoundNumber(ctx context.Context, roundNumber int64) (*entities.ResolvedRound, error) {
	args := m.Called(ctx, roundNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ResolvedRound), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// RecordingEventPublisher keeps every published event in order
type RecordingEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *RecordingEventPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of the published events
func (p *RecordingEventPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.events))
	copy(out, p.events)
	return out
}

// OfType returns the published events of the given type
func (p *RecordingEventPublisher) OfType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, e := range p.Events() {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MockRandomnessProvider is a mock implementation of RandomnessProvider
type MockRandomnessProvider struct {
	mock.Mock
	FulfillmentCh chan entities.Fulfillment
}

func (m *MockRandomnessProvider) RequestRandomness(ctx context.Context, params entities.RandomnessParams) (entities.RequestID, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(entities.RequestID), args.Error(1)
}

func (m *MockRandomnessProvider) Fulfillments() <-chan entities.Fulfillment {
	return m.FulfillmentCh
}

// MockSettlement is a mock implementation of Settlement
type MockSettlement struct {
	mock.Mock
}

func (m *MockSettlement) Transfer(ctx context.Context, payout *entities.Payout) error {
	args := m.Called(ctx, payout)
	return args.Error(0)
}

// MockRaffleCoordinator is a mock implementation of RaffleCoordinator
type MockRaffleCoordinator struct {
	mock.Mock
}

func (m *MockRaffleCoordinator) Enter(ctx context.Context, participant string, amountPaid int64) error {
	args := m.Called(ctx, participant, amountPaid)
	return args.Error(0)
}

func (m *MockRaffleCoordinator) CheckUpkeep(ctx context.Context) (bool, []byte) {
	args := m.Called(ctx)
	var payload []byte
	if args.Get(1) != nil {
		payload = args.Get(1).([]byte)
	}
	return args.Bool(0), payload
}

func (m *MockRaffleCoordinator) PerformUpkeep(ctx context.Context, payload []byte) (entities.RequestID, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(entities.RequestID), args.Error(1)
}

func (m *MockRaffleCoordinator) OnRandomnessFulfilled(ctx context.Context, requestID entities.RequestID, randomWord *big.Int) (*entities.ResolvedRound, error) {
	args := m.Called(ctx, requestID, randomWord)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ResolvedRound), args.Error(1)
}

func (m *MockRaffleCoordinator) RetrySettlement(ctx context.Context) (*entities.ResolvedRound, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ResolvedRound), args.Error(1)
}

func (m *MockRaffleCoordinator) HasUnsettledWinner() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockRaffleCoordinator) Snapshot() entities.RoundSnapshot {
	args := m.Called()
	return args.Get(0).(entities.RoundSnapshot)
}

func (m *MockRaffleCoordinator) Participant(index int) (string, error) {
	args := m.Called(index)
	return args.String(0), args.Error(1)
}

func (m *MockRaffleCoordinator) State() entities.RoundState {
	args := m.Called()
	return args.Get(0).(entities.RoundState)
}

func (m *MockRaffleCoordinator) NumberOfParticipants() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockRaffleCoordinator) EntranceFee() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

func (m *MockRaffleCoordinator) Interval() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockRaffleCoordinator) RecentWinner() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockRaffleCoordinator) LatestTimestamp() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

// FakeClock is a manually advanced clock for interval tests
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock fixed at start
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
