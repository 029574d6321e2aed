package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"raffler/domain/entities"
	"raffler/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	RandomnessStream           = "raffle_randomness"
	SubjectRandomnessRequested = "raffle.randomness.requested"
	SubjectRandomnessFulfilled = "raffle.randomness.fulfilled"
)

// RandomnessFulfilledMessage is the wire form of a fulfillment. The word is a
// decimal string so 256-bit values survive JSON.
type RandomnessFulfilledMessage struct {
	RequestID  entities.RequestID `json:"requestId"`
	RandomWord string             `json:"randomWord"`
}

// NATSRandomnessProvider requests randomness from an external coordinator over
// JetStream and relays its fulfillments
type NATSRandomnessProvider struct {
	bus          MessageBus
	lastID       atomic.Uint64
	fulfillments chan entities.Fulfillment
	done         chan struct{}
	closeOnce    sync.Once
	now          func() time.Time
}

// NewNATSRandomnessProvider creates a provider. Ids are seeded from the clock
// so a restarted process never reissues an id a stale fulfillment could match.
func NewNATSRandomnessProvider(bus MessageBus, now func() time.Time) *NATSRandomnessProvider {
	if now == nil {
		now = time.Now
	}
	p := &NATSRandomnessProvider{
		bus:          bus,
		fulfillments: make(chan entities.Fulfillment, 16),
		done:         make(chan struct{}),
		now:          now,
	}
	p.lastID.Store(uint64(now().UnixNano()))
	return p
}

// Start creates the randomness stream and subscribes to fulfillments
func (p *NATSRandomnessProvider) Start() error {
	subjects := []string{SubjectRandomnessRequested, SubjectRandomnessFulfilled}
	if err := p.bus.EnsureStream(RandomnessStream, subjects, "Raffle randomness requests and fulfillments"); err != nil {
		return fmt.Errorf("failed to ensure randomness stream: %w", err)
	}

	if err := p.bus.Subscribe(SubjectRandomnessFulfilled, p.handleFulfillment); err != nil {
		return fmt.Errorf("failed to subscribe to fulfillments: %w", err)
	}

	return nil
}

// RequestRandomness publishes a request and returns its id without waiting
func (p *NATSRandomnessProvider) RequestRandomness(ctx context.Context, params entities.RandomnessParams) (entities.RequestID, error) {
	requestID := entities.RequestID(p.lastID.Add(1))

	request := entities.RandomnessRequest{
		RequestID:   requestID,
		Params:      params,
		RequestedAt: p.now().UTC(),
	}
	data, err := json.Marshal(request)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal randomness request: %w", err)
	}

	if err := p.bus.Publish(ctx, SubjectRandomnessRequested, data); err != nil {
		return 0, fmt.Errorf("failed to publish randomness request: %w", err)
	}

	log.WithFields(log.Fields{
		"requestId":      requestID,
		"keyHash":        params.KeyHash,
		"subscriptionId": params.SubscriptionID,
	}).Info("Published randomness request")

	return requestID, nil
}

// Fulfillments delivers decoded fulfillments
func (p *NATSRandomnessProvider) Fulfillments() <-chan entities.Fulfillment {
	return p.fulfillments
}

// Close releases a handler blocked on delivery; the subscription is closed with the client
func (p *NATSRandomnessProvider) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
}

func (p *NATSRandomnessProvider) handleFulfillment(data []byte) error {
	fulfillment, err := DecodeFulfillment(data)
	if err != nil {
		// Malformed messages are acked; redelivery cannot fix them
		log.WithError(err).Warn("Dropping malformed randomness fulfillment")
		return nil
	}

	select {
	case p.fulfillments <- fulfillment:
		return nil
	case <-p.done:
		return errors.New("randomness provider is closed")
	}
}

// DecodeFulfillment parses a fulfillment message
func DecodeFulfillment(data []byte) (entities.Fulfillment, error) {
	var msg RandomnessFulfilledMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return entities.Fulfillment{}, fmt.Errorf("failed to unmarshal fulfillment: %w", err)
	}
	if msg.RequestID == 0 {
		return entities.Fulfillment{}, errors.New("fulfillment is missing a request id")
	}

	word, ok := new(big.Int).SetString(msg.RandomWord, 10)
	if !ok || word.Sign() < 0 {
		return entities.Fulfillment{}, fmt.Errorf("invalid random word %q", msg.RandomWord)
	}

	return entities.Fulfillment{RequestID: msg.RequestID, RandomWord: word}, nil
}

// EncodeFulfillment builds the wire form of a fulfillment
func EncodeFulfillment(requestID entities.RequestID, word *big.Int) ([]byte, error) {
	return json.Marshal(RandomnessFulfilledMessage{
		RequestID:  requestID,
		RandomWord: word.String(),
	})
}

var _ interfaces.RandomnessProvider = (*NATSRandomnessProvider)(nil)
