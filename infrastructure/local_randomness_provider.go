package infrastructure

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"raffler/domain/entities"
	"raffler/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// ErrNonexistentRequest is returned when fulfilling an id that was never issued or is already fulfilled
var ErrNonexistentRequest = errors.New("nonexistent request")

// maxRandomWord is 2^256, the exclusive upper bound of generated words
var maxRandomWord = new(big.Int).Lsh(big.NewInt(1), 256)

// LocalRandomnessProvider is an in-process randomness coordinator for
// development and tests. It issues ids from 1 and delivers a uniformly random
// 256-bit word after a delay, or when Fulfill is called.
type LocalRandomnessProvider struct {
	mu           sync.Mutex
	lastID       entities.RequestID
	pending      map[entities.RequestID]entities.RandomnessRequest
	timers       map[entities.RequestID]*time.Timer
	fulfillments chan entities.Fulfillment
	done         chan struct{}
	closeOnce    sync.Once
	delay        time.Duration
	wordSource   func() (*big.Int, error)
	now          func() time.Time
}

// LocalProviderOption customizes a LocalRandomnessProvider
type LocalProviderOption func(*LocalRandomnessProvider)

// WithAutoFulfill delivers every request after delay. Zero disables automatic delivery.
func WithAutoFulfill(delay time.Duration) LocalProviderOption {
	return func(p *LocalRandomnessProvider) {
		p.delay = delay
	}
}

// WithWordSource replaces the crypto/rand word generator
func WithWordSource(source func() (*big.Int, error)) LocalProviderOption {
	return func(p *LocalRandomnessProvider) {
		p.wordSource = source
	}
}

// NewLocalRandomnessProvider creates a local provider. Without WithAutoFulfill
// requests stay pending until Fulfill is called.
func NewLocalRandomnessProvider(opts ...LocalProviderOption) *LocalRandomnessProvider {
	p := &LocalRandomnessProvider{
		pending:      make(map[entities.RequestID]entities.RandomnessRequest),
		timers:       make(map[entities.RequestID]*time.Timer),
		fulfillments: make(chan entities.Fulfillment, 16),
		done:         make(chan struct{}),
		wordSource:   randomWord,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RequestRandomness records a pending request and returns its id
func (p *LocalRandomnessProvider) RequestRandomness(ctx context.Context, params entities.RandomnessParams) (entities.RequestID, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if params.NumWords == 0 {
		return 0, errors.New("at least one random word must be requested")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-p.done:
		return 0, errors.New("randomness provider is closed")
	default:
	}

	p.lastID++
	requestID := p.lastID
	p.pending[requestID] = entities.RandomnessRequest{
		RequestID:   requestID,
		Params:      params,
		RequestedAt: p.now(),
	}

	if p.delay > 0 {
		p.timers[requestID] = time.AfterFunc(p.delay, func() {
			if err := p.Fulfill(requestID); err != nil && !errors.Is(err, ErrNonexistentRequest) {
				log.WithError(err).WithField("requestId", requestID).Error("Failed to auto-fulfill randomness request")
			}
		})
	}

	log.WithFields(log.Fields{
		"requestId": requestID,
		"keyHash":   params.KeyHash,
		"numWords":  params.NumWords,
		"delay":     p.delay,
	}).Debug("Local randomness requested")

	return requestID, nil
}

// Fulfill delivers a fresh random word for a pending request
func (p *LocalRandomnessProvider) Fulfill(requestID entities.RequestID) error {
	word, err := p.wordSource()
	if err != nil {
		return fmt.Errorf("failed to generate random word: %w", err)
	}
	return p.FulfillWithWord(requestID, word)
}

// FulfillWithWord delivers word for a pending request
func (p *LocalRandomnessProvider) FulfillWithWord(requestID entities.RequestID, word *big.Int) error {
	p.mu.Lock()
	if _, ok := p.pending[requestID]; !ok {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNonexistentRequest, requestID)
	}
	delete(p.pending, requestID)
	if timer, ok := p.timers[requestID]; ok {
		timer.Stop()
		delete(p.timers, requestID)
	}
	p.mu.Unlock()

	select {
	case p.fulfillments <- entities.Fulfillment{RequestID: requestID, RandomWord: word}:
		return nil
	case <-p.done:
		return errors.New("randomness provider is closed")
	}
}

// Pending returns the ids that have not been fulfilled
func (p *LocalRandomnessProvider) Pending() []entities.RequestID {
	p.mu.Lock()
	defer p.mu.Unlock()

	ids := make([]entities.RequestID, 0, len(p.pending))
	for id := range p.pending {
		ids = append(ids, id)
	}
	return ids
}

// Fulfillments delivers fulfilled requests
func (p *LocalRandomnessProvider) Fulfillments() <-chan entities.Fulfillment {
	return p.fulfillments
}

// Close stops pending timers and releases blocked deliveries
func (p *LocalRandomnessProvider) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for id, timer := range p.timers {
			timer.Stop()
			delete(p.timers, id)
		}
		close(p.done)
	})
}

func randomWord() (*big.Int, error) {
	return rand.Int(rand.Reader, maxRandomWord)
}

var _ interfaces.RandomnessProvider = (*LocalRandomnessProvider)(nil)
