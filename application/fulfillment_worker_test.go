package application

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"raffler/domain/entities"
	"raffler/domain/services"
	"raffler/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

func TestFulfillmentWorker_Handle(t *testing.T) {
	t.Parallel()

	word := big.NewInt(7)
	tests := []struct {
		name string
		err  error
	}{
		{name: "resolved"},
		{name: "unknown request", err: services.ErrUnknownRequest},
		{name: "invalid word", err: services.ErrInvalidRandomWord},
		{name: "transfer failed", err: errors.Join(services.ErrTransferFailed, errors.New("ledger down"))},
		{name: "unexpected error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			coordinator := new(testhelpers.MockRaffleCoordinator)
			if tt.err == nil {
				coordinator.On("OnRandomnessFulfilled", mock.Anything, entities.RequestID(3), word).
					Return(&entities.ResolvedRound{RoundNumber: 1, Winner: "bob", Payout: 300}, nil)
			} else {
				coordinator.On("OnRandomnessFulfilled", mock.Anything, entities.RequestID(3), word).Return(nil, tt.err)
			}

			worker := NewFulfillmentWorker(coordinator, &testhelpers.MockRandomnessProvider{})
			worker.handle(context.Background(), entities.Fulfillment{RequestID: 3, RandomWord: word})

			coordinator.AssertExpectations(t)
		})
	}
}

func TestFulfillmentWorker_ConsumesChannel(t *testing.T) {
	t.Parallel()

	provider := &testhelpers.MockRandomnessProvider{FulfillmentCh: make(chan entities.Fulfillment, 2)}
	coordinator := new(testhelpers.MockRaffleCoordinator)

	handled := make(chan entities.RequestID, 2)
	coordinator.On("OnRandomnessFulfilled", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, services.ErrUnknownRequest).
		Run(func(args mock.Arguments) {
			handled <- args.Get(1).(entities.RequestID)
		})

	worker := NewFulfillmentWorker(coordinator, provider)
	stop := worker.Start(context.Background())
	defer stop()

	provider.FulfillmentCh <- entities.Fulfillment{RequestID: 1, RandomWord: big.NewInt(1)}
	provider.FulfillmentCh <- entities.Fulfillment{RequestID: 2, RandomWord: big.NewInt(2)}

	for _, expected := range []entities.RequestID{1, 2} {
		select {
		case got := <-handled:
			if got != expected {
				t.Fatalf("expected request %s, got %s", expected, got)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("fulfillment was not handled")
		}
	}
}

func TestFulfillmentWorker_ExitsWhenChannelCloses(t *testing.T) {
	t.Parallel()

	provider := &testhelpers.MockRandomnessProvider{FulfillmentCh: make(chan entities.Fulfillment)}
	worker := NewFulfillmentWorker(new(testhelpers.MockRaffleCoordinator), provider)
	stop := worker.Start(context.Background())

	close(provider.FulfillmentCh)

	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
