package application

import (
	"context"
	"errors"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
	"raffler/domain/services"
	"raffler/observability"

	log "github.com/sirupsen/logrus"
)

// FulfillmentWorker relays randomness fulfillments into the coordinator
type FulfillmentWorker struct {
	coordinator interfaces.RaffleCoordinator
	randomness  interfaces.RandomnessProvider
}

// NewFulfillmentWorker creates a new fulfillment worker
func NewFulfillmentWorker(coordinator interfaces.RaffleCoordinator, randomness interfaces.RandomnessProvider) *FulfillmentWorker {
	return &FulfillmentWorker{
		coordinator: coordinator,
		randomness:  randomness,
	}
}

// Start consumes fulfillments until stopped and returns a function that stops the worker and waits for it
func (w *FulfillmentWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	doneChan := make(chan struct{})
	fulfillments := w.randomness.Fulfillments()

	go func() {
		defer close(doneChan)
		log.Info("Fulfillment worker started")

		for {
			select {
			case <-ctx.Done():
				log.Info("Fulfillment worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Fulfillment worker shutting down (stop requested)...")
				return
			case fulfillment, ok := <-fulfillments:
				if !ok {
					log.Info("Fulfillment channel closed, worker exiting")
					return
				}
				w.handle(ctx, fulfillment)
			}
		}
	}()

	return func() {
		close(stopChan)
		<-doneChan
	}
}

// handle delivers one fulfillment. Rejections never stop the worker.
func (w *FulfillmentWorker) handle(ctx context.Context, fulfillment entities.Fulfillment) {
	logger := log.WithField("requestId", fulfillment.RequestID)

	resolved, err := w.coordinator.OnRandomnessFulfilled(ctx, fulfillment.RequestID, fulfillment.RandomWord)
	switch {
	case err == nil:
		logger.WithFields(log.Fields{
			"round_number": resolved.RoundNumber,
			"winner":       resolved.Winner,
			"payout":       resolved.Payout,
		}).Info("Randomness fulfillment resolved round")
	case errors.Is(err, services.ErrUnknownRequest):
		observability.RecordRejectedFulfillment("unknown_request")
		logger.WithError(err).Warn("Ignoring fulfillment for unknown request")
	case errors.Is(err, services.ErrInvalidRandomWord):
		observability.RecordRejectedFulfillment("invalid_word")
		logger.WithError(err).Warn("Ignoring fulfillment with invalid random word")
	case errors.Is(err, services.ErrTransferFailed):
		logger.WithError(err).Error("Winner selected but payout failed; settlement will be retried")
	default:
		logger.WithError(err).Error("Failed to process randomness fulfillment")
	}
}
