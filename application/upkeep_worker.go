package application

import (
	"context"
	"errors"
	"time"

	"raffler/domain/interfaces"
	"raffler/domain/services"

	log "github.com/sirupsen/logrus"
)

// UpkeepWorker is the external trigger of the raffle: it polls CheckUpkeep and
// performs upkeep when the round is due. It also retries failed settlements.
type UpkeepWorker struct {
	coordinator interfaces.RaffleCoordinator
	checkEvery  time.Duration
}

// NewUpkeepWorker creates a new upkeep worker
func NewUpkeepWorker(coordinator interfaces.RaffleCoordinator, checkEvery time.Duration) *UpkeepWorker {
	return &UpkeepWorker{
		coordinator: coordinator,
		checkEvery:  checkEvery,
	}
}

// Start begins polling and returns a function that stops the worker and waits for it
func (w *UpkeepWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	doneChan := make(chan struct{})

	go func() {
		defer close(doneChan)
		log.WithField("checkEvery", w.checkEvery).Info("Upkeep worker started")

		ticker := time.NewTicker(w.checkEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Upkeep worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Upkeep worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()

	return func() {
		close(stopChan)
		<-doneChan
	}
}

// runOnce performs a single upkeep check
func (w *UpkeepWorker) runOnce(ctx context.Context) {
	if w.coordinator.HasUnsettledWinner() {
		resolved, err := w.coordinator.RetrySettlement(ctx)
		if err != nil {
			log.WithError(err).Error("Raffle settlement retry failed")
			return
		}
		log.WithFields(log.Fields{
			"round_number": resolved.RoundNumber,
			"winner":       resolved.Winner,
		}).Info("Raffle settlement retry succeeded")
		return
	}

	needed, payload := w.coordinator.CheckUpkeep(ctx)
	if !needed {
		return
	}

	requestID, err := w.coordinator.PerformUpkeep(ctx, payload)
	if errors.Is(err, services.ErrUpkeepNotNeeded) {
		// Another trigger won the race
		log.WithError(err).Debug("Upkeep no longer needed")
		return
	}
	if err != nil {
		log.WithError(err).Error("Failed to perform upkeep")
		return
	}

	log.WithField("requestId", requestID).Info("Upkeep performed")
}
