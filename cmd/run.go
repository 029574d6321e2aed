package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"raffler/api"
	"raffler/application"
	"raffler/config"
	"raffler/database"
	"raffler/domain/entities"
	"raffler/domain/interfaces"
	"raffler/domain/services"
	"raffler/infrastructure"
	"raffler/notify"
	"raffler/observability"
	"raffler/repository"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting raffler...")

	// Initialize database connection
	log.Info("Running database migrations...")
	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// NATS is required for the nats randomness provider and optional otherwise
	natsClient, err := connectNATS(ctx, cfg)
	if err != nil {
		return err
	}
	if natsClient != nil {
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Error("Error closing NATS connection")
			}
		}()
	}

	// Initialize event publisher
	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if natsClient != nil {
		if err := eventPublisher.EnsureDomainEventStream(); err != nil {
			return fmt.Errorf("failed to ensure event stream: %w", err)
		}
	}
	for _, eventType := range observability.EventTypes() {
		eventPublisher.RegisterLocalHandler(eventType, observability.HandleEvent)
	}

	// Initialize settlement
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)
	settlement := application.NewLedgerSettlement(uowFactory)

	// Initialize randomness provider
	randomness, closeRandomness, err := newRandomnessProvider(cfg, natsClient)
	if err != nil {
		return err
	}
	defer closeRandomness()

	// Initialize coordinator
	coordinator, err := services.NewRaffleCoordinator(raffleConfig(cfg), randomness, settlement, eventPublisher)
	if err != nil {
		return fmt.Errorf("failed to create raffle coordinator: %w", err)
	}
	log.WithFields(log.Fields{
		"entranceFee": cfg.EntranceFee,
		"interval":    cfg.UpkeepInterval,
		"provider":    cfg.RandomnessProvider,
	}).Info("Raffle coordinator initialized")

	// Discord announcements
	if cfg.DiscordEnabled() {
		session, err := notify.NewSession(cfg.DiscordToken)
		if err != nil {
			return fmt.Errorf("failed to initialize Discord session: %w", err)
		}
		defer func() {
			if err := session.Close(); err != nil {
				log.WithError(err).Error("Error closing Discord session")
			}
		}()

		announcer := notify.NewAnnouncer(session, cfg.DiscordChannelID)
		for _, eventType := range announcer.EventTypes() {
			eventPublisher.RegisterLocalHandler(eventType, announcer.HandleEvent)
		}
		stopAnnouncer := announcer.Start(ctx)
		defer stopAnnouncer()
	}

	// Start workers
	stopFulfillmentWorker := application.NewFulfillmentWorker(coordinator, randomness).Start(ctx)
	defer stopFulfillmentWorker()
	stopUpkeepWorker := application.NewUpkeepWorker(coordinator, cfg.UpkeepCheckEvery).Start(ctx)
	defer stopUpkeepWorker()

	// Start HTTP server
	handler := api.NewHandler(coordinator, repository.NewRoundHistoryRepository(db))
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for context cancellation
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	log.Info("Shutting down raffler...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	snapshot := coordinator.Snapshot()
	if snapshot.PendingRequestID != 0 || snapshot.UnsettledWinner != "" {
		log.WithFields(log.Fields{
			"round_number":     snapshot.RoundNumber,
			"pendingRequestId": snapshot.PendingRequestID,
			"pendingFor":       snapshot.PendingFor(time.Now()),
			"unsettledWinner":  snapshot.UnsettledWinner,
			"balance":          snapshot.Balance,
		}).Warn("Shutting down with an unresolved round")
	}

	log.Info("Shutdown completed")
	return nil
}

func configureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("Invalid log level, defaulting to info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func connectNATS(ctx context.Context, cfg *config.Config) (*infrastructure.NATSClient, error) {
	if cfg.NATSServers == "" {
		return nil, nil
	}

	log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
	client := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		if cfg.RandomnessProvider == "nats" {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.WithError(err).Warn("NATS unavailable, events will only be handled in-process")
		return nil, nil
	}
	return client, nil
}

func newRandomnessProvider(cfg *config.Config, natsClient *infrastructure.NATSClient) (interfaces.RandomnessProvider, func(), error) {
	switch cfg.RandomnessProvider {
	case "nats":
		provider := infrastructure.NewNATSRandomnessProvider(natsClient, time.Now)
		if err := provider.Start(); err != nil {
			return nil, nil, fmt.Errorf("failed to start NATS randomness provider: %w", err)
		}
		return provider, provider.Close, nil
	default:
		provider := infrastructure.NewLocalRandomnessProvider(infrastructure.WithAutoFulfill(cfg.LocalFulfillDelay))
		log.WithField("fulfillDelay", cfg.LocalFulfillDelay).Warn("Using local randomness provider")
		return provider, provider.Close, nil
	}
}

func raffleConfig(cfg *config.Config) services.RaffleConfig {
	return services.RaffleConfig{
		EntranceFee: cfg.EntranceFee,
		Interval:    cfg.UpkeepInterval,
		Randomness: entities.RandomnessParams{
			KeyHash:              cfg.RandomnessKeyHash,
			SubscriptionID:       cfg.RandomnessSubscriptionID,
			RequestConfirmations: cfg.RandomnessRequestConfirmations,
			CallbackGasLimit:     cfg.RandomnessCallbackGasLimit,
			NumWords:             cfg.RandomnessNumWords,
		},
	}
}
