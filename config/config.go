package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"raffler/database"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Raffle configuration
	EntranceFee      int64         `envconfig:"ENTRANCE_FEE" default:"10000000" validate:"gt=0"`
	UpkeepInterval   time.Duration `envconfig:"UPKEEP_INTERVAL" default:"30s" validate:"gt=0"`
	UpkeepCheckEvery time.Duration `envconfig:"UPKEEP_CHECK_EVERY" default:"5s" validate:"gt=0"`

	// Randomness provider configuration
	RandomnessProvider             string        `envconfig:"RANDOMNESS_PROVIDER" default:"local" validate:"oneof=local nats"`
	RandomnessKeyHash              string        `envconfig:"RANDOMNESS_KEY_HASH" default:"0xd89b2bf150e3b9e13446986e571fb9cab24b13cea0a43ea20a6049a85cc807cc"`
	RandomnessSubscriptionID       uint64        `envconfig:"RANDOMNESS_SUBSCRIPTION_ID" default:"1"`
	RandomnessCallbackGasLimit     uint32        `envconfig:"RANDOMNESS_CALLBACK_GAS_LIMIT" default:"500000" validate:"gt=0"`
	RandomnessRequestConfirmations uint16        `envconfig:"RANDOMNESS_REQUEST_CONFIRMATIONS" default:"3"`
	RandomnessNumWords             uint32        `envconfig:"RANDOMNESS_NUM_WORDS" default:"1" validate:"eq=1"`
	LocalFulfillDelay              time.Duration `envconfig:"LOCAL_FULFILL_DELAY" default:"2s" validate:"gte=0"`

	// Database configuration
	DatabaseURL  string `envconfig:"DATABASE_URL" validate:"required_unless=Environment test"`
	DatabaseName string `envconfig:"DATABASE_NAME"`

	// NATS configuration
	NATSServers string `envconfig:"NATS_SERVERS" default:"nats://nats:4222" validate:"required_if=RandomnessProvider nats"`

	// HTTP configuration
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`

	// Discord announcements, disabled when no token is set
	DiscordToken     string `envconfig:"DISCORD_TOKEN"`
	DiscordChannelID string `envconfig:"DISCORD_CHANNEL_ID" validate:"required_with=DiscordToken"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"development" validate:"oneof=development production test"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup

	validate = validator.New()
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// DiscordEnabled returns true if winner announcements should be posted
func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != ""
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		EntranceFee:                100,
		UpkeepInterval:             time.Minute,
		UpkeepCheckEvery:           time.Second,
		RandomnessProvider:         "local",
		RandomnessSubscriptionID:   1,
		RandomnessCallbackGasLimit: 500000,
		RandomnessNumWords:         1,
		HTTPAddr:                   ":0",
		LogLevel:                   "info",
		Environment:                "test",
	}
}
