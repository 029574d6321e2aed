package services

import (
	"context"
	"errors"
	"math"
	"math/big"
	"testing"
	"time"

	"raffler/domain/entities"
	"raffler/domain/events"
	"raffler/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func createTestPayout(recipient string, amount int64) *entities.Payout {
	return &entities.Payout{
		RoundNumber:      4,
		Recipient:        recipient,
		Amount:           amount,
		RequestID:        17,
		RandomWord:       big.NewInt(123456789),
		ParticipantCount: 3,
		RoundStartedAt:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSettlementService_Transfer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		payout      *entities.Payout
		setupMocks  func(*testhelpers.MockAccountRepository, *testhelpers.MockLedgerRepository, *testhelpers.MockRoundHistoryRepository, *testhelpers.MockEventPublisher)
		expectedErr string
	}{
		{
			name:   "credits existing account",
			payout: createTestPayout("alice", 300),
			setupMocks: func(accounts *testhelpers.MockAccountRepository, ledger *testhelpers.MockLedgerRepository, history *testhelpers.MockRoundHistoryRepository, publisher *testhelpers.MockEventPublisher) {
				accounts.On("GetByParticipantForUpdate", mock.Anything, "alice").
					Return(&entities.Account{ID: 1, Participant: "alice", Balance: 50}, nil)
				accounts.On("UpdateBalance", mock.Anything, "alice", int64(350)).Return(nil)
				ledger.On("Record", mock.Anything, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
					return e.Participant == "alice" &&
						e.BalanceBefore == 50 &&
						e.BalanceAfter == 350 &&
						e.ChangeAmount == 300 &&
						e.TransactionType == entities.TransactionTypeRaffleWin &&
						e.RoundNumber != nil && *e.RoundNumber == 4
				})).Return(nil)
				publisher.On("Publish", mock.MatchedBy(func(e events.BalanceChangeEvent) bool {
					return e.Participant == "alice" && e.NewBalance == 350
				})).Return(nil)
				history.On("Record", mock.Anything, mock.MatchedBy(func(r *entities.ResolvedRound) bool {
					return r.RoundNumber == 4 &&
						r.Winner == "alice" &&
						r.Payout == 300 &&
						r.RequestID == 17 &&
						r.RandomWord == "123456789" &&
						r.ParticipantCount == 3
				})).Return(nil)
			},
		},
		{
			name:   "creates account on first win",
			payout: createTestPayout("bob", 100),
			setupMocks: func(accounts *testhelpers.MockAccountRepository, ledger *testhelpers.MockLedgerRepository, history *testhelpers.MockRoundHistoryRepository, publisher *testhelpers.MockEventPublisher) {
				accounts.On("GetByParticipantForUpdate", mock.Anything, "bob").Return(nil, nil)
				accounts.On("Create", mock.Anything, "bob", int64(0)).
					Return(&entities.Account{ID: 2, Participant: "bob", Balance: 0}, nil)
				accounts.On("UpdateBalance", mock.Anything, "bob", int64(100)).Return(nil)
				ledger.On("Record", mock.Anything, mock.Anything).Return(nil)
				publisher.On("Publish", mock.Anything).Return(nil)
				history.On("Record", mock.Anything, mock.Anything).Return(nil)
			},
		},
		{
			name:        "zero amount",
			payout:      createTestPayout("alice", 0),
			setupMocks:  func(*testhelpers.MockAccountRepository, *testhelpers.MockLedgerRepository, *testhelpers.MockRoundHistoryRepository, *testhelpers.MockEventPublisher) {},
			expectedErr: "payout amount must be positive",
		},
		{
			name:        "missing recipient",
			payout:      createTestPayout("", 100),
			setupMocks:  func(*testhelpers.MockAccountRepository, *testhelpers.MockLedgerRepository, *testhelpers.MockRoundHistoryRepository, *testhelpers.MockEventPublisher) {},
			expectedErr: "payout recipient is required",
		},
		{
			name:   "account lookup fails",
			payout: createTestPayout("alice", 100),
			setupMocks: func(accounts *testhelpers.MockAccountRepository, _ *testhelpers.MockLedgerRepository, _ *testhelpers.MockRoundHistoryRepository, _ *testhelpers.MockEventPublisher) {
				accounts.On("GetByParticipantForUpdate", mock.Anything, "alice").Return(nil, errors.New("connection reset"))
			},
			expectedErr: "failed to get recipient account",
		},
		{
			name:   "balance update fails",
			payout: createTestPayout("alice", 100),
			setupMocks: func(accounts *testhelpers.MockAccountRepository, _ *testhelpers.MockLedgerRepository, _ *testhelpers.MockRoundHistoryRepository, _ *testhelpers.MockEventPublisher) {
				accounts.On("GetByParticipantForUpdate", mock.Anything, "alice").
					Return(&entities.Account{Participant: "alice", Balance: 0}, nil)
				accounts.On("UpdateBalance", mock.Anything, "alice", int64(100)).Return(errors.New("deadlock detected"))
			},
			expectedErr: "failed to update recipient balance",
		},
		{
			name:   "balance would overflow",
			payout: createTestPayout("alice", 100),
			setupMocks: func(accounts *testhelpers.MockAccountRepository, _ *testhelpers.MockLedgerRepository, _ *testhelpers.MockRoundHistoryRepository, _ *testhelpers.MockEventPublisher) {
				accounts.On("GetByParticipantForUpdate", mock.Anything, "alice").
					Return(&entities.Account{Participant: "alice", Balance: math.MaxInt64 - 50}, nil)
			},
			expectedErr: "balance would overflow",
		},
		{
			name:   "round history fails",
			payout: createTestPayout("alice", 100),
			setupMocks: func(accounts *testhelpers.MockAccountRepository, ledger *testhelpers.MockLedgerRepository, history *testhelpers.MockRoundHistoryRepository, publisher *testhelpers.MockEventPublisher) {
				accounts.On("GetByParticipantForUpdate", mock.Anything, "alice").
					Return(&entities.Account{Participant: "alice", Balance: 0}, nil)
				accounts.On("UpdateBalance", mock.Anything, "alice", int64(100)).Return(nil)
				ledger.On("Record", mock.Anything, mock.Anything).Return(nil)
				publisher.On("Publish", mock.Anything).Return(nil)
				history.On("Record", mock.Anything, mock.Anything).Return(errors.New("duplicate round"))
			},
			expectedErr: "failed to record resolved round",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			accounts := new(testhelpers.MockAccountRepository)
			ledger := new(testhelpers.MockLedgerRepository)
			history := new(testhelpers.MockRoundHistoryRepository)
			publisher := new(testhelpers.MockEventPublisher)
			tt.setupMocks(accounts, ledger, history, publisher)

			service := NewSettlementService(accounts, ledger, history, publisher)
			err := service.Transfer(context.Background(), tt.payout)

			if tt.expectedErr != "" {
				assert.ErrorContains(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			accounts.AssertExpectations(t)
			ledger.AssertExpectations(t)
			history.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}
