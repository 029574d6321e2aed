package events

import (
	"time"

	"raffler/domain/entities"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeParticipantEntered EventType = "participant_entered"
	EventTypeRoundCalculating   EventType = "round_calculating"
	EventTypeWinnerPicked       EventType = "winner_picked"
	EventTypeSettlementFailed   EventType = "settlement_failed"
	EventTypeBalanceChange      EventType = "balance_change"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ParticipantEnteredEvent is emitted for every accepted entry
type ParticipantEnteredEvent struct {
	RoundNumber  int64  `json:"roundNumber"`
	Participant  string `json:"participant"`
	AmountPaid   int64  `json:"amountPaid"`
	RoundBalance int64  `json:"roundBalance"`
	Participants int    `json:"participants"`
}

func (e ParticipantEnteredEvent) Type() EventType {
	return EventTypeParticipantEntered
}

// RoundCalculatingEvent is emitted when upkeep requests randomness
type RoundCalculatingEvent struct {
	RoundNumber  int64              `json:"roundNumber"`
	RequestID    entities.RequestID `json:"requestId"`
	Participants int                `json:"participants"`
	RoundBalance int64              `json:"roundBalance"`
}

func (e RoundCalculatingEvent) Type() EventType {
	return EventTypeRoundCalculating
}

// WinnerPickedEvent is emitted after the winner has been paid and the round reset
type WinnerPickedEvent struct {
	RoundNumber  int64              `json:"roundNumber"`
	Winner       string             `json:"winner"`
	Payout       int64              `json:"payout"`
	RequestID    entities.RequestID `json:"requestId"`
	Participants int                `json:"participants"`
	ResolvedAt   time.Time          `json:"resolvedAt"`
}

func (e WinnerPickedEvent) Type() EventType {
	return EventTypeWinnerPicked
}

// SettlementFailedEvent is emitted when paying the selected winner fails
type SettlementFailedEvent struct {
	RoundNumber int64  `json:"roundNumber"`
	Winner      string `json:"winner"`
	Amount      int64  `json:"amount"`
	Reason      string `json:"reason"`
}

func (e SettlementFailedEvent) Type() EventType {
	return EventTypeSettlementFailed
}

// BalanceChangeEvent represents a ledger balance change that occurred
type BalanceChangeEvent struct {
	Participant     string                   `json:"participant"`
	OldBalance      int64                    `json:"oldBalance"`
	NewBalance      int64                    `json:"newBalance"`
	TransactionType entities.TransactionType `json:"transactionType"`
	ChangeAmount    int64                    `json:"changeAmount"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}
