package infrastructure

import (
	"fmt"

	"raffler/domain/events"
)

const (
	SubjectParticipantEntered = "raffle.participant.entered"
	SubjectRoundCalculating   = "raffle.round.calculating"
	SubjectWinnerPicked       = "raffle.round.winner_picked"
	SubjectSettlementFailed   = "raffle.round.settlement_failed"
	SubjectBalanceChanged     = "accounts.balance_changed"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeParticipantEntered:
		return SubjectParticipantEntered
	case events.EventTypeRoundCalculating:
		return SubjectRoundCalculating
	case events.EventTypeWinnerPicked:
		return SubjectWinnerPicked
	case events.EventTypeSettlementFailed:
		return SubjectSettlementFailed
	case events.EventTypeBalanceChange:
		return SubjectBalanceChanged
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectParticipantEntered:
		return events.EventTypeParticipantEntered
	case SubjectRoundCalculating:
		return events.EventTypeRoundCalculating
	case SubjectWinnerPicked:
		return events.EventTypeWinnerPicked
	case SubjectSettlementFailed:
		return events.EventTypeSettlementFailed
	case SubjectBalanceChanged:
		return events.EventTypeBalanceChange
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes domain events to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectParticipantEntered,
		SubjectRoundCalculating,
		SubjectWinnerPicked,
		SubjectSettlementFailed,
		SubjectBalanceChanged,
	}
}
