package api

import (
	"time"

	"raffler/domain/entities"
)

// RoundResponse is the JSON view of the current round
type RoundResponse struct {
	RoundNumber      int64      `json:"roundNumber"`
	State            string     `json:"state"`
	Participants     []string   `json:"participants"`
	NumParticipants  int        `json:"numParticipants"`
	Balance          int64      `json:"balance"`
	EntranceFee      int64      `json:"entranceFee"`
	IntervalSeconds  int64      `json:"intervalSeconds"`
	LatestTimestamp  time.Time  `json:"latestTimestamp"`
	RecentWinner     string     `json:"recentWinner,omitempty"`
	PendingRequestID string     `json:"pendingRequestId,omitempty"`
	RequestedAt      *time.Time `json:"requestedAt,omitempty"`
	UnsettledWinner  string     `json:"unsettledWinner,omitempty"`
}

func newRoundResponse(s entities.RoundSnapshot) RoundResponse {
	resp := RoundResponse{
		RoundNumber:     s.RoundNumber,
		State:           s.State.String(),
		Participants:    s.Participants,
		NumParticipants: s.ParticipantCount(),
		Balance:         s.Balance,
		EntranceFee:     s.EntranceFee,
		IntervalSeconds: int64(s.Interval / time.Second),
		LatestTimestamp: s.LastRoundAt,
		RecentWinner:    s.RecentWinner,
		RequestedAt:     s.RequestedAt,
		UnsettledWinner: s.UnsettledWinner,
	}
	if resp.Participants == nil {
		resp.Participants = []string{}
	}
	if s.PendingRequestID != 0 {
		resp.PendingRequestID = s.PendingRequestID.String()
	}
	return resp
}

// EnterRequest is the body of POST /raffle/entries
type EnterRequest struct {
	Participant string `json:"participant"`
	AmountPaid  int64  `json:"amountPaid"`
}

// ParticipantResponse is returned by GET /raffle/participants/{index}
type ParticipantResponse struct {
	Index       int    `json:"index"`
	Participant string `json:"participant"`
}

// UpkeepCheckResponse is returned by GET /raffle/upkeep
type UpkeepCheckResponse struct {
	UpkeepNeeded bool   `json:"upkeepNeeded"`
	PerformData  string `json:"performData"`
}

// UpkeepResponse is returned by POST /raffle/upkeep
type UpkeepResponse struct {
	RequestID string `json:"requestId"`
}

// ErrorResponse carries a machine readable error code
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
