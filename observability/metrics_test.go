package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"raffler/domain/events"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleEvent_RoundLifecycle(t *testing.T) {
	ctx := context.Background()
	entriesBefore := testutil.ToFloat64(entriesTotal)
	upkeepsBefore := testutil.ToFloat64(upkeepsPerformed)
	successBefore := testutil.ToFloat64(settlements.WithLabelValues("success"))
	failureBefore := testutil.ToFloat64(settlements.WithLabelValues("failure"))

	require.NoError(t, HandleEvent(ctx, events.ParticipantEnteredEvent{Participant: "alice", AmountPaid: 100, RoundBalance: 100, Participants: 1}))
	require.NoError(t, HandleEvent(ctx, events.ParticipantEnteredEvent{Participant: "bob", AmountPaid: 100, RoundBalance: 200, Participants: 2}))
	assert.Equal(t, entriesBefore+2, testutil.ToFloat64(entriesTotal))
	assert.Equal(t, float64(200), testutil.ToFloat64(potBalance))
	assert.Equal(t, float64(2), testutil.ToFloat64(participants))

	require.NoError(t, HandleEvent(ctx, events.RoundCalculatingEvent{RequestID: 1}))
	assert.Equal(t, upkeepsBefore+1, testutil.ToFloat64(upkeepsPerformed))
	assert.Equal(t, float64(1), testutil.ToFloat64(calculating))

	require.NoError(t, HandleEvent(ctx, events.SettlementFailedEvent{Winner: "bob"}))
	assert.Equal(t, failureBefore+1, testutil.ToFloat64(settlements.WithLabelValues("failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(calculating))

	require.NoError(t, HandleEvent(ctx, events.WinnerPickedEvent{Winner: "bob", Payout: 200}))
	assert.Equal(t, successBefore+1, testutil.ToFloat64(settlements.WithLabelValues("success")))
	assert.Equal(t, float64(0), testutil.ToFloat64(potBalance))
	assert.Equal(t, float64(0), testutil.ToFloat64(participants))
	assert.Equal(t, float64(0), testutil.ToFloat64(calculating))
}

func TestRecordRejectedFulfillment(t *testing.T) {
	before := testutil.ToFloat64(rejectedFulfillments.WithLabelValues("unknown_request"))

	RecordRejectedFulfillment("unknown_request")

	assert.Equal(t, before+1, testutil.ToFloat64(rejectedFulfillments.WithLabelValues("unknown_request")))
}

func TestInstrumentHandler_UsesRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(InstrumentHandler)
	router.Get("/raffle/participants/{index}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/raffle/participants/{index}", "404"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/raffle/participants/7", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/raffle/participants/{index}", "404")))
}

func TestHandler_ExposesRaffleMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "raffler_raffle_pot_balance"))
}
