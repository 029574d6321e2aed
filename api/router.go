package api

import (
	"net/http"
	"time"

	"raffler/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the raffle routes, health and metrics endpoints
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(observability.InstrumentHandler)

	r.Get("/healthz", Healthz)
	r.Method(http.MethodGet, "/metrics", observability.Handler())

	r.Route("/raffle", func(r chi.Router) {
		r.Get("/", h.GetRound)
		r.Get("/participants/{index}", h.GetParticipant)
		r.Post("/entries", h.Enter)
		r.Get("/upkeep", h.CheckUpkeep)
		r.Post("/upkeep", h.PerformUpkeep)
		r.Get("/history", h.GetHistory)
	})

	return r
}
