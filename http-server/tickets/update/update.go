package update

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"shift-tracker/http-server/respond"
	"shift-tracker/internal/middleware/auth"
	"shift-tracker/internal/schedule"
)

type EstimateUpdater interface {
	UpdateEstimate(ctx context.Context, caps schedule.Capabilities, id string, value float64) (schedule.Ticket, error)
}

type Request struct {
	Estimate *float64 `json:"estimate"`
}

func UpdateEstimate(log *slog.Logger, updater EstimateUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tickets.UpdateEstimate"

		id := chi.URLParam(r, "id")

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.BadRequest(w, r, "invalid JSON body")
			return
		}
		if req.Estimate == nil {
			respond.BadRequest(w, r, "missing 'estimate'")
			return
		}

		// Retries with backoff run inside this deadline.
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		t, err := updater.UpdateEstimate(ctx, auth.FromContext(r.Context()).Capabilities, id, *req.Estimate)
		if err != nil {
			respond.Error(w, r, log, op, err)
			return
		}

		render.JSON(w, r, t)
	}
}
