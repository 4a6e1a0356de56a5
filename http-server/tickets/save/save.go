package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"shift-tracker/http-server/respond"
	"shift-tracker/internal/middleware/auth"
	"shift-tracker/internal/placement"
	"shift-tracker/internal/schedule"
)

type TicketCreator interface {
	CreateTicket(ctx context.Context, caps schedule.Capabilities, d placement.Draft) (schedule.Ticket, error)
	CreateSpecial(ctx context.Context, caps schedule.Capabilities, kind schedule.Kind, estimate float64) (schedule.Ticket, error)
}

func SaveTicket(log *slog.Logger, creator TicketCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tickets.SaveTicket"

		var req placement.Draft
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.BadRequest(w, r, "invalid JSON body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		t, err := creator.CreateTicket(ctx, auth.FromContext(r.Context()).Capabilities, req)
		if err != nil {
			respond.Error(w, r, log, op, err)
			return
		}

		log.Info("ticket created", slog.String("op", op), slog.String("id", t.ID), slog.String("ticket", t.Name))
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, t)
	}
}

type SpecialRequest struct {
	Type     schedule.Kind `json:"type"`
	Estimate float64       `json:"estimate"`
}

func SaveSpecial(log *slog.Logger, creator TicketCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tickets.SaveSpecial"

		var req SpecialRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.BadRequest(w, r, "invalid JSON body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		t, err := creator.CreateSpecial(ctx, auth.FromContext(r.Context()).Capabilities, req.Type, req.Estimate)
		if err != nil {
			respond.Error(w, r, log, op, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, t)
	}
}
