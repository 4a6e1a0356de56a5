package remove

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shift-tracker/http-server/respond"
	"shift-tracker/internal/middleware/auth"
	"shift-tracker/internal/schedule"
)

type TicketDeleter interface {
	DeleteTicket(ctx context.Context, caps schedule.Capabilities, id string) error
}

func DeleteTicket(log *slog.Logger, deleter TicketDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tickets.DeleteTicket"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		if err := deleter.DeleteTicket(ctx, auth.FromContext(r.Context()).Capabilities, id); err != nil {
			respond.Error(w, r, log, op, err)
			return
		}

		log.Info("ticket deleted", slog.String("op", op), slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
