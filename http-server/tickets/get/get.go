package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"shift-tracker/http-server/respond"
	"shift-tracker/internal/schedule"
)

type TicketsProvider interface {
	Tickets(ctx context.Context, date string) (lobby, placed []schedule.Ticket, err error)
}

type Response struct {
	Date   string            `json:"date"`
	Lobby  []schedule.Ticket `json:"lobby"`
	Placed []schedule.Ticket `json:"placed"`
}

func GetTickets(log *slog.Logger, tickets TicketsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.tickets.GetTickets"

		date := r.URL.Query().Get("date")
		if date == "" {
			respond.BadRequest(w, r, "missing required query parameter 'date'")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		lobby, placed, err := tickets.Tickets(ctx, date)
		if err != nil {
			respond.Error(w, r, log, op, err)
			return
		}

		if lobby == nil {
			lobby = []schedule.Ticket{}
		}
		if placed == nil {
			placed = []schedule.Ticket{}
		}
		render.JSON(w, r, Response{Date: date, Lobby: lobby, Placed: placed})
	}
}
