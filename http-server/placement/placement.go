// Package placement exposes the drag-and-drop gestures of the board.
package placement

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"shift-tracker/http-server/respond"
	"shift-tracker/internal/middleware/auth"
	engine "shift-tracker/internal/placement"
	"shift-tracker/internal/schedule"
)

// Gestures write through the store with retries, so they get more time than
// a read.
const timeout = 15 * time.Second

type Placer interface {
	Assign(ctx context.Context, caps schedule.Capabilities, d engine.Drop) (engine.Result, error)
	DropToLobby(ctx context.Context, caps schedule.Capabilities, id string, elongated bool) (engine.Result, error)
	InsertSpecial(ctx context.Context, caps schedule.Capabilities, d engine.SpecialDrop) (engine.Result, error)
	SplitOverflow(ctx context.Context, caps schedule.Capabilities, id string) (engine.Result, error)
	Resize(ctx context.Context, caps schedule.Capabilities, id string, dir engine.Direction) (engine.Result, error)
	Consolidate(ctx context.Context, caps schedule.Capabilities) (engine.ConsolidateResult, error)
	ClearDate(ctx context.Context, caps schedule.Capabilities, date string) (engine.Result, error)
}

// Target is where on the board a ticket was dropped.
type Target struct {
	User    string `json:"user"`
	Date    string `json:"date"`
	Team    string `json:"team"`
	ViewAll bool   `json:"view_all"`
	Index   int    `json:"index"`
}

func (t Target) view(roster schedule.Roster) (schedule.View, error) {
	if _, err := schedule.ParseDate(t.Date); err != nil {
		return schedule.View{}, err
	}
	return roster.ViewFor(t.Team, t.Date, t.ViewAll)
}

type AssignRequest struct {
	TicketID  string `json:"ticket_id"`
	Elongated bool   `json:"elongated"`
	Target
}

func Assign(log *slog.Logger, placer Placer, roster schedule.Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.placement.Assign"

		var req AssignRequest
		if !decode(w, r, &req) {
			return
		}
		view, err := req.view(roster)
		if err != nil {
			respond.Error(w, r, log, op, err)
			return
		}

		run(w, r, log, op, func(ctx context.Context, caps schedule.Capabilities) (any, error) {
			return placer.Assign(ctx, caps, engine.Drop{
				TicketID:  req.TicketID,
				User:      req.User,
				View:      view,
				Index:     req.Index,
				Elongated: req.Elongated,
			})
		})
	}
}

type LobbyRequest struct {
	TicketID  string `json:"ticket_id"`
	Elongated bool   `json:"elongated"`
}

func DropToLobby(log *slog.Logger, placer Placer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.placement.DropToLobby"

		var req LobbyRequest
		if !decode(w, r, &req) {
			return
		}

		run(w, r, log, op, func(ctx context.Context, caps schedule.Capabilities) (any, error) {
			return placer.DropToLobby(ctx, caps, req.TicketID, req.Elongated)
		})
	}
}

type SpecialRequest struct {
	// TicketID is empty when a fresh special is dragged from the palette.
	TicketID string        `json:"ticket_id"`
	Type     schedule.Kind `json:"type"`
	Estimate float64       `json:"estimate"`
	Target
}

func InsertSpecial(log *slog.Logger, placer Placer, roster schedule.Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.placement.InsertSpecial"

		var req SpecialRequest
		if !decode(w, r, &req) {
			return
		}
		view, err := req.view(roster)
		if err != nil {
			respond.Error(w, r, log, op, err)
			return
		}

		run(w, r, log, op, func(ctx context.Context, caps schedule.Capabilities) (any, error) {
			return placer.InsertSpecial(ctx, caps, engine.SpecialDrop{
				TicketID: req.TicketID,
				Kind:     req.Type,
				Estimate: req.Estimate,
				User:     req.User,
				View:     view,
				Index:    req.Index,
			})
		})
	}
}

type TicketRequest struct {
	TicketID string `json:"ticket_id"`
}

func Split(log *slog.Logger, placer Placer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.placement.Split"

		var req TicketRequest
		if !decode(w, r, &req) {
			return
		}

		run(w, r, log, op, func(ctx context.Context, caps schedule.Capabilities) (any, error) {
			return placer.SplitOverflow(ctx, caps, req.TicketID)
		})
	}
}

type ResizeRequest struct {
	TicketID  string `json:"ticket_id"`
	Direction string `json:"direction"`
}

func Resize(log *slog.Logger, placer Placer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.placement.Resize"

		var req ResizeRequest
		if !decode(w, r, &req) {
			return
		}
		dir, ok := engine.ParseDirection(req.Direction)
		if !ok {
			respond.BadRequest(w, r, "direction must be 'increase' or 'decrease'")
			return
		}

		run(w, r, log, op, func(ctx context.Context, caps schedule.Capabilities) (any, error) {
			return placer.Resize(ctx, caps, req.TicketID, dir)
		})
	}
}

func Consolidate(log *slog.Logger, placer Placer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.placement.Consolidate"

		run(w, r, log, op, func(ctx context.Context, caps schedule.Capabilities) (any, error) {
			return placer.Consolidate(ctx, caps)
		})
	}
}

type ClearRequest struct {
	Date string `json:"date"`
}

func Clear(log *slog.Logger, placer Placer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.placement.Clear"

		var req ClearRequest
		if !decode(w, r, &req) {
			return
		}
		if _, err := schedule.ParseDate(req.Date); err != nil {
			respond.Error(w, r, log, op, err)
			return
		}

		run(w, r, log, op, func(ctx context.Context, caps schedule.Capabilities) (any, error) {
			return placer.ClearDate(ctx, caps, req.Date)
		})
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		respond.BadRequest(w, r, "invalid JSON body")
		return false
	}
	return true
}

func run(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, fn func(context.Context, schedule.Capabilities) (any, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	res, err := fn(ctx, auth.FromContext(r.Context()).Capabilities)
	if err != nil {
		respond.Error(w, r, log, op, err)
		return
	}
	render.JSON(w, r, res)
}
