package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"shift-tracker/http-server/respond"
	"shift-tracker/internal/timeline"
)

type TimelineProvider interface {
	Team(ctx context.Context, date, team, tz string) (timeline.TeamView, error)
	All(ctx context.Context, date, tz string) ([]timeline.TeamView, error)
}

type SlotJSON struct {
	Kind      string `json:"kind"`
	Global    int    `json:"global"`
	TicketID  string `json:"ticket_id,omitempty"`
	Ticket    string `json:"ticket,omitempty"`
	SpecialID string `json:"special_id,omitempty"`
	Type      string `json:"type,omitempty"`
	ColorKey  string `json:"color_key,omitempty"`
	Offset    int    `json:"offset"`
	First     bool   `json:"first,omitempty"`
	Elongated bool   `json:"elongated,omitempty"`
	OffShift  bool   `json:"off_shift,omitempty"`
	Clipped   bool   `json:"clipped,omitempty"`
	Overlaps  bool   `json:"overlaps,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

type RowJSON struct {
	User  string     `json:"user"`
	Off   bool       `json:"off"`
	Start int        `json:"shift_start"`
	End   int        `json:"shift_end"`
	Slots []SlotJSON `json:"slots"`
}

type TeamJSON struct {
	Team      string    `json:"team"`
	Label     string    `json:"label"`
	Date      string    `json:"date"`
	ViewAll   bool      `json:"view_all"`
	StartHour int       `json:"start_hour"`
	Labels    []string  `json:"labels"`
	Rows      []RowJSON `json:"rows"`
}

func GetTimeline(log *slog.Logger, provider TimelineProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.timeline.GetTimeline"

		q := r.URL.Query()
		date := q.Get("date")
		team := q.Get("team")
		tz := q.Get("tz")
		viewAll, _ := strconv.ParseBool(q.Get("view_all"))

		if date == "" {
			respond.BadRequest(w, r, "missing required query parameter 'date'")
			return
		}
		if !viewAll && team == "" {
			respond.BadRequest(w, r, "either 'team' or 'view_all=true' is required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var views []timeline.TeamView
		if viewAll {
			all, err := provider.All(ctx, date, tz)
			if err != nil {
				respond.Error(w, r, log, op, err)
				return
			}
			views = all
		} else {
			tv, err := provider.Team(ctx, date, team, tz)
			if err != nil {
				respond.Error(w, r, log, op, err)
				return
			}
			views = []timeline.TeamView{tv}
		}

		out := make([]TeamJSON, 0, len(views))
		for _, tv := range views {
			out = append(out, teamJSON(tv))
		}
		render.JSON(w, r, out)
	}
}

func teamJSON(tv timeline.TeamView) TeamJSON {
	out := TeamJSON{
		Team:      tv.Team,
		Label:     tv.Label,
		Date:      tv.View.Date,
		ViewAll:   tv.View.ViewAll,
		StartHour: tv.StartHour,
		Labels:    tv.Labels,
		Rows:      make([]RowJSON, 0, len(tv.Rows)),
	}
	for _, row := range tv.Rows {
		rj := RowJSON{
			User:  row.User,
			Off:   row.Off,
			Start: row.Window.Start,
			End:   row.Window.End,
			Slots: make([]SlotJSON, 0, len(row.Slots)),
		}
		for _, s := range row.Slots {
			rj.Slots = append(rj.Slots, slotJSON(s))
		}
		out.Rows = append(out.Rows, rj)
	}
	return out
}

func slotJSON(s timeline.Slot) SlotJSON {
	out := SlotJSON{
		Kind:      s.Kind.String(),
		Global:    s.Global,
		Offset:    s.Offset,
		First:     s.First,
		Elongated: s.Elongated,
		OffShift:  s.OffShift,
		Clipped:   s.Clipped,
		Overlaps:  s.Overlaps,
		Truncated: s.Truncated,
	}
	if s.Ticket != nil {
		out.TicketID = s.Ticket.ID
		out.Ticket = s.Ticket.Name
		out.Type = string(s.Ticket.Kind)
		out.ColorKey = s.Ticket.ColorKey
	}
	if s.Special != nil {
		out.SpecialID = s.Special.ID
	}
	return out
}
