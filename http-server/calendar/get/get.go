package get

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"shift-tracker/http-server/respond"
	"shift-tracker/internal/schedule"
)

type WeekResponse struct {
	Date string   `json:"date"`
	Days []string `json:"days"`
}

// GetWeek lists Monday..Friday of the week of date.
func GetWeek(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.calendar.GetWeek"

		date := r.URL.Query().Get("date")
		days, err := schedule.BusinessWeek(date)
		if err != nil {
			respond.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, WeekResponse{Date: date, Days: days})
	}
}

type StepResponse struct {
	Date string `json:"date"`
}

// GetStep moves date one working day forward (dir=1) or back (dir=-1).
func GetStep(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.calendar.GetStep"

		q := r.URL.Query()
		dir, err := strconv.Atoi(q.Get("dir"))
		if err != nil || (dir != 1 && dir != -1) {
			respond.BadRequest(w, r, "dir must be 1 or -1")
			return
		}

		next, err := schedule.StepWorkday(q.Get("date"), dir)
		if err != nil {
			respond.Error(w, r, log, op, err)
			return
		}
		render.JSON(w, r, StepResponse{Date: next})
	}
}
