package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"shift-tracker/http-server/respond"
	"shift-tracker/internal/schedule"
	"shift-tracker/internal/storage"
)

type OffDaysProvider interface {
	Ensure(ctx context.Context, date string) error
	Records(date string) []storage.OffDay
}

func GetOffDays(log *slog.Logger, offDays OffDaysProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.offdays.GetOffDays"

		date := r.URL.Query().Get("date")
		if _, err := schedule.ParseDate(date); err != nil {
			respond.Error(w, r, log, op, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := offDays.Ensure(ctx, date); err != nil {
			respond.Error(w, r, log, op, err)
			return
		}

		records := offDays.Records(date)
		if records == nil {
			records = []storage.OffDay{}
		}
		render.JSON(w, r, records)
	}
}
