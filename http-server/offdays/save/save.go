package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"shift-tracker/http-server/respond"
	"shift-tracker/internal/middleware/auth"
	"shift-tracker/internal/schedule"
)

type OffDaySetter interface {
	SetOffDay(ctx context.Context, caps schedule.Capabilities, user, date string, isOff bool, reason string) error
}

type Request struct {
	UserName string `json:"user_name"`
	Date     string `json:"date"`
	IsOff    bool   `json:"is_off"`
	Reason   string `json:"reason"`
}

func SetOffDay(log *slog.Logger, setter OffDaySetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.offdays.SetOffDay"

		var req Request
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			respond.BadRequest(w, r, "invalid JSON body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err := setter.SetOffDay(ctx, auth.FromContext(r.Context()).Capabilities, req.UserName, req.Date, req.IsOff, req.Reason)
		if err != nil {
			respond.Error(w, r, log, op, err)
			return
		}

		log.Info("off day changed", slog.String("op", op), slog.String("user", req.UserName),
			slog.String("date", req.Date), slog.Bool("is_off", req.IsOff))
		render.JSON(w, r, req)
	}
}
