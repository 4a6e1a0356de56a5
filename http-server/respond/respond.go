// Package respond maps service errors onto HTTP statuses.
package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"shift-tracker/internal/schedule"
	"shift-tracker/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// Status picks the HTTP status for err.
func Status(err error) int {
	switch {
	case errors.Is(err, schedule.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, schedule.ErrTicketNotFound),
		errors.Is(err, schedule.ErrUnknownTeam):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrNoOverflow),
		errors.Is(err, schedule.ErrClipped),
		errors.Is(err, schedule.ErrDuplicateSpecial):
		return http.StatusConflict
	case errors.Is(err, schedule.ErrInvalidEstimate),
		errors.Is(err, schedule.ErrMissingField),
		errors.Is(err, schedule.ErrInvalidDate),
		errors.Is(err, schedule.ErrInvalidIndex),
		errors.Is(err, schedule.ErrInvalidKind),
		errors.Is(err, service.ErrUnknownTimezone):
		return http.StatusBadRequest
	case errors.Is(err, schedule.ErrPersist):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Error logs err and writes it with the mapped status. Internal errors are
// not echoed to the client.
func Error(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error) {
	status := Status(err)

	l := log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("error", err.Error()),
	)
	msg := err.Error()
	switch {
	case status >= http.StatusInternalServerError:
		l.Error("request failed", slog.Int("status", status))
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	default:
		l.Info("request rejected", slog.Int("status", status))
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

// BadRequest answers malformed input that never reached a service.
func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: msg})
}
