package update

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shift-tracker/internal/middleware/auth"
	"shift-tracker/internal/schedule"
)

type MockEstimateUpdater struct {
	mock.Mock
}

func (m *MockEstimateUpdater) UpdateEstimate(ctx context.Context, caps schedule.Capabilities, id string, value float64) (schedule.Ticket, error) {
	args := m.Called(ctx, caps, id, value)
	return args.Get(0).(schedule.Ticket), args.Error(1)
}

func router(updater EstimateUpdater) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.Identity{Capabilities: schedule.CapabilitiesFor(schedule.RoleManager)}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	})
	r.Put("/api/tickets/{id}/estimate", UpdateEstimate(slog.New(slog.NewTextHandler(io.Discard, nil)), updater))
	return r
}

func put(h http.Handler, id, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/api/tickets/"+id+"/estimate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestUpdateEstimate(t *testing.T) {
	updater := new(MockEstimateUpdater)
	updater.On("UpdateEstimate", mock.Anything, mock.Anything, "4", 2.3).
		Return(schedule.Ticket{ID: "4", Estimate: 2.5}, nil)
	updater.On("UpdateEstimate", mock.Anything, mock.Anything, "missing", 1.0).
		Return(schedule.Ticket{}, schedule.ErrTicketNotFound)

	h := router(updater)

	rr := put(h, "4", `{"estimate":2.3}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"estimate":2.5`)

	assert.Equal(t, http.StatusNotFound, put(h, "missing", `{"estimate":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, put(h, "4", `{}`).Code)

	updater.AssertExpectations(t)
}
