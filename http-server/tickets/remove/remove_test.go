package remove

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shift-tracker/internal/middleware/auth"
	"shift-tracker/internal/schedule"
)

type MockTicketDeleter struct {
	mock.Mock
}

func (m *MockTicketDeleter) DeleteTicket(ctx context.Context, caps schedule.Capabilities, id string) error {
	args := m.Called(ctx, caps, id)
	return args.Error(0)
}

func TestDeleteTicket(t *testing.T) {
	manager := schedule.CapabilitiesFor(schedule.RoleManager)

	deleter := new(MockTicketDeleter)
	deleter.On("DeleteTicket", mock.Anything, manager, "4").Return(nil)
	deleter.On("DeleteTicket", mock.Anything, manager, "missing").Return(schedule.ErrTicketNotFound)
	deleter.On("DeleteTicket", mock.Anything, manager, "busy").Return(schedule.ErrPersist)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{Capabilities: manager})))
		})
	})
	r.Delete("/api/tickets/{id}", DeleteTicket(slog.New(slog.NewTextHandler(io.Discard, nil)), deleter))

	tests := []struct {
		id   string
		code int
	}{
		{"4", http.StatusNoContent},
		{"missing", http.StatusNotFound},
		{"busy", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/tickets/"+tt.id, nil))
			assert.Equal(t, tt.code, rr.Code)
		})
	}

	deleter.AssertExpectations(t)
}
