package feed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shift-tracker/internal/realtime"
	"shift-tracker/internal/schedule"
)

func dial(t *testing.T, srv *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(url, header)
}

func TestFeed_StreamsHubEvents(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := realtime.NewHub(log)
	srv := httptest.NewServer(Feed(log, hub, nil))
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	tk := schedule.Ticket{ID: "5", Name: "X", Estimate: 1, Kind: schedule.KindNormal, Placement: schedule.PlacedAt("Ade", "2024-01-02", 16)}
	require.NoError(t, hub.Publish(context.Background(), realtime.UpdateEvent(tk)))
	require.NoError(t, hub.Publish(context.Background(), realtime.DeleteEvent("6")))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var ev realtime.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, realtime.EventUpdate, ev.Type)
	require.NotNil(t, ev.Ticket)
	assert.Equal(t, tk.Placement, ev.Ticket.Placement)

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, realtime.EventDelete, ev.Type)
	assert.Equal(t, "6", ev.ID)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestFeed_RejectsUnknownOrigin(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := realtime.NewHub(log)
	srv := httptest.NewServer(Feed(log, hub, []string{"http://board.example"}))
	defer srv.Close()

	_, resp, err := dial(t, srv, "http://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial(t, srv, "http://board.example")
	require.NoError(t, err)
	conn.Close()
}
