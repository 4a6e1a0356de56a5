package realtime

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shift-tracker/internal/schedule"
)

type recorder struct {
	events []string
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnInsert: func(t schedule.Ticket) { r.events = append(r.events, "insert:"+t.ID) },
		OnUpdate: func(t schedule.Ticket) { r.events = append(r.events, "update:"+t.ID) },
		OnDelete: func(id string) { r.events = append(r.events, "delete:"+id) },
	}
}

func TestHub_DeliversInOrderUntilUnsubscribed(t *testing.T) {
	hub := NewHub(slog.Default())
	rec := &recorder{}
	unsubscribe := hub.Subscribe(rec.handlers())
	ctx := context.Background()

	require.NoError(t, hub.Publish(ctx, InsertEvent(schedule.Ticket{ID: "1"})))
	require.NoError(t, hub.Publish(ctx, UpdateEvent(schedule.Ticket{ID: "1"})))
	require.NoError(t, hub.Publish(ctx, DeleteEvent("1")))

	unsubscribe()
	unsubscribe()
	require.NoError(t, hub.Publish(ctx, DeleteEvent("2")))

	assert.Equal(t, []string{"insert:1", "update:1", "delete:1"}, rec.events)
	assert.Equal(t, 0, hub.Subscribers())
}

func TestHub_NilCallbacksAreSkipped(t *testing.T) {
	hub := NewHub(nil)
	deleted := ""
	hub.Subscribe(Handlers{OnDelete: func(id string) { deleted = id }})

	assert.NotPanics(t, func() {
		_ = hub.Publish(context.Background(), InsertEvent(schedule.Ticket{ID: "1"}))
		_ = hub.Publish(context.Background(), DeleteEvent("9"))
	})
	assert.Equal(t, "9", deleted)
}
