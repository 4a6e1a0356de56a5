// Package realtime carries ticket change events between the store and every
// board or browser watching it.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"shift-tracker/internal/schedule"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

type Event struct {
	Type   EventType        `json:"type"`
	Ticket *schedule.Ticket `json:"ticket,omitempty"`
	ID     string           `json:"id"`
}

func InsertEvent(t schedule.Ticket) Event {
	return Event{Type: EventInsert, Ticket: &t, ID: t.ID}
}

func UpdateEvent(t schedule.Ticket) Event {
	return Event{Type: EventUpdate, Ticket: &t, ID: t.ID}
}

func DeleteEvent(id string) Event {
	return Event{Type: EventDelete, ID: id}
}

// Handlers receives the change feed. Nil callbacks are skipped.
type Handlers struct {
	OnInsert func(schedule.Ticket)
	OnUpdate func(schedule.Ticket)
	OnDelete func(id string)
}

func (h Handlers) dispatch(ev Event) {
	switch ev.Type {
	case EventInsert:
		if h.OnInsert != nil && ev.Ticket != nil {
			h.OnInsert(*ev.Ticket)
		}
	case EventUpdate:
		if h.OnUpdate != nil && ev.Ticket != nil {
			h.OnUpdate(*ev.Ticket)
		}
	case EventDelete:
		if h.OnDelete != nil {
			h.OnDelete(ev.ID)
		}
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Hub fans events out to in-process subscribers. Delivery is serialized, so
// every subscriber sees one ordered stream.
type Hub struct {
	log *slog.Logger

	dispatchMu sync.Mutex

	mu   sync.RWMutex
	subs map[uint64]Handlers
	next uint64
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:  log,
		subs: make(map[uint64]Handlers),
	}
}

// Subscribe registers h and returns the matching unsubscribe func. Handlers
// must not publish back into the hub.
func (h *Hub) Subscribe(hs Handlers) (unsubscribe func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = hs
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) Publish(_ context.Context, ev Event) error {
	h.dispatchMu.Lock()
	defer h.dispatchMu.Unlock()

	h.mu.RLock()
	subs := make([]Handlers, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		s.dispatch(ev)
	}

	h.log.Debug("ticket event dispatched",
		slog.String("type", string(ev.Type)),
		slog.String("id", ev.ID),
		slog.Int("subscribers", len(subs)),
	)
	return nil
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
