package storage

import (
	"context"
	"errors"

	"shift-tracker/internal/realtime"
	"shift-tracker/internal/schedule"
)

var ErrOffDayNotFound = errors.New("off day not found")

// TicketStore is the tickets collection: CRUD plus the change feed.
type TicketStore interface {
	ListTickets(ctx context.Context, date string) ([]schedule.Ticket, error)
	InsertTicket(ctx context.Context, t schedule.Ticket) (schedule.Ticket, error)
	UpdateTicket(ctx context.Context, id string, p schedule.Patch) (schedule.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
	Subscribe(h realtime.Handlers) (unsubscribe func())
}

type OffDayStore interface {
	ListOffDays(ctx context.Context, date string) ([]OffDay, error)
	UpsertOffDay(ctx context.Context, user, date, reason string) (OffDay, error)
	DeleteOffDay(ctx context.Context, user, date string) error
}

// Feed is where stores publish their writes and where readers subscribe.
// With Redis the two sides differ: writes go to the bus, reads come from the
// local hub the bus replays into.
type Feed struct {
	Publisher  realtime.Publisher
	Subscriber interface {
		Subscribe(h realtime.Handlers) (unsubscribe func())
	}
}

// LocalFeed publishes straight into hub.
func LocalFeed(hub *realtime.Hub) Feed {
	return Feed{Publisher: hub, Subscriber: hub}
}
