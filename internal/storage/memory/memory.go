// Package memory is an in-process ticket and off-day store used when no
// database is configured.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"shift-tracker/internal/realtime"
	"shift-tracker/internal/schedule"
	"shift-tracker/internal/storage"
)

type Storage struct {
	log  *slog.Logger
	feed storage.Feed

	mu      sync.Mutex
	seq     int64
	order   []string
	tickets map[string]schedule.Ticket
	offSeq  int64
	offDays map[string]storage.OffDay
}

func New(log *slog.Logger, feed storage.Feed) *Storage {
	return &Storage{
		log:     log,
		feed:    feed,
		tickets: make(map[string]schedule.Ticket),
		offDays: make(map[string]storage.OffDay),
	}
}

func (s *Storage) Subscribe(h realtime.Handlers) func() {
	return s.feed.Subscriber.Subscribe(h)
}

func (s *Storage) ListTickets(_ context.Context, date string) ([]schedule.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []schedule.Ticket
	for _, id := range s.order {
		t := s.tickets[id]
		if !t.Placement.IsPlaced() || t.Placement.Date == date {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Storage) InsertTicket(ctx context.Context, t schedule.Ticket) (schedule.Ticket, error) {
	s.mu.Lock()
	s.seq++
	t.ID = strconv.FormatInt(s.seq, 10)
	s.tickets[t.ID] = t
	s.order = append(s.order, t.ID)
	s.mu.Unlock()

	s.publish(ctx, realtime.InsertEvent(t))
	return t, nil
}

func (s *Storage) UpdateTicket(ctx context.Context, id string, p schedule.Patch) (schedule.Ticket, error) {
	const op = "storage.memory.UpdateTicket"

	s.mu.Lock()
	t, ok := s.tickets[id]
	if !ok {
		s.mu.Unlock()
		return schedule.Ticket{}, fmt.Errorf("%s: id=%s: %w", op, id, schedule.ErrTicketNotFound)
	}
	t = p.Apply(t)
	s.tickets[id] = t
	s.mu.Unlock()

	s.publish(ctx, realtime.UpdateEvent(t))
	return t, nil
}

func (s *Storage) DeleteTicket(ctx context.Context, id string) error {
	const op = "storage.memory.DeleteTicket"

	s.mu.Lock()
	if _, ok := s.tickets[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s: id=%s: %w", op, id, schedule.ErrTicketNotFound)
	}
	delete(s.tickets, id)
	order := s.order[:0:0]
	for _, cur := range s.order {
		if cur != id {
			order = append(order, cur)
		}
	}
	s.order = order
	s.mu.Unlock()

	s.publish(ctx, realtime.DeleteEvent(id))
	return nil
}

func (s *Storage) ListOffDays(_ context.Context, date string) ([]storage.OffDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []storage.OffDay
	for _, od := range s.offDays {
		if od.OffDate == date {
			out = append(out, od)
		}
	}
	return out, nil
}

func (s *Storage) UpsertOffDay(_ context.Context, user, date, reason string) (storage.OffDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := user + "|" + date
	od, ok := s.offDays[key]
	if !ok {
		s.offSeq++
		od = storage.OffDay{ID: s.offSeq, UserName: user, OffDate: date}
	}
	od.Reason = reason
	s.offDays[key] = od
	return od, nil
}

func (s *Storage) DeleteOffDay(_ context.Context, user, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.offDays, user+"|"+date)
	return nil
}

func (s *Storage) publish(ctx context.Context, ev realtime.Event) {
	if s.feed.Publisher == nil {
		return
	}
	if err := s.feed.Publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("failed to publish ticket event", slog.String("id", ev.ID), slog.String("error", err.Error()))
	}
}
