// Package offday tracks which users are off on which dates.
package offday

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"shift-tracker/internal/schedule"
	"shift-tracker/internal/storage"
)

const (
	DefaultReason = "Off"
	// DefaultMaxAge is how long a loaded date is served before Ensure
	// reads it from the store again.
	DefaultMaxAge = 5 * time.Second
)

type Store interface {
	ListOffDays(ctx context.Context, date string) ([]storage.OffDay, error)
	UpsertOffDay(ctx context.Context, user, date, reason string) (storage.OffDay, error)
	DeleteOffDay(ctx context.Context, user, date string) error
}

type key struct {
	user string
	date string
}

// Tracker keeps an optimistic copy of the off-day records of every date it
// has loaded. Off days have no change feed, so a date older than maxAge is
// read again on the next Ensure.
type Tracker struct {
	log    *slog.Logger
	store  Store
	maxAge time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	records map[key]storage.OffDay
	loaded  map[string]time.Time
	// pending holds entries with a write in flight; reloads keep them.
	pending map[key]int
}

func New(log *slog.Logger, store Store) *Tracker {
	return &Tracker{
		log:     log.With(slog.String("component", "offday")),
		store:   store,
		maxAge:  DefaultMaxAge,
		now:     time.Now,
		records: make(map[key]storage.OffDay),
		loaded:  make(map[string]time.Time),
		pending: make(map[key]int),
	}
}

// WithMaxAge sets how long a loaded date is trusted. Zero reloads on every
// Ensure.
func (t *Tracker) WithMaxAge(d time.Duration) *Tracker {
	t.mu.Lock()
	t.maxAge = max(d, 0)
	t.mu.Unlock()
	return t
}

func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
	return t
}

// Load replaces the records of date with the store's.
func (t *Tracker) Load(ctx context.Context, date string) error {
	const op = "offday.Load"

	list, err := t.store.ListOffDays(ctx, date)
	if err != nil {
		return fmt.Errorf("%s: list off days for %s: %w", op, date, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for k := range t.records {
		if k.date == date && t.pending[k] == 0 {
			delete(t.records, k)
		}
	}
	for _, od := range list {
		k := key{od.UserName, od.OffDate}
		if t.pending[k] == 0 {
			t.records[k] = od
		}
	}
	t.loaded[date] = t.now()
	return nil
}

// Ensure loads date unless it was loaded less than maxAge ago.
func (t *Tracker) Ensure(ctx context.Context, date string) error {
	t.mu.RLock()
	at, done := t.loaded[date]
	fresh := done && t.now().Sub(at) < t.maxAge
	t.mu.RUnlock()
	if fresh {
		return nil
	}
	return t.Load(ctx, date)
}

func (t *Tracker) IsOff(user, date string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.records[key{user, date}]
	return ok
}

// Records lists date's off days ordered by user.
func (t *Tracker) Records(date string) []storage.OffDay {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []storage.OffDay
	for k, od := range t.records {
		if k.date == date {
			out = append(out, od)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserName < out[j].UserName })
	return out
}

// SetOffDay flips user's off state for date locally, then persists it. The
// local entry is restored when the store rejects the write.
func (t *Tracker) SetOffDay(ctx context.Context, caps schedule.Capabilities, user, date string, isOff bool, reason string) error {
	const op = "offday.SetOffDay"

	if !caps.CanManageRoster {
		return fmt.Errorf("%s: %w", op, schedule.ErrForbidden)
	}
	if user == "" {
		return fmt.Errorf("%s: user: %w", op, schedule.ErrMissingField)
	}
	if _, err := schedule.ParseDate(date); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if reason == "" {
		reason = DefaultReason
	}

	k := key{user, date}

	t.mu.Lock()
	t.pending[k]++
	prev, had := t.records[k]
	if isOff {
		t.records[k] = storage.OffDay{ID: prev.ID, UserName: user, OffDate: date, Reason: reason}
	} else {
		delete(t.records, k)
	}
	t.mu.Unlock()

	var (
		stored storage.OffDay
		err    error
	)
	if isOff {
		stored, err = t.store.UpsertOffDay(ctx, user, date, reason)
	} else {
		err = t.store.DeleteOffDay(ctx, user, date)
	}

	t.mu.Lock()
	t.pending[k]--
	if t.pending[k] <= 0 {
		delete(t.pending, k)
	}
	if err == nil {
		if isOff {
			t.records[k] = stored
		}
		t.mu.Unlock()
		return nil
	}
	if had {
		t.records[k] = prev
	} else {
		delete(t.records, k)
	}
	t.mu.Unlock()

	t.log.Error("off day rolled back",
		slog.String("op", op),
		slog.String("user", user),
		slog.String("date", date),
		slog.Bool("is_off", isOff),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%s: %w: %w", op, schedule.ErrPersist, err)
}
