// Package board keeps the canonical in-memory ticket list of one client and
// reconciles local optimistic writes with the realtime change feed.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"shift-tracker/internal/ledger"
	"shift-tracker/internal/realtime"
	"shift-tracker/internal/schedule"
)

// Store is the ticket collection the board reads from and writes to.
type Store interface {
	ListTickets(ctx context.Context, date string) ([]schedule.Ticket, error)
	InsertTicket(ctx context.Context, t schedule.Ticket) (schedule.Ticket, error)
	UpdateTicket(ctx context.Context, id string, p schedule.Patch) (schedule.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
	Subscribe(h realtime.Handlers) (unsubscribe func())
}

// Change is one optimistic field update.
type Change struct {
	ID    string
	Patch schedule.Patch
}

// Board serializes every transition of the ticket list through one mutex and
// publishes a fresh Snapshot after each, so readers never see a half-applied
// batch.
type Board struct {
	log    *slog.Logger
	store  Store
	ledger *ledger.Ledger

	mu          sync.Mutex
	loaded      map[string]bool
	closed      bool
	unsubscribe func()

	snap atomic.Pointer[Snapshot]
}

func New(log *slog.Logger, store Store, l *ledger.Ledger) *Board {
	b := &Board{
		log:    log.With(slog.String("component", "board")),
		store:  store,
		ledger: l,
		loaded: make(map[string]bool),
	}
	b.snap.Store(newSnapshot(nil))
	return b
}

func (b *Board) Store() Store {
	return b.store
}

func (b *Board) Snapshot() *Snapshot {
	return b.snap.Load()
}

// Start subscribes to the store's change feed.
func (b *Board) Start() {
	unsubscribe := b.store.Subscribe(realtime.Handlers{
		OnInsert: b.HandleInsert,
		OnUpdate: b.HandleUpdate,
		OnDelete: b.HandleDelete,
	})

	b.mu.Lock()
	b.unsubscribe = unsubscribe
	b.mu.Unlock()
}

// Close detaches from the feed; events arriving afterwards are ignored.
func (b *Board) Close() {
	b.mu.Lock()
	b.closed = true
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Ensure loads the tickets for date (and the lobby) once.
func (b *Board) Ensure(ctx context.Context, date string) error {
	b.mu.Lock()
	done := b.loaded[date]
	b.mu.Unlock()
	if done {
		return nil
	}
	return b.Reload(ctx, date)
}

// Reload fetches date's tickets and merges them by id. Tickets with a local
// write in flight keep their optimistic value.
func (b *Board) Reload(ctx context.Context, date string) error {
	const op = "board.Reload"

	fetched, err := b.store.ListTickets(ctx, date)
	if err != nil {
		return fmt.Errorf("%s: list tickets for %s: %w", op, date, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tickets := b.snap.Load().All()
	for _, t := range fetched {
		if b.ledger.IsPending(t.ID) {
			continue
		}
		tickets = upsert(tickets, t)
	}
	b.loaded[date] = true
	b.snap.Store(newSnapshot(tickets))

	b.log.Debug("tickets loaded", slog.String("date", date), slog.Int("fetched", len(fetched)), slog.Int("total", len(tickets)))
	return nil
}

// ApplyLocal applies one optimistic batch and suppresses the echoes of the
// touched ids. Unknown ids are skipped.
func (b *Board) ApplyLocal(changes ...Change) {
	if len(changes) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	cur := b.snap.Load()
	tickets := make([]schedule.Ticket, len(cur.All()))
	copy(tickets, cur.All())

	for _, c := range changes {
		i, ok := cur.index[c.ID]
		if !ok {
			continue
		}
		tickets[i] = c.Patch.Apply(tickets[i])
		b.ledger.MarkPending(c.ID)
	}
	b.snap.Store(newSnapshot(tickets))
}

// AddLocal shows a ticket that has not reached the store yet.
func (b *Board) AddLocal(t schedule.Ticket) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.snap.Store(newSnapshot(upsert(b.snap.Load().All(), t)))
}

// ConfirmInsert swaps the placeholder for the stored ticket. If the realtime
// echo already delivered it, the two collapse into one entry.
func (b *Board) ConfirmInsert(tempID string, stored schedule.Ticket) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tickets := remove(b.snap.Load().All(), map[string]bool{tempID: true})
	b.ledger.MarkPending(stored.ID)
	b.snap.Store(newSnapshot(upsert(tickets, stored)))
}

// RemoveLocal drops tickets optimistically.
func (b *Board) RemoveLocal(ids ...string) {
	if len(ids) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	b.ledger.MarkPending(ids...)
	b.snap.Store(newSnapshot(remove(b.snap.Load().All(), set)))
}

// PutLocal puts t back as-is, e.g. after a failed delete.
func (b *Board) PutLocal(t schedule.Ticket) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ledger.MarkPending(t.ID)
	b.snap.Store(newSnapshot(upsert(b.snap.Load().All(), t)))
}

func (b *Board) HandleInsert(t schedule.Ticket) {
	b.remote("insert", t.ID, func(ts []schedule.Ticket) []schedule.Ticket {
		return upsert(ts, t)
	})
}

func (b *Board) HandleUpdate(t schedule.Ticket) {
	b.remote("update", t.ID, func(ts []schedule.Ticket) []schedule.Ticket {
		return upsert(ts, t)
	})
}

func (b *Board) HandleDelete(id string) {
	b.remote("delete", id, func(ts []schedule.Ticket) []schedule.Ticket {
		return remove(ts, map[string]bool{id: true})
	})
}

func (b *Board) remote(kind, id string, reduce func([]schedule.Ticket) []schedule.Ticket) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if b.ledger.IsPending(id) {
		b.log.Debug("suppressed echo", slog.String("event", kind), slog.String("id", id))
		return
	}
	b.snap.Store(newSnapshot(reduce(b.snap.Load().All())))
}
