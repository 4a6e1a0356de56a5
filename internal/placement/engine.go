// Package placement turns schedule gestures into optimistic ticket updates on
// a board, persists them and rolls them back when the store refuses.
package placement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"shift-tracker/internal/board"
	"shift-tracker/internal/schedule"
	"shift-tracker/internal/timeline"
)

type Retry struct {
	Attempts int
	Backoff  time.Duration
}

func DefaultRetry() Retry {
	return Retry{Attempts: 3, Backoff: 200 * time.Millisecond}
}

// Result describes what a gesture changed on the board.
type Result struct {
	Ticket  schedule.Ticket `json:"ticket"`
	Touched []string        `json:"touched"`
	// Spaced lists the normal tickets a special was dropped into.
	Spaced []string `json:"spaced,omitempty"`
}

type Engine struct {
	log    *slog.Logger
	board  *board.Board
	store  board.Store
	roster schedule.Roster
	retry  Retry

	// gesture serializes the optimistic phase of every operation.
	gesture       sync.Mutex
	consolidating atomic.Bool
}

func New(log *slog.Logger, b *board.Board, roster schedule.Roster, retry Retry) *Engine {
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}
	return &Engine{
		log:    log.With(slog.String("component", "placement")),
		board:  b,
		store:  b.Store(),
		roster: roster,
		retry:  retry,
	}
}

// step is one optimistic change and the ticket as it was before it.
type step struct {
	change board.Change
	before schedule.Ticket
}

func (s step) rollback() board.Change {
	return board.Change{ID: s.change.ID, Patch: s.change.Patch.Revert(s.before)}
}

func changes(steps []step) []board.Change {
	out := make([]board.Change, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.change)
	}
	return out
}

func touched(steps []step) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.change.ID)
	}
	return out
}

// persist writes steps in order. A failed step is rolled back on the board;
// steps that were stored stay stored.
func (e *Engine) persist(ctx context.Context, op string, steps []step) error {
	var errs []error
	for _, s := range steps {
		if _, err := e.store.UpdateTicket(ctx, s.change.ID, s.change.Patch); err != nil {
			e.board.ApplyLocal(s.rollback())
			e.log.Error("ticket update rolled back",
				slog.String("op", op),
				slog.String("id", s.change.ID),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("ticket %s: %w", s.change.ID, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w: %w", op, schedule.ErrPersist, errors.Join(errs...))
	}
	return nil
}

// persistAll writes steps in order and undoes every one of them, locally and
// in the store, as soon as one fails.
func (e *Engine) persistAll(ctx context.Context, op string, steps []step) error {
	for i, s := range steps {
		if _, err := e.store.UpdateTicket(ctx, s.change.ID, s.change.Patch); err != nil {
			undo := make([]board.Change, 0, len(steps))
			for _, r := range steps {
				undo = append(undo, r.rollback())
			}
			e.board.ApplyLocal(undo...)

			for _, done := range steps[:i] {
				r := done.rollback()
				if _, rerr := e.store.UpdateTicket(ctx, r.ID, r.Patch); rerr != nil {
					e.log.Error("failed to revert stored ticket",
						slog.String("op", op),
						slog.String("id", r.ID),
						slog.String("error", rerr.Error()),
					)
				}
			}

			e.log.Error("batch rolled back",
				slog.String("op", op),
				slog.String("id", s.change.ID),
				slog.Int("tickets", len(steps)),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("%s: %w: ticket %s: %w", op, schedule.ErrPersist, s.change.ID, err)
		}
	}
	return nil
}

// withRetry runs fn up to Attempts times, waiting attempt*Backoff between tries.
func (e *Engine) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= e.retry.Attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == e.retry.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(time.Duration(attempt) * e.retry.Backoff):
		}
	}
	return err
}

// insert shows t under a placeholder id, stores it and swaps the placeholder
// for the stored row.
func (e *Engine) insert(ctx context.Context, op string, t schedule.Ticket) (schedule.Ticket, error) {
	tempID := "temp-" + uuid.NewString()
	t.ID = tempID
	e.board.AddLocal(t)

	t.ID = ""
	stored, err := e.store.InsertTicket(ctx, t)
	if err != nil {
		e.board.RemoveLocal(tempID)
		e.log.Error("ticket insert rolled back",
			slog.String("op", op),
			slog.String("ticket", t.Name),
			slog.String("error", err.Error()),
		)
		return schedule.Ticket{}, fmt.Errorf("%s: %w: %w", op, schedule.ErrPersist, err)
	}
	e.board.ConfirmInsert(tempID, stored)
	return stored, nil
}

func (e *Engine) ticket(id string) (schedule.Ticket, error) {
	if id == "" {
		return schedule.Ticket{}, fmt.Errorf("ticket id: %w", schedule.ErrMissingField)
	}
	t, ok := e.board.Snapshot().Get(id)
	if !ok {
		return schedule.Ticket{}, fmt.Errorf("id=%s: %w", id, schedule.ErrTicketNotFound)
	}
	return t, nil
}

// detachSpecials unplaces every special that overlaps t where it sits now.
func detachSpecials(t schedule.Ticket, tickets []schedule.Ticket) []step {
	var steps []step
	for _, sp := range timeline.IntersectingSpecials(t, tickets) {
		steps = append(steps, step{
			change: board.Change{ID: sp.ID, Patch: schedule.UnplacePatch()},
			before: sp,
		})
	}
	return steps
}

func sortByStart(ts []schedule.Ticket) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Placement.Start != ts[j].Placement.Start {
			return ts[i].Placement.Start < ts[j].Placement.Start
		}
		return ts[i].ID < ts[j].ID
	})
}

func requireEdit(op string, caps schedule.Capabilities) error {
	if !caps.CanEditSchedule {
		return fmt.Errorf("%s: %w", op, schedule.ErrForbidden)
	}
	return nil
}
