package placement

import (
	"context"
	"fmt"
	"log/slog"

	"shift-tracker/internal/board"
	"shift-tracker/internal/schedule"
)

// Drop is a ticket released over a timeline track. Index is in the
// coordinates of View.
type Drop struct {
	TicketID string
	User     string
	View     schedule.View
	Index    int
	// Elongated is set when the ticket was dragged out of a spot where
	// specials had spaced it.
	Elongated bool
}

func (d Drop) validate() (start int, err error) {
	if d.User == "" {
		return 0, fmt.Errorf("user: %w", schedule.ErrMissingField)
	}
	if _, err := schedule.ParseDate(d.View.Date); err != nil {
		return 0, err
	}
	if d.Index < 0 || d.Index >= d.View.BlockCount {
		return 0, fmt.Errorf("%w: %d", schedule.ErrInvalidIndex, d.Index)
	}
	return d.View.Global(d.Index), nil
}

// Assign places a ticket on user's timeline and packs every later normal
// ticket of that timeline right after it. Specials are routed to
// InsertSpecial.
func (e *Engine) Assign(ctx context.Context, caps schedule.Capabilities, d Drop) (Result, error) {
	const op = "placement.Assign"

	if err := requireEdit(op, caps); err != nil {
		return Result{}, err
	}
	start, err := d.validate()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := e.board.Ensure(ctx, d.View.Date); err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	e.gesture.Lock()
	snap := e.board.Snapshot()
	t, err := e.ticket(d.TicketID)
	if err != nil {
		e.gesture.Unlock()
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if t.Kind.IsSpecial() {
		e.gesture.Unlock()
		return e.InsertSpecial(ctx, caps, SpecialDrop{
			TicketID: t.ID,
			Kind:     t.Kind,
			User:     d.User,
			View:     d.View,
			Index:    d.Index,
		})
	}

	var steps []step
	if d.Elongated {
		steps = detachSpecials(t, snap.All())
	}

	var others []schedule.Ticket
	for _, o := range snap.ForUser(d.User, d.View.Date) {
		if o.ID != t.ID && !o.Kind.IsSpecial() {
			others = append(others, o)
		}
	}
	sortByStart(others)

	// A drop into the middle of another ticket lands right after it.
	for _, o := range others {
		if span := o.Span(); span.Start < start && span.Contains(start) {
			start = span.End
			break
		}
	}

	moved := schedule.PlacedAt(d.User, d.View.Date, start)
	steps = append(steps, step{change: board.Change{ID: t.ID, Patch: schedule.MovePatch(moved)}, before: t})

	next := start + t.Blocks()
	for _, o := range others {
		if o.Placement.Start < start {
			continue
		}
		if o.Placement.Start != next {
			steps = append(steps, step{
				change: board.Change{ID: o.ID, Patch: schedule.MovePatch(o.Placement.WithStart(next))},
				before: o,
			})
		}
		next += o.Blocks()
	}

	e.board.ApplyLocal(changes(steps)...)
	e.gesture.Unlock()

	e.log.Debug("ticket assigned",
		slog.String("id", t.ID),
		slog.String("user", d.User),
		slog.String("date", d.View.Date),
		slog.Int("start", start),
		slog.Int("changes", len(steps)),
	)

	res := Result{Ticket: schedule.MovePatch(moved).Apply(t), Touched: touched(steps)}
	return res, e.persist(ctx, op, steps)
}

// DropToLobby unassigns a ticket. Specials it was spacing are unassigned
// first when it was elongated.
func (e *Engine) DropToLobby(ctx context.Context, caps schedule.Capabilities, id string, elongated bool) (Result, error) {
	const op = "placement.DropToLobby"

	if err := requireEdit(op, caps); err != nil {
		return Result{}, err
	}

	e.gesture.Lock()
	t, err := e.ticket(id)
	if err != nil {
		e.gesture.Unlock()
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	var steps []step
	if elongated {
		steps = detachSpecials(t, e.board.Snapshot().All())
	}
	steps = append(steps, step{change: board.Change{ID: t.ID, Patch: schedule.UnplacePatch()}, before: t})

	e.board.ApplyLocal(changes(steps)...)
	e.gesture.Unlock()

	res := Result{Ticket: schedule.UnplacePatch().Apply(t), Touched: touched(steps)}
	return res, e.persist(ctx, op, steps)
}
