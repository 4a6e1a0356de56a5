package placement

import (
	"context"
	"fmt"

	"shift-tracker/internal/board"
	"shift-tracker/internal/schedule"
)

// SpecialDrop places a break, meeting or training. Without TicketID a new
// special of Kind is created.
type SpecialDrop struct {
	TicketID string
	Kind     schedule.Kind
	Estimate float64
	User     string
	View     schedule.View
	Index    int
}

// InsertSpecial never shifts the normal tickets under the special; the
// timeline opens space for it instead. Result.Spaced names them.
func (e *Engine) InsertSpecial(ctx context.Context, caps schedule.Capabilities, d SpecialDrop) (Result, error) {
	const op = "placement.InsertSpecial"

	if err := requireEdit(op, caps); err != nil {
		return Result{}, err
	}
	start, err := Drop{User: d.User, View: d.View, Index: d.Index}.validate()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := e.board.Ensure(ctx, d.View.Date); err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	e.gesture.Lock()

	var t schedule.Ticket
	if d.TicketID != "" {
		if t, err = e.ticket(d.TicketID); err != nil {
			e.gesture.Unlock()
			return Result{}, fmt.Errorf("%s: %w", op, err)
		}
		if !t.Kind.IsSpecial() {
			e.gesture.Unlock()
			return Result{}, fmt.Errorf("%s: %w: %s is not a special ticket", op, schedule.ErrInvalidKind, t.ID)
		}
	} else {
		if t, err = newSpecial(d.Kind, d.Estimate); err != nil {
			e.gesture.Unlock()
			return Result{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	pl := schedule.PlacedAt(d.User, d.View.Date, start)
	candidate := schedule.MovePatch(pl).Apply(t)

	var spaced []string
	for _, o := range e.board.Snapshot().ForUser(d.User, d.View.Date) {
		if !o.Kind.IsSpecial() && o.Span().Intersects(candidate.Span()) {
			spaced = append(spaced, o.ID)
		}
	}

	if d.TicketID == "" {
		e.gesture.Unlock()
		stored, err := e.insert(ctx, op, candidate)
		if err != nil {
			return Result{}, err
		}
		return Result{Ticket: stored, Touched: []string{stored.ID}, Spaced: spaced}, nil
	}

	steps := []step{{change: board.Change{ID: t.ID, Patch: schedule.MovePatch(pl)}, before: t}}
	e.board.ApplyLocal(changes(steps)...)
	e.gesture.Unlock()

	res := Result{Ticket: candidate, Touched: touched(steps), Spaced: spaced}
	return res, e.persist(ctx, op, steps)
}

// CreateSpecial adds an unplaced special to the lobby. Only one special per
// label may wait there.
func (e *Engine) CreateSpecial(ctx context.Context, caps schedule.Capabilities, kind schedule.Kind, estimate float64) (schedule.Ticket, error) {
	const op = "placement.CreateSpecial"

	if err := requireEdit(op, caps); err != nil {
		return schedule.Ticket{}, err
	}
	t, err := newSpecial(kind, estimate)
	if err != nil {
		return schedule.Ticket{}, fmt.Errorf("%s: %w", op, err)
	}

	e.gesture.Lock()
	for _, l := range e.board.Snapshot().Lobby() {
		if l.Kind == t.Kind && l.Name == t.Name {
			e.gesture.Unlock()
			return schedule.Ticket{}, fmt.Errorf("%s: %w: %s", op, schedule.ErrDuplicateSpecial, t.Name)
		}
	}
	e.gesture.Unlock()

	return e.insert(ctx, op, t)
}

func newSpecial(kind schedule.Kind, estimate float64) (schedule.Ticket, error) {
	if !kind.IsSpecial() {
		return schedule.Ticket{}, fmt.Errorf("%w: %q", schedule.ErrInvalidKind, kind)
	}
	if estimate == 0 {
		estimate = schedule.MinEstimate
	}
	if err := schedule.ValidateEstimate(estimate); err != nil {
		return schedule.Ticket{}, err
	}
	return schedule.Ticket{
		Name:             kind.Label(),
		Estimate:         estimate,
		OriginalEstimate: estimate,
		Kind:             kind,
		Category:         schedule.CategorySpecial,
		ColorKey:         string(kind),
	}, nil
}
