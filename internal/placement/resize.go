package placement

import (
	"context"
	"fmt"

	"shift-tracker/internal/board"
	"shift-tracker/internal/schedule"
)

type Direction int

const (
	Decrease Direction = -1
	Increase Direction = 1
)

func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "increase", "+":
		return Increase, true
	case "decrease", "-":
		return Decrease, true
	}
	return 0, false
}

// Resize grows or shrinks a ticket by half an hour and moves every later
// ticket of the same timeline by the same amount. A ticket already running
// past its shift end cannot grow. If any write fails all of them are undone.
func (e *Engine) Resize(ctx context.Context, caps schedule.Capabilities, id string, dir Direction) (Result, error) {
	const op = "placement.Resize"

	if err := requireEdit(op, caps); err != nil {
		return Result{}, err
	}
	if dir != Increase && dir != Decrease {
		return Result{}, fmt.Errorf("%s: direction: %w", op, schedule.ErrMissingField)
	}

	e.gesture.Lock()
	t, err := e.ticket(id)
	if err != nil {
		e.gesture.Unlock()
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	estimate := max(schedule.MinEstimate, t.Estimate+float64(dir)*0.5)
	if estimate == t.Estimate {
		e.gesture.Unlock()
		return Result{Ticket: t}, nil
	}
	if estimate > schedule.MaxEstimate {
		e.gesture.Unlock()
		return Result{}, fmt.Errorf("%s: %w: %v exceeds %v hours", op, schedule.ErrInvalidEstimate, estimate, schedule.MaxEstimate)
	}
	if dir == Increase && t.Placement.IsPlaced() && t.Span().End > e.roster.Window(t.Placement.User).End {
		e.gesture.Unlock()
		return Result{}, fmt.Errorf("%s: %w", op, schedule.ErrClipped)
	}

	steps := []step{{change: board.Change{ID: t.ID, Patch: schedule.EstimatePatch(estimate)}, before: t}}

	if t.Placement.IsPlaced() {
		delta := schedule.EstimateBlocks(estimate) - t.Blocks()
		var later []schedule.Ticket
		for _, o := range e.board.Snapshot().ForUser(t.Placement.User, t.Placement.Date) {
			if o.ID != t.ID && o.Placement.Start > t.Placement.Start {
				later = append(later, o)
			}
		}
		sortByStart(later)
		for _, o := range later {
			steps = append(steps, step{
				change: board.Change{ID: o.ID, Patch: schedule.MovePatch(o.Placement.WithStart(o.Placement.Start + delta))},
				before: o,
			})
		}
	}

	e.board.ApplyLocal(changes(steps)...)
	e.gesture.Unlock()

	res := Result{Ticket: steps[0].change.Patch.Apply(t), Touched: touched(steps)}
	if err := e.persistAll(ctx, op, steps); err != nil {
		return Result{}, err
	}
	return res, nil
}
