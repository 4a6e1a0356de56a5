package placement

import (
	"context"
	"fmt"
	"log/slog"

	"shift-tracker/internal/board"
	"shift-tracker/internal/schedule"
)

// SplitOverflow cuts a placed ticket at its owner's shift end. The part
// inside the shift stays; the rest goes to the lobby as a turnover ticket.
// Specials that overlapped the full span are unassigned first.
func (e *Engine) SplitOverflow(ctx context.Context, caps schedule.Capabilities, id string) (Result, error) {
	const op = "placement.SplitOverflow"

	if err := requireEdit(op, caps); err != nil {
		return Result{}, err
	}

	e.gesture.Lock()
	t, err := e.ticket(id)
	if err != nil {
		e.gesture.Unlock()
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if !t.Placement.IsPlaced() || t.Kind.IsSpecial() {
		e.gesture.Unlock()
		return Result{}, fmt.Errorf("%s: %w", op, schedule.ErrNoOverflow)
	}

	span := t.Span()
	shiftEnd := e.roster.Window(t.Placement.User).End
	working := max(0, shiftEnd-span.Start)
	overflow := span.End - shiftEnd
	if working <= 0 || overflow <= 0 {
		e.gesture.Unlock()
		return Result{}, fmt.Errorf("%s: %w: span %d-%d, shift ends at %d", op, schedule.ErrNoOverflow, span.Start, span.End, shiftEnd)
	}

	workingHours := schedule.BlocksToHours(working)
	overflowHours := schedule.BlocksToHours(overflow)
	restore := t.RestoreEstimate()

	detach := detachSpecials(t, e.board.Snapshot().All())
	cut := step{
		change: board.Change{ID: t.ID, Patch: schedule.Patch{Estimate: &workingHours, OriginalEstimate: &restore}},
		before: t,
	}
	e.board.ApplyLocal(changes(append(detach, cut))...)
	e.gesture.Unlock()

	if err := e.persist(ctx, op, detach); err != nil {
		e.log.Warn("split continues without detaching every special", slog.String("id", t.ID), slog.String("error", err.Error()))
	}
	if err := e.persist(ctx, op, []step{cut}); err != nil {
		return Result{}, err
	}

	turnover := schedule.Ticket{
		Name:             t.BaseName() + schedule.TurnoverSuffix,
		Link:             t.Link,
		Estimate:         overflowHours,
		OriginalEstimate: overflowHours,
		Kind:             t.Kind,
		Category:         t.Category,
		Placement:        schedule.Unplaced(),
		IsTurnover:       true,
		ColorKey:         t.ColorKey,
	}
	if turnover.ColorKey == "" {
		turnover.ColorKey = t.Name
	}

	stored, err := e.insert(ctx, op, turnover)
	if err != nil {
		undo := cut.rollback()
		e.board.ApplyLocal(undo)
		if _, rerr := e.store.UpdateTicket(ctx, undo.ID, undo.Patch); rerr != nil {
			e.log.Error("failed to restore split ticket",
				slog.String("op", op),
				slog.String("id", t.ID),
				slog.String("error", rerr.Error()),
			)
		}
		return Result{}, err
	}

	e.log.Info("ticket split",
		slog.String("id", t.ID),
		slog.Float64("working_hours", workingHours),
		slog.Float64("overflow_hours", overflowHours),
		slog.String("turnover_id", stored.ID),
	)

	return Result{
		Ticket:  stored,
		Touched: append(touched(detach), t.ID, stored.ID),
	}, nil
}
