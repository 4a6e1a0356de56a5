package placement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"shift-tracker/internal/board"
	"shift-tracker/internal/schedule"
)

// Draft is a ticket as entered in the ticket form.
type Draft struct {
	Name     string            `json:"ticket"`
	Link     string            `json:"link"`
	Estimate float64           `json:"estimate"`
	Category schedule.Category `json:"category"`
}

func (d Draft) ticket() (schedule.Ticket, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return schedule.Ticket{}, fmt.Errorf("ticket: %w", schedule.ErrMissingField)
	}
	if err := schedule.ValidateEstimate(d.Estimate); err != nil {
		return schedule.Ticket{}, err
	}
	category := d.Category
	if category == "" {
		category = schedule.CategoryProduction
	}
	if !category.Valid() {
		return schedule.Ticket{}, fmt.Errorf("category %q: %w", category, schedule.ErrMissingField)
	}
	return schedule.Ticket{
		Name:             name,
		Link:             strings.TrimSpace(d.Link),
		Estimate:         d.Estimate,
		OriginalEstimate: d.Estimate,
		Kind:             schedule.KindNormal,
		Category:         category,
		ColorKey:         name,
	}, nil
}

// CreateTicket adds a new normal ticket to the lobby.
func (e *Engine) CreateTicket(ctx context.Context, caps schedule.Capabilities, d Draft) (schedule.Ticket, error) {
	const op = "placement.CreateTicket"

	if err := requireEdit(op, caps); err != nil {
		return schedule.Ticket{}, err
	}
	t, err := d.ticket()
	if err != nil {
		return schedule.Ticket{}, fmt.Errorf("%s: %w", op, err)
	}
	return e.insert(ctx, op, t)
}

// UpdateEstimate sets a ticket's estimate from free-form input rounded to the
// half hour. The estimate to restore after a merge is kept.
func (e *Engine) UpdateEstimate(ctx context.Context, caps schedule.Capabilities, id string, value float64) (schedule.Ticket, error) {
	const op = "placement.UpdateEstimate"

	if err := requireEdit(op, caps); err != nil {
		return schedule.Ticket{}, err
	}
	estimate, err := schedule.RoundEstimate(value)
	if err != nil {
		return schedule.Ticket{}, fmt.Errorf("%s: %w", op, err)
	}

	e.gesture.Lock()
	t, err := e.ticket(id)
	if err != nil {
		e.gesture.Unlock()
		return schedule.Ticket{}, fmt.Errorf("%s: %w", op, err)
	}
	restore := t.RestoreEstimate()
	s := step{
		change: board.Change{ID: t.ID, Patch: schedule.Patch{Estimate: &estimate, OriginalEstimate: &restore}},
		before: t,
	}
	e.board.ApplyLocal(s.change)
	e.gesture.Unlock()

	var stored schedule.Ticket
	err = e.withRetry(ctx, func() error {
		var uerr error
		stored, uerr = e.store.UpdateTicket(ctx, s.change.ID, s.change.Patch)
		return uerr
	})
	if err != nil {
		e.board.ApplyLocal(s.rollback())
		e.log.Error("estimate update rolled back", slog.String("id", id), slog.String("error", err.Error()))
		return schedule.Ticket{}, fmt.Errorf("%s: %w: %w", op, schedule.ErrPersist, err)
	}
	return stored, nil
}

// DeleteTicket removes a ticket for good.
func (e *Engine) DeleteTicket(ctx context.Context, caps schedule.Capabilities, id string) error {
	const op = "placement.DeleteTicket"

	if !caps.CanDeleteTicket {
		return fmt.Errorf("%s: %w", op, schedule.ErrForbidden)
	}

	e.gesture.Lock()
	t, err := e.ticket(id)
	if err != nil {
		e.gesture.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	e.board.RemoveLocal(t.ID)
	e.gesture.Unlock()

	if err := e.store.DeleteTicket(ctx, t.ID); err != nil {
		e.board.PutLocal(t)
		e.log.Error("ticket delete rolled back", slog.String("id", id), slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w: %w", op, schedule.ErrPersist, err)
	}
	return nil
}

// ClearDate sends every ticket placed on date back to the lobby.
func (e *Engine) ClearDate(ctx context.Context, caps schedule.Capabilities, date string) (Result, error) {
	const op = "placement.ClearDate"

	if !caps.CanDeleteTicket {
		return Result{}, fmt.Errorf("%s: %w", op, schedule.ErrForbidden)
	}
	if _, err := schedule.ParseDate(date); err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := e.board.Ensure(ctx, date); err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	e.gesture.Lock()
	var steps []step
	for _, t := range e.board.Snapshot().ForDate(date) {
		if t.Placement.IsPlaced() {
			steps = append(steps, step{change: board.Change{ID: t.ID, Patch: schedule.UnplacePatch()}, before: t})
		}
	}
	e.board.ApplyLocal(changes(steps)...)
	e.gesture.Unlock()

	e.log.Info("date cleared", slog.String("date", date), slog.Int("tickets", len(steps)))

	res := Result{Touched: touched(steps)}
	if err := e.persist(ctx, op, steps); err != nil {
		return res, err
	}
	return res, nil
}
