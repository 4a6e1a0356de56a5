package placement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"shift-tracker/internal/schedule"
)

type ConsolidateResult struct {
	Skipped bool     `json:"skipped"`
	Created []string `json:"created"`
	Deleted []string `json:"deleted"`
}

type mergeGroup struct {
	base      string
	originals []schedule.Ticket
	turnovers []schedule.Ticket
}

func (g mergeGroup) needsMerge() bool {
	return len(g.originals)+len(g.turnovers) > 1
}

// lobbyGroups buckets the normal lobby tickets by base name, category and
// color key, in lobby order.
func lobbyGroups(lobby []schedule.Ticket) []*mergeGroup {
	type key struct {
		base     string
		category schedule.Category
		color    string
	}

	var order []*mergeGroup
	groups := make(map[key]*mergeGroup)
	for _, t := range lobby {
		if t.Kind.IsSpecial() {
			continue
		}
		k := key{t.BaseName(), t.Category, t.ColorKey}
		g, ok := groups[k]
		if !ok {
			g = &mergeGroup{base: k.base}
			groups[k] = g
			order = append(order, g)
		}
		if t.IsTurnoverName() {
			g.turnovers = append(g.turnovers, t)
		} else {
			g.originals = append(g.originals, t)
		}
	}
	return order
}

// Consolidate merges lobby tickets that belong together: an original and its
// turnovers become the original with its estimate restored, several
// turnovers become one turnover carrying their sum, and duplicate originals
// collapse to the first. Running it on a consolidated lobby does nothing.
// Only one consolidation runs at a time; a concurrent call is skipped.
func (e *Engine) Consolidate(ctx context.Context, caps schedule.Capabilities) (ConsolidateResult, error) {
	const op = "placement.Consolidate"

	if err := requireEdit(op, caps); err != nil {
		return ConsolidateResult{}, err
	}
	if !e.consolidating.CompareAndSwap(false, true) {
		e.log.Debug("consolidation already in progress, skipping")
		return ConsolidateResult{Skipped: true}, nil
	}
	defer e.consolidating.Store(false)

	var (
		res  ConsolidateResult
		errs []error
	)
	for _, g := range lobbyGroups(e.board.Snapshot().Lobby()) {
		if !g.needsMerge() {
			continue
		}
		created, deleted, err := e.mergeGroup(ctx, *g)
		if created != "" {
			res.Created = append(res.Created, created)
		}
		res.Deleted = append(res.Deleted, deleted...)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if len(res.Created) > 0 || len(res.Deleted) > 0 {
		e.log.Info("lobby consolidated",
			slog.Int("created", len(res.Created)),
			slog.Int("deleted", len(res.Deleted)),
		)
	}
	if len(errs) > 0 {
		return res, fmt.Errorf("%s: %w: %w", op, schedule.ErrPersist, errors.Join(errs...))
	}
	return res, nil
}

// mergeGroup stores the merged ticket first and deletes its sources after,
// so a failure never loses the work. The sources are taken off the board
// under the gesture lock once they are confirmed untouched, so no gesture can
// place one of them while the merge is in flight.
func (e *Engine) mergeGroup(ctx context.Context, g mergeGroup) (created string, deleted []string, err error) {
	var (
		merged  schedule.Ticket
		sources []schedule.Ticket
	)
	insert := true

	switch {
	case len(g.originals) > 0 && len(g.turnovers) > 0:
		merged = g.originals[0]
		merged.Name = g.base
		merged.Estimate = merged.RestoreEstimate()
		merged.IsTurnover = false
		sources = append(append(sources, g.originals...), g.turnovers...)

	case len(g.turnovers) > 1:
		var sum float64
		for _, t := range g.turnovers {
			sum += t.Estimate
		}
		merged = g.turnovers[0]
		merged.Name = g.base + schedule.TurnoverSuffix
		merged.Estimate = sum
		merged.OriginalEstimate = sum
		merged.IsTurnover = true
		sources = g.turnovers

	default:
		// Duplicate originals: keep the first.
		sources = g.originals[1:]
		insert = false
	}

	merged.Placement = schedule.Unplaced()
	tempID := "temp-" + uuid.NewString()
	merged.ID = tempID

	if !e.claim(sources, merged, insert) {
		e.log.Info("lobby group changed during consolidation, skipping", slog.String("ticket", g.base))
		return "", nil, nil
	}

	if insert {
		merged.ID = ""
		var stored schedule.Ticket
		err = e.withRetry(ctx, func() error {
			var ierr error
			stored, ierr = e.store.InsertTicket(ctx, merged)
			return ierr
		})
		if err != nil {
			e.board.RemoveLocal(tempID)
			for _, src := range sources {
				e.board.PutLocal(src)
			}
			e.log.Error("failed to create consolidated ticket", slog.String("ticket", merged.Name), slog.String("error", err.Error()))
			return "", nil, fmt.Errorf("insert %q: %w", merged.Name, err)
		}
		e.board.ConfirmInsert(tempID, stored)
		created = stored.ID
	}

	for _, src := range sources {
		if err := e.deleteSource(ctx, src); err != nil {
			return created, deleted, err
		}
		deleted = append(deleted, src.ID)
	}
	return created, deleted, nil
}

// claim takes sources off the board, and shows the merged placeholder, only
// if every source is still in the lobby exactly as it was grouped.
func (e *Engine) claim(sources []schedule.Ticket, merged schedule.Ticket, insert bool) bool {
	e.gesture.Lock()
	defer e.gesture.Unlock()

	snap := e.board.Snapshot()
	ids := make([]string, 0, len(sources))
	for _, src := range sources {
		cur, ok := snap.Get(src.ID)
		if !ok || cur != src || cur.Placement.IsPlaced() {
			return false
		}
		ids = append(ids, src.ID)
	}

	e.board.RemoveLocal(ids...)
	if insert {
		e.board.AddLocal(merged)
	}
	return true
}

func (e *Engine) deleteSource(ctx context.Context, t schedule.Ticket) error {
	err := e.withRetry(ctx, func() error {
		err := e.store.DeleteTicket(ctx, t.ID)
		if errors.Is(err, schedule.ErrTicketNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		e.board.PutLocal(t)
		e.log.Error("failed to delete consolidated ticket", slog.String("id", t.ID), slog.String("error", err.Error()))
		return fmt.Errorf("delete %s: %w", t.ID, err)
	}
	return nil
}
