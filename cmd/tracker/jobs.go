package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"shift-tracker/internal/schedule"
)

// Background jobs act with manager rights.
var systemCaps = schedule.CapabilitiesFor(schedule.RoleManager)

func (a *app) scheduleJobs() (*cron.Cron, error) {
	const op = "main.scheduleJobs"

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(a.cfg.Board.ConsolidateCron, a.consolidateLobby); err != nil {
		return nil, fmt.Errorf("%s: consolidate schedule %q: %w", op, a.cfg.Board.ConsolidateCron, err)
	}
	if _, err := c.AddFunc(a.cfg.Board.LedgerSweep, a.sweepLedger); err != nil {
		return nil, fmt.Errorf("%s: ledger sweep schedule %q: %w", op, a.cfg.Board.LedgerSweep, err)
	}
	return c, nil
}

// consolidateLobby merges split fragments waiting in the lobby.
func (a *app) consolidateLobby() {
	const op = "main.consolidateLobby"
	log := a.log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := a.board.Ensure(ctx, time.Now().Format(schedule.DateLayout)); err != nil {
		log.Error("failed to load board", slog.String("error", err.Error()))
		return
	}

	res, err := a.engine.Consolidate(ctx, systemCaps)
	if err != nil {
		log.Error("consolidation failed", slog.String("error", err.Error()))
		return
	}
	if res.Skipped {
		log.Debug("consolidation already running")
		return
	}
	if len(res.Created) > 0 || len(res.Deleted) > 0 {
		log.Info("lobby consolidated", slog.Int("created", len(res.Created)), slog.Int("deleted", len(res.Deleted)))
	}
}

func (a *app) sweepLedger() {
	if n := a.ledger.Sweep(); n > 0 {
		a.log.Debug("expired pending marks", slog.Int("count", n))
	}
}
