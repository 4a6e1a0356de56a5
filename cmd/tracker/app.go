package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"shift-tracker/internal/board"
	"shift-tracker/internal/config"
	"shift-tracker/internal/ledger"
	"shift-tracker/internal/offday"
	"shift-tracker/internal/placement"
	"shift-tracker/internal/realtime"
	"shift-tracker/internal/schedule"
	"shift-tracker/internal/service"
	generate_excel "shift-tracker/internal/service/generate-excel"
	"shift-tracker/internal/storage"
	"shift-tracker/internal/storage/memory"
	"shift-tracker/internal/storage/mysql"
)

type store interface {
	board.Store
	offday.Store
}

// app is the wired object graph behind the HTTP routes and background jobs.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	roster schedule.Roster

	hub    *realtime.Hub
	bus    *realtime.RedisBus
	ledger *ledger.Ledger
	board  *board.Board

	engine  *placement.Engine
	offDays *offday.Tracker
	views   *service.ViewService
	excel   *generate_excel.GenerateExcelService

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	const op = "main.newApp"

	a := &app{
		cfg:    cfg,
		log:    log,
		roster: cfg.RosterOrDefault(),
		hub:    realtime.NewHub(log),
	}

	feed := storage.LocalFeed(a.hub)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("%s: redis ping: %w", op, err)
		}
		a.closers = append(a.closers, client.Close)
		a.bus = realtime.NewRedisBus(client, cfg.Redis.Channel, a.hub, log)
		feed = storage.Feed{Publisher: a.bus, Subscriber: a.hub}
	}

	st, err := openStore(ctx, cfg, log, feed)
	if err != nil {
		for _, c := range a.closers {
			_ = c()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c, ok := st.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	a.ledger = ledger.New(cfg.Board.LedgerExpiry)
	a.board = board.New(log, st, a.ledger)
	a.board.Start()

	a.engine = placement.New(log, a.board, a.roster, placement.Retry{
		Attempts: cfg.Board.RetryAttempts,
		Backoff:  cfg.Board.RetryBackoff,
	})
	a.offDays = offday.New(log, st).WithMaxAge(cfg.Board.OffDayMaxAge)
	a.views = service.NewViewService(a.board, a.offDays, a.roster)
	a.excel = generate_excel.NewGenerateService(a.views)

	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger, feed storage.Feed) (store, error) {
	switch cfg.Storage {
	case "memory":
		log.Warn("using in-memory storage, data is lost on restart")
		return memory.New(log, feed), nil
	case "mysql":
		st, err := mysql.New(log, mysql.DSN(cfg.DB), feed)
		if err != nil {
			return nil, err
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage)
}

func (a *app) Close() {
	a.board.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", slog.String("error", err.Error()))
		}
	}
}
