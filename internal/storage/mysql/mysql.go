package mysql

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-sql-driver/mysql"

	"shift-tracker/internal/config"
	"shift-tracker/internal/realtime"
	"shift-tracker/internal/storage"
)

//go:embed schema.sql
var schema string

type Storage struct {
	db   *sql.DB
	log  *slog.Logger
	feed storage.Feed
}

// DSN builds the driver connection string from the config.
func DSN(cfg config.DB) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c.DBName = cfg.Name
	c.ParseTime = cfg.ParseTime
	return c.FormatDSN()
}

func New(log *slog.Logger, dsn string, feed storage.Feed) (*Storage, error) {
	const op = "storage.mysql.New"

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db, log: log, feed: feed}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	const op = "storage.mysql.Ping"

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Migrate creates the tables that do not exist yet.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.mysql.Migrate"

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Subscribe(h realtime.Handlers) func() {
	return s.feed.Subscriber.Subscribe(h)
}

func (s *Storage) publish(ctx context.Context, ev realtime.Event) {
	if s.feed.Publisher == nil {
		return
	}
	if err := s.feed.Publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("failed to publish ticket event", slog.String("id", ev.ID), slog.String("error", err.Error()))
	}
}
