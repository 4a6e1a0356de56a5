package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"shift-tracker/internal/board"
	"shift-tracker/internal/schedule"
	"shift-tracker/internal/timeline"
)

const DefaultTimezone = "PST"

var ErrUnknownTimezone = errors.New("unknown timezone")

type Board interface {
	Ensure(ctx context.Context, date string) error
	Snapshot() *board.Snapshot
}

type OffDays interface {
	Ensure(ctx context.Context, date string) error
	IsOff(user, date string) bool
}

// ViewService renders the board for a date, loading what is missing first.
type ViewService struct {
	board   Board
	offDays OffDays
	roster  schedule.Roster
}

func NewViewService(b Board, offDays OffDays, roster schedule.Roster) *ViewService {
	return &ViewService{board: b, offDays: offDays, roster: roster}
}

// Load fetches the tickets and off days of date concurrently.
func (s *ViewService) Load(ctx context.Context, date string) error {
	const op = "service.ViewService.Load"

	if _, err := schedule.ParseDate(date); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.board.Ensure(gCtx, date)
	})
	g.Go(func() error {
		return s.offDays.Ensure(gCtx, date)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Team renders one team on its own viewport.
func (s *ViewService) Team(ctx context.Context, date, team, tz string) (timeline.TeamView, error) {
	const op = "service.ViewService.Team"

	tz, err := timezone(tz)
	if err != nil {
		return timeline.TeamView{}, fmt.Errorf("%s: %w", op, err)
	}
	if _, ok := s.roster.Team(team); !ok {
		return timeline.TeamView{}, fmt.Errorf("%s: %q: %w", op, team, schedule.ErrUnknownTeam)
	}
	if err := s.Load(ctx, date); err != nil {
		return timeline.TeamView{}, fmt.Errorf("%s: %w", op, err)
	}

	tv, err := timeline.ComposeTeam(s.board.Snapshot().All(), s.offDays.IsOff, s.roster, team, date, tz)
	if err != nil {
		return timeline.TeamView{}, fmt.Errorf("%s: %w", op, err)
	}
	return tv, nil
}

// All renders every team on the full-day grid.
func (s *ViewService) All(ctx context.Context, date, tz string) ([]timeline.TeamView, error) {
	const op = "service.ViewService.All"

	tz, err := timezone(tz)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Load(ctx, date); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return timeline.ComposeAll(s.board.Snapshot().All(), s.offDays.IsOff, s.roster, date, tz), nil
}

// Tickets returns the lobby together with the tickets placed on date.
func (s *ViewService) Tickets(ctx context.Context, date string) (lobby, placed []schedule.Ticket, err error) {
	const op = "service.ViewService.Tickets"

	if err := s.Load(ctx, date); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	snap := s.board.Snapshot()
	return snap.Lobby(), snap.ForDate(date), nil
}

func timezone(tz string) (string, error) {
	if tz == "" {
		return DefaultTimezone, nil
	}
	if !timeline.KnownTimezone(tz) {
		return "", fmt.Errorf("%q: %w", tz, ErrUnknownTimezone)
	}
	return tz, nil
}
