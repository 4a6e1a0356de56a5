package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"shift-tracker/internal/realtime"
	"shift-tracker/internal/schedule"
)

const ticketColumns = `id, ticket, link, estimate, original_estimate, type, category,
	assigned_user, start_index, DATE_FORMAT(date, '%Y-%m-%d'), is_turnover, color_key`

type scanner interface {
	Scan(dest ...any) error
}

func scanTicket(row scanner) (schedule.Ticket, error) {
	var (
		t     schedule.Ticket
		id    int64
		user  sql.NullString
		start sql.NullInt64
		date  sql.NullString
	)
	err := row.Scan(&id, &t.Name, &t.Link, &t.Estimate, &t.OriginalEstimate, &t.Kind, &t.Category,
		&user, &start, &date, &t.IsTurnover, &t.ColorKey)
	if err != nil {
		return schedule.Ticket{}, err
	}

	t.ID = strconv.FormatInt(id, 10)
	if user.Valid && start.Valid && date.Valid {
		s := int(start.Int64)
		t.Placement = schedule.PlacementFromNullable(&user.String, &date.String, &s)
	}
	return t, nil
}

func parseID(op, id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: id=%q: %w", op, id, schedule.ErrTicketNotFound)
	}
	return n, nil
}

// ListTickets returns the lobby plus every ticket placed on date.
func (s *Storage) ListTickets(ctx context.Context, date string) ([]schedule.Ticket, error) {
	const op = "storage.mysql.ListTickets"

	stmt := `SELECT ` + ticketColumns + ` FROM tickets WHERE date = ? OR date IS NULL ORDER BY id`

	rows, err := s.db.QueryContext(ctx, stmt, date)
	if err != nil {
		return nil, fmt.Errorf("%s: query tickets: %w", op, err)
	}
	defer rows.Close()

	var tickets []schedule.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan ticket: %w", op, err)
		}
		tickets = append(tickets, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate tickets: %w", op, err)
	}

	return tickets, nil
}

func (s *Storage) getTicket(ctx context.Context, id int64) (schedule.Ticket, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.Ticket{}, schedule.ErrTicketNotFound
	}
	return t, err
}

func (s *Storage) InsertTicket(ctx context.Context, t schedule.Ticket) (schedule.Ticket, error) {
	const op = "storage.mysql.InsertTicket"

	stmt := `INSERT INTO tickets (ticket, link, estimate, original_estimate, type, category,
		assigned_user, start_index, date, is_turnover, color_key) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	user, date, start := t.Placement.Nullable()
	res, err := s.db.ExecContext(ctx, stmt, t.Name, t.Link, t.Estimate, t.OriginalEstimate, string(t.Kind), string(t.Category),
		user, start, date, t.IsTurnover, t.ColorKey)
	if err != nil {
		return schedule.Ticket{}, fmt.Errorf("%s: insert ticket %q: %w", op, t.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return schedule.Ticket{}, fmt.Errorf("%s: last insert id: %w", op, err)
	}
	t.ID = strconv.FormatInt(id, 10)

	s.publish(ctx, realtime.InsertEvent(t))
	return t, nil
}

// patchSet renders the SET list of p. Nil fields are left out.
func patchSet(p schedule.Patch) (string, []any) {
	var (
		cols []string
		args []any
	)
	set := func(col string, v any) {
		cols = append(cols, col+" = ?")
		args = append(args, v)
	}

	if p.Name != nil {
		set("ticket", *p.Name)
	}
	if p.Link != nil {
		set("link", *p.Link)
	}
	if p.Estimate != nil {
		set("estimate", *p.Estimate)
	}
	if p.OriginalEstimate != nil {
		set("original_estimate", *p.OriginalEstimate)
	}
	if p.Placement != nil {
		user, date, start := p.Placement.Nullable()
		set("assigned_user", user)
		set("start_index", start)
		set("date", date)
	}
	if p.IsTurnover != nil {
		set("is_turnover", *p.IsTurnover)
	}
	return strings.Join(cols, ", "), args
}

func (s *Storage) UpdateTicket(ctx context.Context, id string, p schedule.Patch) (schedule.Ticket, error) {
	const op = "storage.mysql.UpdateTicket"

	n, err := parseID(op, id)
	if err != nil {
		return schedule.Ticket{}, err
	}

	if !p.Empty() {
		set, args := patchSet(p)
		args = append(args, n)
		if _, err := s.db.ExecContext(ctx, `UPDATE tickets SET `+set+` WHERE id = ?`, args...); err != nil {
			return schedule.Ticket{}, fmt.Errorf("%s: update ticket id=%s: %w", op, id, err)
		}
	}

	t, err := s.getTicket(ctx, n)
	if err != nil {
		return schedule.Ticket{}, fmt.Errorf("%s: id=%s: %w", op, id, err)
	}

	s.publish(ctx, realtime.UpdateEvent(t))
	return t, nil
}

func (s *Storage) DeleteTicket(ctx context.Context, id string) error {
	const op = "storage.mysql.DeleteTicket"

	n, err := parseID(op, id)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, n)
	if err != nil {
		return fmt.Errorf("%s: delete ticket id=%s: %w", op, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: id=%s: %w", op, id, schedule.ErrTicketNotFound)
	}

	s.publish(ctx, realtime.DeleteEvent(id))
	return nil
}
