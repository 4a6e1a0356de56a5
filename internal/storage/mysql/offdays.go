package mysql

import (
	"context"
	"fmt"

	"shift-tracker/internal/storage"
)

func (s *Storage) ListOffDays(ctx context.Context, date string) ([]storage.OffDay, error) {
	const op = "storage.mysql.ListOffDays"

	stmt := `SELECT id, user_name, DATE_FORMAT(off_date, '%Y-%m-%d'), reason FROM user_off_days WHERE off_date = ?`

	rows, err := s.db.QueryContext(ctx, stmt, date)
	if err != nil {
		return nil, fmt.Errorf("%s: query off days: %w", op, err)
	}
	defer rows.Close()

	var days []storage.OffDay
	for rows.Next() {
		var od storage.OffDay
		if err := rows.Scan(&od.ID, &od.UserName, &od.OffDate, &od.Reason); err != nil {
			return nil, fmt.Errorf("%s: scan off day: %w", op, err)
		}
		days = append(days, od)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate off days: %w", op, err)
	}

	return days, nil
}

// UpsertOffDay records user as off on date, replacing the reason of an
// existing record.
func (s *Storage) UpsertOffDay(ctx context.Context, user, date, reason string) (storage.OffDay, error) {
	const op = "storage.mysql.UpsertOffDay"

	stmt := `INSERT INTO user_off_days (user_name, off_date, reason) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE reason = VALUES(reason), id = LAST_INSERT_ID(id)`

	res, err := s.db.ExecContext(ctx, stmt, user, date, reason)
	if err != nil {
		return storage.OffDay{}, fmt.Errorf("%s: upsert %s on %s: %w", op, user, date, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storage.OffDay{}, fmt.Errorf("%s: last insert id: %w", op, err)
	}

	return storage.OffDay{ID: id, UserName: user, OffDate: date, Reason: reason}, nil
}

func (s *Storage) DeleteOffDay(ctx context.Context, user, date string) error {
	const op = "storage.mysql.DeleteOffDay"

	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_off_days WHERE user_name = ? AND off_date = ?`, user, date); err != nil {
		return fmt.Errorf("%s: delete %s on %s: %w", op, user, date, err)
	}
	return nil
}
