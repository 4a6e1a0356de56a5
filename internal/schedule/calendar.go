package schedule

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// BusinessWeek returns Monday..Friday of the week containing date. A Sunday
// belongs to the week that starts the next day.
func BusinessWeek(date string) ([]string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	var shift int
	switch wd := d.Weekday(); wd {
	case time.Sunday:
		shift = 1
	default:
		shift = -(int(wd) - 1)
	}
	monday := d.AddDate(0, 0, shift)

	week := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		week = append(week, monday.AddDate(0, 0, i).Format(DateLayout))
	}
	return week, nil
}

// StepWorkday moves one working day forward (dir > 0) or back, skipping weekends.
func StepWorkday(date string, dir int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}

	step := 1
	if dir < 0 {
		step = -1
	}
	d = d.AddDate(0, 0, step)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, step)
	}
	return d.Format(DateLayout), nil
}
