package timeline

import "shift-tracker/internal/schedule"

type Row struct {
	User   string
	Off    bool
	Window schedule.ShiftWindow
	Slots  []Slot
}

type TeamView struct {
	Team      string
	Label     string
	StartHour int
	View      schedule.View
	Labels    []string
	Rows      []Row
}

// OffLookup answers whether a user is off on a date.
type OffLookup func(user, date string) bool

// ComposeTeam builds every member's row for the team's own viewport.
func ComposeTeam(tickets []schedule.Ticket, isOff OffLookup, roster schedule.Roster, team, date, tz string) (TeamView, error) {
	t, ok := roster.Team(team)
	if !ok {
		return TeamView{}, schedule.ErrUnknownTeam
	}
	view, err := roster.TeamView(team, date)
	if err != nil {
		return TeamView{}, err
	}
	return compose(tickets, isOff, roster, t, view, t.StartHour, tz), nil
}

// ComposeAll renders one section per team on the full-day grid.
func ComposeAll(tickets []schedule.Ticket, isOff OffLookup, roster schedule.Roster, date, tz string) []TeamView {
	view := schedule.AllView(date)
	out := make([]TeamView, 0, len(roster.Teams))
	for _, t := range roster.Teams {
		out = append(out, compose(tickets, isOff, roster, t, view, 0, tz))
	}
	return out
}

func compose(tickets []schedule.Ticket, isOff OffLookup, roster schedule.Roster, t schedule.Team, view schedule.View, startHour int, tz string) TeamView {
	tv := TeamView{
		Team:      t.Name,
		Label:     t.Label,
		StartHour: startHour,
		View:      view,
		Labels:    TimeLabels(startHour, view.BlockCount, tz),
		Rows:      make([]Row, 0, len(t.Members)),
	}
	for _, m := range t.Members {
		window := roster.Window(m.Name)
		row := Row{
			User:   m.Name,
			Window: window,
			Slots:  Build(tickets, m.Name, view, window),
		}
		if isOff != nil {
			row.Off = isOff(m.Name, view.Date)
		}
		tv.Rows = append(tv.Rows, row)
	}
	return tv
}
