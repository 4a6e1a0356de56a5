package board

import "shift-tracker/internal/schedule"

// Snapshot is an immutable view of the ticket list. Callers must not modify
// the slices it hands out.
type Snapshot struct {
	tickets []schedule.Ticket
	index   map[string]int
}

func newSnapshot(tickets []schedule.Ticket) *Snapshot {
	index := make(map[string]int, len(tickets))
	for i, t := range tickets {
		index[t.ID] = i
	}
	return &Snapshot{tickets: tickets, index: index}
}

func (s *Snapshot) All() []schedule.Ticket {
	return s.tickets
}

func (s *Snapshot) Len() int {
	return len(s.tickets)
}

func (s *Snapshot) Get(id string) (schedule.Ticket, bool) {
	i, ok := s.index[id]
	if !ok {
		return schedule.Ticket{}, false
	}
	return s.tickets[i], true
}

// Lobby lists unplaced tickets in list order.
func (s *Snapshot) Lobby() []schedule.Ticket {
	var out []schedule.Ticket
	for _, t := range s.tickets {
		if !t.Placement.IsPlaced() {
			out = append(out, t)
		}
	}
	return out
}

// ForUser lists tickets placed on user's timeline for date.
func (s *Snapshot) ForUser(user, date string) []schedule.Ticket {
	var out []schedule.Ticket
	for _, t := range s.tickets {
		if t.OnTimeline(user, date) {
			out = append(out, t)
		}
	}
	return out
}

// ForDate lists tickets visible on date: everything placed on it plus the lobby.
func (s *Snapshot) ForDate(date string) []schedule.Ticket {
	var out []schedule.Ticket
	for _, t := range s.tickets {
		if !t.Placement.IsPlaced() || t.Placement.Date == date {
			out = append(out, t)
		}
	}
	return out
}

func upsert(tickets []schedule.Ticket, t schedule.Ticket) []schedule.Ticket {
	out := make([]schedule.Ticket, 0, len(tickets)+1)
	replaced := false
	for _, cur := range tickets {
		if cur.ID == t.ID {
			out = append(out, t)
			replaced = true
			continue
		}
		out = append(out, cur)
	}
	if !replaced {
		out = append(out, t)
	}
	return out
}

func remove(tickets []schedule.Ticket, ids map[string]bool) []schedule.Ticket {
	out := make([]schedule.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if !ids[t.ID] {
			out = append(out, t)
		}
	}
	return out
}
