package schedule

// View describes the viewport a timeline is rendered into.
type View struct {
	Date         string
	ViewAll      bool
	GlobalOffset int
	BlockCount   int
}

// Global maps a viewport index onto the day grid.
func (v View) Global(local int) int {
	if v.ViewAll {
		return local
	}
	return local + v.GlobalOffset
}

// Local maps a day-grid index into the viewport. ok is false outside [0, BlockCount).
func (v View) Local(global int) (local int, ok bool) {
	local = global
	if !v.ViewAll {
		local = global - v.GlobalOffset
	}
	return local, local >= 0 && local < v.BlockCount
}

// TeamView is the viewport the team tab shows.
func (r Roster) TeamView(team, date string) (View, error) {
	t, ok := r.Team(team)
	if !ok {
		return View{}, ErrUnknownTeam
	}
	return View{Date: date, GlobalOffset: t.StartHour * 2, BlockCount: t.BlockCount}, nil
}

// AllView is the whole-day viewport used by the "view all" tab.
func AllView(date string) View {
	return View{Date: date, ViewAll: true, BlockCount: BlocksPerDay}
}

// ViewFor picks the full-day grid when viewAll is set and the team tab
// otherwise.
func (r Roster) ViewFor(team, date string, viewAll bool) (View, error) {
	if viewAll {
		return AllView(date), nil
	}
	return r.TeamView(team, date)
}
