package schedule

// ShiftWindow is the on-duty part of the day in global half-hour blocks.
type ShiftWindow struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

func FullDay() ShiftWindow {
	return ShiftWindow{Start: 0, End: BlocksPerDay}
}

func (w ShiftWindow) Contains(global int) bool {
	return global >= w.Start && global < w.End
}

type Member struct {
	Name  string      `yaml:"name" json:"name"`
	Shift ShiftWindow `yaml:"shift" json:"shift"`
}

type Team struct {
	Name       string   `yaml:"name" json:"name"`
	Label      string   `yaml:"label" json:"label"`
	StartHour  int      `yaml:"start_hour" json:"start_hour"`
	BlockCount int      `yaml:"block_count" json:"block_count"`
	Members    []Member `yaml:"members" json:"members"`
}

func (t Team) MemberNames() []string {
	names := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		names = append(names, m.Name)
	}
	return names
}

type Roster struct {
	Teams []Team `yaml:"teams" json:"teams"`
}

func (r Roster) Team(name string) (Team, bool) {
	for _, t := range r.Teams {
		if t.Name == name {
			return t, true
		}
	}
	return Team{}, false
}

// Window returns the user's shift window; unknown users are on duty all day.
func (r Roster) Window(user string) ShiftWindow {
	for _, t := range r.Teams {
		for _, m := range t.Members {
			if m.Name == user {
				return m.Shift
			}
		}
	}
	return FullDay()
}

func (r Roster) Empty() bool {
	return len(r.Teams) == 0
}

func member(name string, start, end int) Member {
	return Member{Name: name, Shift: ShiftWindow{Start: start, End: end}}
}

// DefaultRoster is the board's built-in team layout; windows are in PST blocks.
func DefaultRoster() Roster {
	return Roster{Teams: []Team{
		{
			Name: "London", Label: "Shift III - London", StartHour: 0, BlockCount: 18,
			Members: []Member{
				member("Andrei", 2, 18),
				member("Andrew", 0, 16),
				member("Bella", 2, 18),
				member("Emma", 2, 18),
				member("Goldee", 2, 18),
				member("Mitchell", 0, 16),
				member("Nicole", 0, 16),
				member("Simona", 2, 18),
				member("Solveiga", 0, 16),
			},
		},
		{
			Name: "Day", Label: "Shift I - US Day", StartHour: 6, BlockCount: 22,
			Members: []Member{
				member("Ade", 16, 32),
				member("Claire", 16, 32),
				member("Gabrielle", 16, 34),
				member("Jane", 16, 34),
				member("Melanie", 16, 32),
				member("Nousha", 16, 34),
				member("Paulina", 16, 34),
				member("Rose", 16, 34),
				member("Stephanie", 12, 30),
				member("Susan", 12, 30),
				member("Toby", 16, 32),
				member("Victoria", 14, 32),
			},
		},
		{
			Name: "Night", Label: "Shift II - US Night", StartHour: 13, BlockCount: 22,
			Members: []Member{
				member("Ashley", 26, 44),
				member("Doue", 24, 41),
				member("Danissa", 30, 48),
				member("Matt", 30, 48),
				member("Marie", 27, 44),
				member("Shaida", 22, 39),
			},
		},
		{
			Name: "SP", Label: "Special Projects", StartHour: 0, BlockCount: 32,
			Members: []Member{
				member("Beth", 16, 32),
				member("James", 2, 17),
				member("Lisa", 2, 17),
				member("Sophia", 0, 15),
				member("Jessica", 16, 32),
			},
		},
	}}
}
