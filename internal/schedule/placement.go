package schedule

// Placement is either unplaced (the ticket lives in the lobby) or placed on one
// user's timeline for one date. The nullable user/date/start triple of the
// store only exists at the serialization boundary.
type Placement struct {
	User   string
	Date   string
	Start  int
	placed bool
}

func Unplaced() Placement {
	return Placement{}
}

func PlacedAt(user, date string, start int) Placement {
	return Placement{User: user, Date: date, Start: start, placed: true}
}

func (p Placement) IsPlaced() bool {
	return p.placed
}

// PlacementFromNullable maps store columns onto a placement. Any incomplete
// combination is treated as the lobby.
func PlacementFromNullable(user, date *string, start *int) Placement {
	if user == nil || date == nil || start == nil || *user == "" || *date == "" {
		return Unplaced()
	}
	return PlacedAt(*user, *date, *start)
}

// Nullable is the inverse of PlacementFromNullable.
func (p Placement) Nullable() (user, date *string, start *int) {
	if !p.placed {
		return nil, nil, nil
	}
	u, d, s := p.User, p.Date, p.Start
	return &u, &d, &s
}

// WithStart keeps user and date and moves the start block.
func (p Placement) WithStart(start int) Placement {
	p.Start = start
	return p
}
