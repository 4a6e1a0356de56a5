package schedule

// Patch is a partial ticket update. Nil fields are left untouched.
type Patch struct {
	Name             *string
	Link             *string
	Estimate         *float64
	OriginalEstimate *float64
	Placement        *Placement
	IsTurnover       *bool
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Link == nil && p.Estimate == nil && p.OriginalEstimate == nil &&
		p.Placement == nil && p.IsTurnover == nil
}

func (p Patch) Apply(t Ticket) Ticket {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Link != nil {
		t.Link = *p.Link
	}
	if p.Estimate != nil {
		t.Estimate = *p.Estimate
	}
	if p.OriginalEstimate != nil {
		t.OriginalEstimate = *p.OriginalEstimate
	}
	if p.Placement != nil {
		t.Placement = *p.Placement
	}
	if p.IsTurnover != nil {
		t.IsTurnover = *p.IsTurnover
	}
	return t
}

// Revert builds the patch that restores the fields p touches to their values in before.
func (p Patch) Revert(before Ticket) Patch {
	var r Patch
	if p.Name != nil {
		r.Name = &before.Name
	}
	if p.Link != nil {
		r.Link = &before.Link
	}
	if p.Estimate != nil {
		r.Estimate = &before.Estimate
	}
	if p.OriginalEstimate != nil {
		r.OriginalEstimate = &before.OriginalEstimate
	}
	if p.Placement != nil {
		r.Placement = &before.Placement
	}
	if p.IsTurnover != nil {
		r.IsTurnover = &before.IsTurnover
	}
	return r
}

func MovePatch(pl Placement) Patch {
	return Patch{Placement: &pl}
}

func UnplacePatch() Patch {
	pl := Unplaced()
	return Patch{Placement: &pl}
}

func EstimatePatch(estimate float64) Patch {
	return Patch{Estimate: &estimate}
}
