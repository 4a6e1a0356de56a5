// Package timeline turns the ticket list into per-user half-hour slot rows.
package timeline

import (
	"sort"

	"shift-tracker/internal/schedule"
)

type SlotKind int

const (
	SlotEmpty SlotKind = iota
	// SlotContent consumes one block of the base ticket's own estimate.
	SlotContent
	// SlotSpace sits inside an elongated ticket but belongs to a special ticket.
	SlotSpace
	// SlotSpecial is a standalone break/meeting/training.
	SlotSpecial
)

func (k SlotKind) String() string {
	switch k {
	case SlotContent:
		return "content"
	case SlotSpace:
		return "space"
	case SlotSpecial:
		return "special"
	default:
		return "empty"
	}
}

type Slot struct {
	Kind   SlotKind
	Global int
	// Ticket is the base ticket for content/space slots and the special
	// ticket for standalone special slots.
	Ticket *schedule.Ticket
	// Special is the ticket that opened a space.
	Special *schedule.Ticket
	// Offset counts content blocks of the base ticket before this slot.
	Offset    int
	First     bool
	Elongated bool
	OffShift  bool
	Clipped   bool
	// Overlaps marks a slot taken over from another ticket's elongated run.
	// Later tickets win the block.
	Overlaps bool
	// Truncated marks every slot of a ticket that lost blocks to a later one,
	// so fewer blocks are shown than its estimate.
	Truncated bool
}

func (s Slot) IsEmpty() bool {
	return s.Kind == SlotEmpty
}

// Build lays out one user's row. It never mutates tickets and returns the same
// slots for the same inputs.
func Build(tickets []schedule.Ticket, user string, view schedule.View, window schedule.ShiftWindow) []Slot {
	if view.BlockCount <= 0 {
		return nil
	}

	slots := make([]Slot, view.BlockCount)
	for i := range slots {
		g := view.Global(i)
		slots[i] = Slot{Kind: SlotEmpty, Global: g, OffShift: !window.Contains(g)}
	}

	var normals, specials []schedule.Ticket
	for _, t := range tickets {
		if !t.OnTimeline(user, view.Date) {
			continue
		}
		if t.Kind.IsSpecial() {
			specials = append(specials, t)
		} else {
			normals = append(normals, t)
		}
	}
	sortByStart(normals)
	sortByStart(specials)

	spacing := make(map[string]bool, len(specials))
	truncated := make(map[string]bool)

	for i := range normals {
		base := &normals[i]
		span := base.Span()

		var covering []*schedule.Ticket
		extra := 0
		for j := range specials {
			sp := &specials[j]
			if sp.Span().Intersects(span) {
				covering = append(covering, sp)
				extra += sp.Blocks()
				spacing[sp.ID] = true
			}
		}

		clipped := !view.ViewAll && span.End > window.End
		elongated := len(covering) > 0
		length := span.Len()
		content := 0

		for pos := span.Start; pos < span.Start+length+extra; pos++ {
			var slot Slot
			if sp := coveringAt(covering, pos); sp != nil {
				slot = Slot{Kind: SlotSpace, Ticket: base, Special: sp, Offset: content}
			} else if content < length {
				slot = Slot{Kind: SlotContent, Ticket: base, Offset: content, First: content == 0, Clipped: clipped}
				content++
			} else {
				continue
			}
			slot.Elongated = elongated
			if lost := put(slots, view, window, pos, slot, true); lost != nil && lost.ID != base.ID {
				truncated[lost.ID] = true
			}
		}
	}

	if len(truncated) > 0 {
		for i := range slots {
			if t := slots[i].Ticket; t != nil && slots[i].Kind != SlotSpecial && truncated[t.ID] {
				slots[i].Truncated = true
			}
		}
	}

	for i := range specials {
		sp := &specials[i]
		if spacing[sp.ID] {
			continue
		}
		span := sp.Span()
		for pos := span.Start; pos < span.End; pos++ {
			put(slots, view, window, pos, Slot{Kind: SlotSpecial, Ticket: sp, Offset: pos - span.Start, First: pos == span.Start}, false)
		}
	}

	return slots
}

// put writes slot at global and returns the ticket whose slot it replaced.
func put(slots []Slot, view schedule.View, window schedule.ShiftWindow, global int, slot Slot, overwrite bool) *schedule.Ticket {
	local, ok := view.Local(global)
	if !ok {
		return nil
	}
	prev := slots[local]
	if !prev.IsEmpty() && !overwrite {
		return nil
	}
	slot.Global = global
	slot.OffShift = !window.Contains(global)
	if !prev.IsEmpty() && prev.Ticket != nil && slot.Ticket != nil && prev.Ticket.ID != slot.Ticket.ID {
		slot.Overlaps = true
	}
	slots[local] = slot
	if prev.IsEmpty() {
		return nil
	}
	return prev.Ticket
}

func coveringAt(specials []*schedule.Ticket, pos int) *schedule.Ticket {
	for _, sp := range specials {
		if sp.Span().Contains(pos) {
			return sp
		}
	}
	return nil
}

func sortByStart(ts []schedule.Ticket) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Placement.Start != ts[j].Placement.Start {
			return ts[i].Placement.Start < ts[j].Placement.Start
		}
		return ts[i].ID < ts[j].ID
	})
}

// ElongatedSpan is the visual extent of a placed normal ticket: its own span
// stretched by every special ticket intersecting it.
func ElongatedSpan(t schedule.Ticket, tickets []schedule.Ticket) schedule.Span {
	span := t.Span()
	if span.Empty() {
		return span
	}
	for _, other := range IntersectingSpecials(t, tickets) {
		span.End += other.Blocks()
	}
	return span
}

// IntersectingSpecials lists the specials on t's timeline whose span overlaps t's base span.
func IntersectingSpecials(t schedule.Ticket, tickets []schedule.Ticket) []schedule.Ticket {
	if !t.Placement.IsPlaced() {
		return nil
	}
	span := t.Span()
	var out []schedule.Ticket
	for _, other := range tickets {
		if other.ID == t.ID || !other.Kind.IsSpecial() {
			continue
		}
		if !other.OnTimeline(t.Placement.User, t.Placement.Date) {
			continue
		}
		if other.Span().Intersects(span) {
			out = append(out, other)
		}
	}
	return out
}
