package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shift-tracker/internal/schedule"
)

const day = "2024-01-02"

func placed(id, name string, kind schedule.Kind, estimate float64, user string, start int) schedule.Ticket {
	return schedule.Ticket{
		ID:               id,
		Name:             name,
		Estimate:         estimate,
		OriginalEstimate: estimate,
		Kind:             kind,
		Category:         schedule.CategoryProduction,
		Placement:        schedule.PlacedAt(user, day, start),
		ColorKey:         name,
	}
}

func kindsAt(slots []Slot, from, to int) []SlotKind {
	var out []SlotKind
	for i := from; i < to; i++ {
		out = append(out, slots[i].Kind)
	}
	return out
}

func view(blocks int) schedule.View {
	return schedule.View{Date: day, BlockCount: blocks}
}

func TestBuild_PlainTicket(t *testing.T) {
	tickets := []schedule.Ticket{placed("1", "ABC", schedule.KindNormal, 2, "Ade", 10)}

	slots := Build(tickets, "Ade", view(16), schedule.FullDay())
	require.Len(t, slots, 16)

	for i, s := range slots {
		if i >= 10 && i <= 13 {
			assert.Equal(t, SlotContent, s.Kind, "index %d", i)
			assert.Equal(t, "1", s.Ticket.ID)
			assert.Equal(t, i-10, s.Offset)
			assert.False(t, s.Elongated)
			continue
		}
		assert.True(t, s.IsEmpty(), "index %d", i)
	}
	assert.True(t, slots[10].First)
}

func TestBuild_BreakElongatesTicket(t *testing.T) {
	tickets := []schedule.Ticket{
		placed("1", "ABC", schedule.KindNormal, 2, "Ade", 10),
		placed("2", "break", schedule.KindBreak, 0.5, "Ade", 11),
	}

	slots := Build(tickets, "Ade", view(16), schedule.FullDay())

	assert.Equal(t, []SlotKind{SlotContent, SlotSpace, SlotContent, SlotContent, SlotContent}, kindsAt(slots, 10, 15))
	assert.Equal(t, "2", slots[11].Special.ID)
	assert.Equal(t, "1", slots[11].Ticket.ID)
	assert.True(t, slots[14].Elongated)
	assert.Equal(t, 3, slots[14].Offset)
	assert.True(t, slots[15].IsEmpty())

	// the stored estimate is untouched
	assert.Equal(t, 2.0, tickets[0].Estimate)
}

func TestBuild_MeetingAndTrainingAlsoSpace(t *testing.T) {
	tickets := []schedule.Ticket{
		placed("1", "ABC", schedule.KindNormal, 1, "Ade", 4),
		placed("2", "meeting", schedule.KindMeeting, 1, "Ade", 4),
	}

	slots := Build(tickets, "Ade", view(10), schedule.FullDay())

	assert.Equal(t, []SlotKind{SlotSpace, SlotSpace, SlotContent, SlotContent}, kindsAt(slots, 4, 8))
}

func TestBuild_StandaloneSpecialFillsOnlyEmptySlots(t *testing.T) {
	tickets := []schedule.Ticket{
		placed("1", "ABC", schedule.KindNormal, 2, "Ade", 10),
		placed("2", "break", schedule.KindBreak, 0.5, "Ade", 11),
		// intersects only the elongated tail, not the base span
		placed("3", "break", schedule.KindBreak, 1, "Ade", 14),
	}

	slots := Build(tickets, "Ade", view(20), schedule.FullDay())

	assert.Equal(t, SlotContent, slots[14].Kind)
	assert.Equal(t, SlotSpecial, slots[15].Kind)
	assert.Equal(t, "3", slots[15].Ticket.ID)
	assert.True(t, slots[16].IsEmpty())
}

func TestBuild_FiltersUserAndDate(t *testing.T) {
	other := placed("2", "X", schedule.KindNormal, 1, "Ade", 2)
	other.Placement = schedule.PlacedAt("Ade", "2024-01-03", 2)
	tickets := []schedule.Ticket{
		placed("1", "X", schedule.KindNormal, 1, "Toby", 2),
		other,
		{ID: "3", Name: "lobby", Estimate: 1, Kind: schedule.KindNormal},
	}

	slots := Build(tickets, "Ade", view(8), schedule.FullDay())
	for _, s := range slots {
		assert.True(t, s.IsEmpty())
	}
}

func TestBuild_GlobalOffsetMapping(t *testing.T) {
	tickets := []schedule.Ticket{placed("1", "ABC", schedule.KindNormal, 2, "Ade", 10)}
	v := schedule.View{Date: day, GlobalOffset: 12, BlockCount: 22}

	slots := Build(tickets, "Ade", v, schedule.FullDay())
	for _, s := range slots {
		if s.Kind == SlotContent {
			assert.GreaterOrEqual(t, s.Global, 12)
		}
	}
	assert.Equal(t, SlotContent, slots[0].Kind)
	assert.Equal(t, SlotContent, slots[1].Kind)
	assert.Equal(t, 13, slots[1].Global)
	assert.True(t, slots[2].IsEmpty())

	all := Build(tickets, "Ade", schedule.AllView(day), schedule.FullDay())
	require.Len(t, all, 48)
	assert.Equal(t, SlotContent, all[10].Kind)
}

func TestBuild_ClippedAndOffShift(t *testing.T) {
	tickets := []schedule.Ticket{placed("1", "LONG", schedule.KindNormal, 6, "Matt", 40)}
	window := schedule.ShiftWindow{Start: 30, End: 48}

	slots := Build(tickets, "Matt", view(48), window)

	assert.True(t, slots[40].Clipped)
	assert.True(t, slots[47].Clipped)
	assert.True(t, slots[0].OffShift)
	assert.False(t, slots[30].OffShift)

	// never clipped in the view-all grid
	all := Build(tickets, "Matt", schedule.AllView(day), window)
	assert.False(t, all[40].Clipped)
}

func TestBuild_IsDeterministic(t *testing.T) {
	tickets := []schedule.Ticket{
		placed("b", "B", schedule.KindNormal, 1, "Ade", 14),
		placed("a", "A", schedule.KindNormal, 2, "Ade", 10),
		placed("k", "break", schedule.KindBreak, 0.5, "Ade", 11),
		placed("m", "meeting", schedule.KindMeeting, 1, "Ade", 20),
	}
	snapshot := append([]schedule.Ticket(nil), tickets...)

	first := Build(tickets, "Ade", view(30), schedule.FullDay())
	second := Build(tickets, "Ade", view(30), schedule.FullDay())

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, tickets)
}

func TestElongatedSpan(t *testing.T) {
	base := placed("1", "ABC", schedule.KindNormal, 2, "Ade", 10)
	tickets := []schedule.Ticket{base, placed("2", "break", schedule.KindBreak, 0.5, "Ade", 11)}

	assert.Equal(t, schedule.Span{Start: 10, End: 15}, ElongatedSpan(base, tickets))
	assert.Len(t, IntersectingSpecials(base, tickets), 1)
}

func TestTimeLabels(t *testing.T) {
	assert.Equal(t, []string{"12:00 AM", "12:30 AM", "1:00 AM"}, TimeLabels(0, 3, "PST"))
	assert.Equal(t, []string{"2:00 PM", "2:30 PM"}, TimeLabels(6, 2, "GMT"))
	assert.Equal(t, []string{"12:00 AM"}, TimeLabels(16, 1, "GMT"))
	assert.Equal(t, TimeLabels(6, 4, "PST"), TimeLabels(6, 4, "XYZ"))
}

func TestComposeTeam(t *testing.T) {
	tickets := []schedule.Ticket{placed("1", "ABC", schedule.KindNormal, 1, "Ade", 16)}
	off := func(user, date string) bool { return user == "Claire" }

	tv, err := ComposeTeam(tickets, off, schedule.DefaultRoster(), "Day", day, "PST")
	require.NoError(t, err)

	assert.Equal(t, "Day", tv.Team)
	assert.Len(t, tv.Labels, 22)
	assert.Equal(t, "6:00 AM", tv.Labels[0])
	require.Equal(t, "Ade", tv.Rows[0].User)
	assert.Equal(t, SlotContent, tv.Rows[0].Slots[4].Kind)
	assert.True(t, tv.Rows[1].Off)

	_, err = ComposeTeam(tickets, off, schedule.DefaultRoster(), "Nope", day, "PST")
	assert.ErrorIs(t, err, schedule.ErrUnknownTeam)

	all := ComposeAll(tickets, nil, schedule.DefaultRoster(), day, "PST")
	assert.Len(t, all, 4)
	assert.Len(t, all[1].Rows[0].Slots, 48)
}

func TestBuild_LaterTicketWinsElongatedBlocks(t *testing.T) {
	tickets := []schedule.Ticket{
		placed("1", "ABC", schedule.KindNormal, 2, "Ade", 10),
		placed("2", "break", schedule.KindBreak, 0.5, "Ade", 11),
		placed("3", "DEF", schedule.KindNormal, 1, "Ade", 14),
	}

	slots := Build(tickets, "Ade", view(20), schedule.FullDay())

	// ABC runs 10..14 once stretched; DEF starts at 14 and takes that block.
	assert.Equal(t, "3", slots[14].Ticket.ID)
	assert.True(t, slots[14].First)
	assert.True(t, slots[14].Overlaps)
	assert.False(t, slots[14].Truncated)
	assert.False(t, slots[15].Overlaps)

	for i := 10; i < 14; i++ {
		assert.Equal(t, "1", slots[i].Ticket.ID, "index %d", i)
		assert.True(t, slots[i].Truncated, "index %d", i)
		assert.False(t, slots[i].Overlaps, "index %d", i)
	}
}

func TestBuild_NoOverlapFlagsWhenTicketsFit(t *testing.T) {
	tickets := []schedule.Ticket{
		placed("1", "ABC", schedule.KindNormal, 2, "Ade", 10),
		placed("2", "break", schedule.KindBreak, 0.5, "Ade", 11),
		placed("3", "DEF", schedule.KindNormal, 1, "Ade", 15),
	}

	for _, s := range Build(tickets, "Ade", view(20), schedule.FullDay()) {
		assert.False(t, s.Overlaps, "index %d", s.Global)
		assert.False(t, s.Truncated, "index %d", s.Global)
	}
}
