package placement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shift-tracker/internal/schedule"
	"shift-tracker/internal/timeline"
)

func TestAssign_PacksLaterTicketsAfterDrop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seed(t, normal("A", 1, at("Ade", 10)))
	b := f.seed(t, normal("B", 1, at("Ade", 14)))
	c := f.seed(t, normal("C", 2, schedule.Unplaced()))

	res, err := f.engine.Assign(ctx, manager, Drop{TicketID: c.ID, User: "Ade", View: allView(), Index: 10})
	require.NoError(t, err)
	assert.Equal(t, at("Ade", 10), res.Ticket.Placement)

	assert.Equal(t, 10, f.get(t, c.ID).Placement.Start)
	assert.Equal(t, 14, f.get(t, a.ID).Placement.Start)
	assert.Equal(t, 16, f.get(t, b.ID).Placement.Start)

	// The store converged on the same layout.
	assert.Equal(t, 14, f.stored(t, a.ID).Placement.Start)
	assert.Equal(t, 16, f.stored(t, b.ID).Placement.Start)

	assertNoOverlap(t, f.board.Snapshot().All(), "Ade")
}

func TestAssign_TicketsBeforeDropStay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seed(t, normal("A", 1, at("Ade", 4)))
	c := f.seed(t, normal("C", 1, schedule.Unplaced()))

	res, err := f.engine.Assign(ctx, manager, Drop{TicketID: c.ID, User: "Ade", View: allView(), Index: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, f.get(t, a.ID).Placement.Start)
	assert.Equal(t, []string{c.ID}, res.Touched)
}

func TestAssign_DropInsideTicketLandsAfterIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seed(t, normal("A", 2, at("Ade", 10)))
	b := f.seed(t, normal("B", 1, at("Ade", 14)))
	c := f.seed(t, normal("C", 1, schedule.Unplaced()))

	_, err := f.engine.Assign(ctx, manager, Drop{TicketID: c.ID, User: "Ade", View: allView(), Index: 12})
	require.NoError(t, err)

	assert.Equal(t, 10, f.get(t, a.ID).Placement.Start)
	assert.Equal(t, 14, f.get(t, c.ID).Placement.Start)
	assert.Equal(t, 16, f.get(t, b.ID).Placement.Start)
	assertNoOverlap(t, f.board.Snapshot().All(), "Ade")
}

func TestAssign_MapsViewportIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.seed(t, normal("C", 1, schedule.Unplaced()))
	view, err := schedule.DefaultRoster().TeamView("Night", day)
	require.NoError(t, err)

	_, err = f.engine.Assign(ctx, manager, Drop{TicketID: c.ID, User: "Ade", View: view, Index: 2})
	require.NoError(t, err)
	assert.Equal(t, view.GlobalOffset+2, f.get(t, c.ID).Placement.Start)
}

func TestAssign_MoveWithinTimeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seed(t, normal("A", 1, at("Ade", 10)))
	b := f.seed(t, normal("B", 1, at("Ade", 12)))

	// A's old spot does not count; B sits at the drop point and moves on.
	_, err := f.engine.Assign(ctx, manager, Drop{TicketID: a.ID, User: "Ade", View: allView(), Index: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, f.get(t, a.ID).Placement.Start)
	assert.Equal(t, 14, f.get(t, b.ID).Placement.Start)
	assertNoOverlap(t, f.board.Snapshot().All(), "Ade")
}

func TestAssign_ElongatedMoveDetachesSpecials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seed(t, normal("A", 2, at("Ade", 10)))
	brk := f.seed(t, special(schedule.KindBreak, 0.5, at("Ade", 11)))
	far := f.seed(t, special(schedule.KindMeeting, 1, at("Ade", 30)))

	require.Equal(t, 5, timeline.ElongatedSpan(f.get(t, a.ID), f.board.Snapshot().All()).Len())

	res, err := f.engine.Assign(ctx, manager, Drop{TicketID: a.ID, User: "Ade", View: allView(), Index: 20, Elongated: true})
	require.NoError(t, err)
	assert.Contains(t, res.Touched, brk.ID)

	assert.False(t, f.get(t, brk.ID).Placement.IsPlaced())
	assert.False(t, f.stored(t, brk.ID).Placement.IsPlaced())
	assert.True(t, f.get(t, far.ID).Placement.IsPlaced())

	moved := f.get(t, a.ID)
	assert.Equal(t, 20, moved.Placement.Start)
	assert.Equal(t, moved.Blocks(), timeline.ElongatedSpan(moved, f.board.Snapshot().All()).Len())
}

func TestAssign_SpecialIsRoutedToInsertSpecial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seed(t, normal("A", 2, at("Ade", 10)))
	brk := f.seed(t, special(schedule.KindBreak, 0.5, schedule.Unplaced()))

	res, err := f.engine.Assign(ctx, manager, Drop{TicketID: brk.ID, User: "Ade", View: allView(), Index: 11})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID}, res.Spaced)
	assert.Equal(t, 10, f.get(t, a.ID).Placement.Start, "specials never shift normal tickets")
}

func TestAssign_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.seed(t, normal("C", 1, schedule.Unplaced()))

	_, err := f.engine.Assign(ctx, manager, Drop{TicketID: c.ID, View: allView(), Index: 1})
	assert.ErrorIs(t, err, schedule.ErrMissingField)
	_, err = f.engine.Assign(ctx, manager, Drop{TicketID: c.ID, User: "Ade", View: allView(), Index: 48})
	assert.ErrorIs(t, err, schedule.ErrInvalidIndex)
	_, err = f.engine.Assign(ctx, manager, Drop{TicketID: "nope", User: "Ade", View: allView(), Index: 1})
	assert.ErrorIs(t, err, schedule.ErrTicketNotFound)
	_, err = f.engine.Assign(ctx, manager, Drop{TicketID: c.ID, User: "Ade", View: schedule.AllView("tomorrow"), Index: 1})
	assert.ErrorIs(t, err, schedule.ErrInvalidDate)
}

func TestAssign_FailedWriteRollsBackOnlyThatTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seed(t, normal("A", 1, at("Ade", 10)))
	c := f.seed(t, normal("C", 2, schedule.Unplaced()))
	f.store.failUpdates[a.ID] = -1

	_, err := f.engine.Assign(ctx, manager, Drop{TicketID: c.ID, User: "Ade", View: allView(), Index: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, schedule.ErrPersist)
	assert.ErrorIs(t, err, errStore)

	// C was stored, A was not and went back to where it was.
	assert.Equal(t, 10, f.get(t, c.ID).Placement.Start)
	assert.Equal(t, 10, f.stored(t, c.ID).Placement.Start)
	assert.Equal(t, 10, f.get(t, a.ID).Placement.Start)
}

func TestAssign_RepeatedDropsKeepTimelineDisjoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i, est := range []float64{1, 2, 0.5, 1.5, 3} {
		tk := f.seed(t, normal(string(rune('A'+i)), est, schedule.Unplaced()))
		ids = append(ids, tk.ID)
	}

	for i, idx := range []int{10, 11, 9, 14, 10, 20, 12} {
		id := ids[i%len(ids)]
		_, err := f.engine.Assign(ctx, manager, Drop{TicketID: id, User: "Ade", View: allView(), Index: idx})
		require.NoError(t, err)
		assertNoOverlap(t, f.board.Snapshot().All(), "Ade")
	}
}

func TestDropToLobby(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seed(t, normal("A", 2, at("Ade", 10)))
	brk := f.seed(t, special(schedule.KindBreak, 0.5, at("Ade", 12)))

	_, err := f.engine.DropToLobby(ctx, manager, a.ID, true)
	require.NoError(t, err)

	assert.False(t, f.get(t, a.ID).Placement.IsPlaced())
	assert.False(t, f.get(t, brk.ID).Placement.IsPlaced())
	assert.Len(t, f.board.Snapshot().Lobby(), 2)

	stored := f.stored(t, a.ID)
	user, date, start := stored.Placement.Nullable()
	assert.Nil(t, user)
	assert.Nil(t, date)
	assert.Nil(t, start)
}

func TestDropToLobby_NotElongatedKeepsSpecials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.seed(t, normal("A", 2, at("Ade", 10)))
	brk := f.seed(t, special(schedule.KindBreak, 0.5, at("Ade", 12)))

	_, err := f.engine.DropToLobby(ctx, manager, a.ID, false)
	require.NoError(t, err)
	assert.True(t, f.get(t, brk.ID).Placement.IsPlaced())
}
