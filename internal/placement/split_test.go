package placement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shift-tracker/internal/schedule"
	"shift-tracker/internal/timeline"
)

func TestSplitOverflow_CutsAtShiftEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Matt's shift ends at block 48.
	x := f.seed(t, normal("X", 6, schedule.PlacedAt("Matt", day, 40)))

	roster := schedule.DefaultRoster()
	view, err := roster.TeamView("Night", day)
	require.NoError(t, err)
	slots := timeline.Build(f.board.Snapshot().All(), "Matt", view, roster.Window("Matt"))
	require.True(t, slots[40-view.GlobalOffset].Clipped)

	res, err := f.engine.SplitOverflow(ctx, manager, x.ID)
	require.NoError(t, err)

	orig := f.get(t, x.ID)
	assert.Equal(t, 4.0, orig.Estimate)
	assert.Equal(t, 6.0, orig.OriginalEstimate)
	assert.Equal(t, schedule.Span{Start: 40, End: 48}, orig.Span())
	assert.Equal(t, 4.0, f.stored(t, x.ID).Estimate)

	turnover := res.Ticket
	assert.Equal(t, "X (Turnover)", turnover.Name)
	assert.Equal(t, 2.0, turnover.Estimate)
	assert.Equal(t, 2.0, turnover.OriginalEstimate)
	assert.True(t, turnover.IsTurnover)
	assert.False(t, turnover.Placement.IsPlaced())
	assert.Equal(t, x.ColorKey, turnover.ColorKey)
	assert.Equal(t, x.Category, turnover.Category)

	lobby := f.board.Snapshot().Lobby()
	require.Len(t, lobby, 1)
	assert.Equal(t, turnover.ID, lobby[0].ID)
}

func TestSplitOverflow_DetachesSpecials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	x := f.seed(t, normal("X", 6, schedule.PlacedAt("Matt", day, 40)))
	brk := f.seed(t, special(schedule.KindBreak, 0.5, schedule.PlacedAt("Matt", day, 42)))

	_, err := f.engine.SplitOverflow(ctx, manager, x.ID)
	require.NoError(t, err)
	assert.False(t, f.get(t, brk.ID).Placement.IsPlaced())
}

func TestSplitOverflow_NoOverflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inside := f.seed(t, normal("In", 2, schedule.PlacedAt("Matt", day, 40)))
	past := f.seed(t, normal("Past", 1, schedule.PlacedAt("Ade", day, 40)))
	lobby := f.seed(t, normal("L", 1, schedule.Unplaced()))
	before := f.store.Writes()

	_, err := f.engine.SplitOverflow(ctx, manager, inside.ID)
	assert.ErrorIs(t, err, schedule.ErrNoOverflow)
	// Entirely after Ade's shift: nothing would remain.
	_, err = f.engine.SplitOverflow(ctx, manager, past.ID)
	assert.ErrorIs(t, err, schedule.ErrNoOverflow)
	_, err = f.engine.SplitOverflow(ctx, manager, lobby.ID)
	assert.ErrorIs(t, err, schedule.ErrNoOverflow)

	assert.Equal(t, before, f.store.Writes())
}

func TestSplitOverflow_TurnoverInsertFailureRestoresOriginal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	x := f.seed(t, normal("X", 6, schedule.PlacedAt("Matt", day, 40)))
	f.store.failInserts = 1

	_, err := f.engine.SplitOverflow(ctx, manager, x.ID)
	require.ErrorIs(t, err, schedule.ErrPersist)

	assert.Equal(t, 6.0, f.get(t, x.ID).Estimate)
	assert.Equal(t, 6.0, f.stored(t, x.ID).Estimate)
	assert.Empty(t, f.board.Snapshot().Lobby())
}

func TestSplitOverflow_UpdateFailureCreatesNoTurnover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	x := f.seed(t, normal("X", 6, schedule.PlacedAt("Matt", day, 40)))
	f.store.failUpdates[x.ID] = 1

	_, err := f.engine.SplitOverflow(ctx, manager, x.ID)
	require.ErrorIs(t, err, schedule.ErrPersist)
	assert.Equal(t, 6.0, f.get(t, x.ID).Estimate)
	assert.Empty(t, f.board.Snapshot().Lobby())
}

func TestSplitThenRemerge_RestoresEstimate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	x := f.seed(t, normal("X", 6, schedule.PlacedAt("Matt", day, 40)))

	_, err := f.engine.SplitOverflow(ctx, manager, x.ID)
	require.NoError(t, err)
	_, err = f.engine.DropToLobby(ctx, manager, x.ID, false)
	require.NoError(t, err)

	res, err := f.engine.Consolidate(ctx, manager)
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.Len(t, res.Deleted, 2)

	lobby := f.board.Snapshot().Lobby()
	require.Len(t, lobby, 1)
	assert.Equal(t, "X", lobby[0].Name)
	assert.Equal(t, 6.0, lobby[0].Estimate)
	assert.False(t, lobby[0].IsTurnover)
}
