package generate_excel

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shift-tracker/internal/schedule"
	"shift-tracker/internal/timeline"
)

type MockViewer struct {
	mock.Mock
}

func (m *MockViewer) Team(ctx context.Context, date, team, tz string) (timeline.TeamView, error) {
	args := m.Called(ctx, date, team, tz)
	return args.Get(0).(timeline.TeamView), args.Error(1)
}

func (m *MockViewer) All(ctx context.Context, date, tz string) ([]timeline.TeamView, error) {
	args := m.Called(ctx, date, tz)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]timeline.TeamView), args.Error(1)
}

const day = "2024-01-02"

func dayView(t *testing.T) timeline.TeamView {
	t.Helper()
	tickets := []schedule.Ticket{
		{ID: "1", Name: "X", Estimate: 1, Kind: schedule.KindNormal, Category: schedule.CategoryProduction, ColorKey: "X",
			Placement: schedule.PlacedAt("Ade", day, 16)},
		{ID: "2", Name: "Break", Estimate: 0.5, Kind: schedule.KindBreak, Category: schedule.CategorySpecial, ColorKey: "break",
			Placement: schedule.PlacedAt("Ade", day, 20)},
	}
	tv, err := timeline.ComposeTeam(tickets, nil, schedule.DefaultRoster(), "Day", day, "PST")
	require.NoError(t, err)
	return tv
}

func fillColor(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	id, err := f.GetCellStyle(SheetName, cell)
	require.NoError(t, err)
	style, err := f.GetStyle(id)
	require.NoError(t, err)
	require.NotEmpty(t, style.Fill.Color)
	return strings.ToUpper(style.Fill.Color[0])
}

func TestGenerateExcel_Team(t *testing.T) {
	viewer := new(MockViewer)
	viewer.On("Team", mock.Anything, day, "Day", "").Return(dayView(t), nil)

	svc := NewGenerateService(viewer)
	data, err := svc.GenerateExcel(context.Background(), day, "Day")
	require.NoError(t, err)
	viewer.AssertExpectations(t)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	get := func(cell string) string {
		v, err := f.GetCellValue(SheetName, cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Team Member", get("A1"))
	assert.Equal(t, "6:00 AM", get("B1"))
	assert.Equal(t, "6:30 AM", get("C1"))
	assert.Equal(t, "Ade", get("A2"))
	assert.Equal(t, "Claire", get("A3"))

	// Day starts at block 12, so block 16 is the fifth column of slots.
	assert.Equal(t, "", get("E2"))
	assert.Equal(t, "X", get("F2"))
	assert.Equal(t, "X", get("G2"))
	assert.Equal(t, "", get("H2"))
	assert.Equal(t, "Break", get("J2"))

	assert.Contains(t, fillColor(t, f, "F2"), AccentColor("X"))
	assert.Contains(t, fillColor(t, f, "J2"), specialFill)
}

func TestGenerateExcel_AllTeams(t *testing.T) {
	views := timeline.ComposeAll(nil, nil, schedule.DefaultRoster(), day, "PST")

	viewer := new(MockViewer)
	viewer.On("All", mock.Anything, day, "").Return(views, nil)

	data, err := NewGenerateService(viewer).GenerateExcel(context.Background(), day, "")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)

	members := 0
	for _, tv := range views {
		members += len(tv.Rows)
	}
	assert.Len(t, rows, members+1)
	assert.Equal(t, "12:00 AM", rows[0][1])
}

func TestGenerateExcel_ViewerError(t *testing.T) {
	viewer := new(MockViewer)
	viewer.On("Team", mock.Anything, day, "Nope", "").Return(timeline.TeamView{}, schedule.ErrUnknownTeam)

	_, err := NewGenerateService(viewer).GenerateExcel(context.Background(), day, "Nope")
	assert.True(t, errors.Is(err, schedule.ErrUnknownTeam))
}

func TestAccentColor(t *testing.T) {
	assert.Equal(t, "06D6A0", AccentColor("X"))
	assert.Equal(t, "FF6B6B", AccentColor(""))
	assert.Equal(t, AccentColor("PROJ-1"), AccentColor("PROJ-1"))
	for _, key := range []string{"a long ticket name that overflows int32", "Ωmega"} {
		assert.Contains(t, accentColors, AccentColor(key))
	}
}
