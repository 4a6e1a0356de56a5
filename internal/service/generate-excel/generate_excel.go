package generate_excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"shift-tracker/internal/timeline"
)

const SheetName = "Schedule"

// Palette the ticket colours are drawn from, keyed by a hash of the colour key.
var accentColors = []string{
	"FF6B6B", "FCA311", "6A994E", "3D5A80", "8E44AD",
	"00B4D8", "EF476F", "FFD166", "06D6A0", "118AB2",
	"E74C3C", "F39C12", "27AE60", "2980B9", "9B59B6",
	"1ABC9C", "E67E22", "34495E", "F1C40F", "E91E63",
}

const (
	specialFill = "F0F0F0"
	specialFont = "28A745"
)

type Viewer interface {
	Team(ctx context.Context, date, team, tz string) (timeline.TeamView, error)
	All(ctx context.Context, date, tz string) ([]timeline.TeamView, error)
}

type GenerateExcelService struct {
	viewer Viewer
}

func NewGenerateService(viewer Viewer) *GenerateExcelService {
	return &GenerateExcelService{viewer: viewer}
}

// GenerateExcel exports the schedule of date. An empty team exports every
// team on the full-day grid.
func (g *GenerateExcelService) GenerateExcel(ctx context.Context, date, team string) ([]byte, error) {
	const op = "service.generate_excel.GenerateExcel"

	var views []timeline.TeamView
	if team == "" {
		all, err := g.viewer.All(ctx, date, "")
		if err != nil {
			return nil, fmt.Errorf("%s: fetch views: %w", op, err)
		}
		views = all
	} else {
		tv, err := g.viewer.Team(ctx, date, team, "")
		if err != nil {
			return nil, fmt.Errorf("%s: fetch view: %w", op, err)
		}
		views = []timeline.TeamView{tv}
	}

	data, err := Render(views)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

// Render writes the rows of every view under one header. All views must share
// the same grid.
func Render(views []timeline.TeamView) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if len(views) == 0 {
		return writeBuffer(f)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border:    []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	styles := newStyleCache(f)

	labels := timeline.ExportLabels(views[0].StartHour, views[0].View.BlockCount)
	f.SetCellValue(SheetName, "A1", "Team Member")
	for i, label := range labels {
		f.SetCellValue(SheetName, cellName(i+2, 1), label)
	}
	f.SetCellStyle(SheetName, "A1", cellName(len(labels)+1, 1), headerStyle)

	rowNum := 2
	for _, tv := range views {
		for _, row := range tv.Rows {
			f.SetCellValue(SheetName, cellName(1, rowNum), row.User)
			for i, slot := range row.Slots {
				text, color, special, ok := cellContent(slot)
				if !ok {
					continue
				}
				cell := cellName(i+2, rowNum)
				f.SetCellValue(SheetName, cell, text)
				style, err := styles.get(color, special)
				if err != nil {
					return nil, fmt.Errorf("cell style: %w", err)
				}
				f.SetCellStyle(SheetName, cell, cell, style)
			}
			rowNum++
		}
	}

	f.SetColWidth(SheetName, "A", "A", 18)
	f.SetColWidth(SheetName, "B", colName(len(labels)+1), 12)
	f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	})

	return writeBuffer(f)
}

func cellContent(slot timeline.Slot) (text, color string, special, ok bool) {
	switch slot.Kind {
	case timeline.SlotContent:
		return slot.Ticket.Name, AccentColor(slot.Ticket.ColorKey), false, true
	case timeline.SlotSpecial:
		return slot.Ticket.Kind.Label(), "", true, true
	case timeline.SlotSpace:
		return slot.Special.Kind.Label(), "", true, true
	}
	return "", "", false, false
}

// AccentColor maps a colour key onto the palette the same way every time.
func AccentColor(key string) string {
	var hash int32
	for _, r := range key {
		hash = (hash << 5) - hash + int32(r)
	}
	h := int(hash)
	if h < 0 {
		h = -h
	}
	return accentColors[h%len(accentColors)]
}

type styleCache struct {
	f      *excelize.File
	styles map[string]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, styles: make(map[string]int)}
}

func (c *styleCache) get(color string, special bool) (int, error) {
	key := color
	if special {
		key = "special"
	}
	if id, ok := c.styles[key]; ok {
		return id, nil
	}

	style := &excelize.Style{
		Font:      &excelize.Font{Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}
	if special {
		style.Font = &excelize.Font{Bold: true, Color: specialFont}
		style.Fill = excelize.Fill{Type: "pattern", Color: []string{specialFill}, Pattern: 1}
	}

	id, err := c.f.NewStyle(style)
	if err != nil {
		return 0, err
	}
	c.styles[key] = id
	return id, nil
}

func writeBuffer(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func colName(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}
