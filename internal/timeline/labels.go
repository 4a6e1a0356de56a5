package timeline

import "fmt"

// Hours ahead of PST, the zone the day grid is laid out in.
var zoneOffsets = map[string]int{
	"PST": 0,
	"CST": 2,
	"EST": 3,
	"GMT": 8,
}

func Timezones() []string {
	return []string{"PST", "CST", "EST", "GMT"}
}

func KnownTimezone(tz string) bool {
	_, ok := zoneOffsets[tz]
	return ok
}

// TimeLabels renders header labels for blockCount half hours from startHour,
// shifted into tz. Unknown zones fall back to PST.
func TimeLabels(startHour, blockCount int, tz string) []string {
	offset := zoneOffsets[tz]
	labels := make([]string, 0, blockCount)
	for i := 0; i < blockCount; i++ {
		hour := (startHour + i/2 + offset) % 24
		labels = append(labels, clock(hour, (i%2)*30))
	}
	return labels
}

// ExportLabels are the spreadsheet column headers, always in grid time.
func ExportLabels(startHour, blockCount int) []string {
	return TimeLabels(startHour, blockCount, "PST")
}

func clock(hour, minute int) string {
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, period)
}
