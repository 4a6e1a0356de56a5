package schedule

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const (
	MinEstimate = 0.5
	MaxEstimate = 24.0

	// BlocksPerDay is the number of half-hour blocks between two midnights.
	BlocksPerDay = 48

	TurnoverSuffix = " (Turnover)"
)

type Kind string

const (
	KindNormal   Kind = "normal"
	KindBreak    Kind = "break"
	KindMeeting  Kind = "meeting"
	KindTraining Kind = "training"
)

// IsSpecial reports whether tickets of this kind space around normal tickets
// instead of being placed atomically.
func (k Kind) IsSpecial() bool {
	switch k {
	case KindBreak, KindMeeting, KindTraining:
		return true
	}
	return false
}

// Label is the display name of a special kind, e.g. "Break".
func (k Kind) Label() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

func (k Kind) Valid() bool {
	return k == KindNormal || k.IsSpecial()
}

type Category string

const (
	CategoryProduction Category = "Production"
	CategoryDesign     Category = "Design"
	CategorySP         Category = "SP"
	CategorySpecial    Category = "Special"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryProduction, CategoryDesign, CategorySP, CategorySpecial:
		return true
	}
	return false
}

type Ticket struct {
	ID               string
	Name             string
	Link             string
	Estimate         float64
	OriginalEstimate float64
	Kind             Kind
	Category         Category
	Placement        Placement
	IsTurnover       bool
	ColorKey         string
}

// Blocks is the ticket's own length in half-hour blocks.
func (t Ticket) Blocks() int {
	return EstimateBlocks(t.Estimate)
}

// Span is the half-open block range the ticket occupies. Unplaced tickets
// have an empty span.
func (t Ticket) Span() Span {
	if !t.Placement.IsPlaced() {
		return Span{}
	}
	return Span{Start: t.Placement.Start, End: t.Placement.Start + t.Blocks()}
}

// BaseName strips the turnover suffix.
func (t Ticket) BaseName() string {
	return strings.TrimSpace(strings.TrimSuffix(t.Name, TurnoverSuffix))
}

// IsTurnoverName reports whether the label carries the turnover suffix.
func (t Ticket) IsTurnoverName() bool {
	return strings.HasSuffix(t.Name, TurnoverSuffix)
}

// RestoreEstimate is the estimate to go back to when split fragments merge.
func (t Ticket) RestoreEstimate() float64 {
	if t.OriginalEstimate > 0 {
		return t.OriginalEstimate
	}
	return t.Estimate
}

// OnTimeline reports whether the ticket is placed for user on date.
func (t Ticket) OnTimeline(user, date string) bool {
	return t.Placement.IsPlaced() && t.Placement.User == user && t.Placement.Date == date
}

type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) Empty() bool {
	return s.End <= s.Start
}

func (s Span) Contains(pos int) bool {
	return pos >= s.Start && pos < s.End
}

func (s Span) Intersects(o Span) bool {
	if s.Empty() || o.Empty() {
		return false
	}
	return s.Start < o.End && o.Start < s.End
}

func EstimateBlocks(estimate float64) int {
	return int(math.Round(estimate * 2))
}

func BlocksToHours(blocks int) float64 {
	return float64(blocks) / 2
}

// ValidateEstimate checks the half-hour grid and the 0.5..24 bounds.
func ValidateEstimate(estimate float64) error {
	if math.IsNaN(estimate) || estimate < MinEstimate || estimate > MaxEstimate {
		return fmt.Errorf("%w: %v is outside %v..%v hours", ErrInvalidEstimate, estimate, MinEstimate, MaxEstimate)
	}
	if estimate*2 != math.Trunc(estimate*2) {
		return fmt.Errorf("%w: %v is not a multiple of 0.5", ErrInvalidEstimate, estimate)
	}
	return nil
}

// RoundEstimate snaps free-form input to the half-hour grid and validates it.
func RoundEstimate(value float64) (float64, error) {
	if math.IsNaN(value) || value <= 0 || value > MaxEstimate {
		return 0, fmt.Errorf("%w: enter a value between %v and %v hours", ErrInvalidEstimate, MinEstimate, MaxEstimate)
	}
	rounded := math.Round(value*2) / 2
	if rounded < MinEstimate {
		rounded = MinEstimate
	}
	return rounded, nil
}

type ticketJSON struct {
	ID               string   `json:"id"`
	Ticket           string   `json:"ticket"`
	Link             string   `json:"link"`
	Estimate         float64  `json:"estimate"`
	OriginalEstimate float64  `json:"original_estimate"`
	Type             Kind     `json:"type"`
	Category         Category `json:"category"`
	AssignedUser     *string  `json:"assigned_user"`
	StartIndex       *int     `json:"start_index"`
	Date             *string  `json:"date"`
	IsTurnover       bool     `json:"is_turnover"`
	ColorKey         string   `json:"color_key"`
}

func (t Ticket) MarshalJSON() ([]byte, error) {
	w := ticketJSON{
		ID:               t.ID,
		Ticket:           t.Name,
		Link:             t.Link,
		Estimate:         t.Estimate,
		OriginalEstimate: t.OriginalEstimate,
		Type:             t.Kind,
		Category:         t.Category,
		IsTurnover:       t.IsTurnover,
		ColorKey:         t.ColorKey,
	}
	if t.Placement.IsPlaced() {
		user, date, start := t.Placement.User, t.Placement.Date, t.Placement.Start
		w.AssignedUser, w.Date, w.StartIndex = &user, &date, &start
	}
	return json.Marshal(w)
}

func (t *Ticket) UnmarshalJSON(data []byte) error {
	var w ticketJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Ticket{
		ID:               w.ID,
		Name:             w.Ticket,
		Link:             w.Link,
		Estimate:         w.Estimate,
		OriginalEstimate: w.OriginalEstimate,
		Kind:             w.Type,
		Category:         w.Category,
		IsTurnover:       w.IsTurnover,
		ColorKey:         w.ColorKey,
		Placement:        PlacementFromNullable(w.AssignedUser, w.Date, w.StartIndex),
	}
	if t.Kind == "" {
		t.Kind = KindNormal
	}
	return nil
}
