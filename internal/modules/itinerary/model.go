// README: Trip request input and itinerary plan output of the generation pipeline.
package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// TripMode selects the prompt template and which request fields are read.
type TripMode string

const (
	ModeLong  TripMode = "long"
	ModeShort TripMode = "short"
)

// MaxPersonalNoteLen is the upper bound, in characters, of TripRequest.PersonalNote.
const MaxPersonalNoteLen = 500

var ErrInvalidRequest = errors.New("invalid trip request")

type Duration struct {
	Days   int `json:"days"`
	Nights int `json:"nights"`
}

// TripRequest is the normalized user input for one generation.
// Only one of Moods/ShortMoods is read, depending on Mode.
type TripRequest struct {
	Mode          TripMode    `json:"trip_mode"`
	StartLocation string      `json:"start_location"`
	Destination   string      `json:"destination"`
	StartDate     string      `json:"start_date,omitempty"`
	Duration      Duration    `json:"duration"`
	StartTime     string      `json:"start_time,omitempty"`
	EndTime       string      `json:"end_time,omitempty"`
	Budget        int64       `json:"budget"`
	Moods         []Mood      `json:"moods,omitempty"`
	ShortMoods    []ShortMood `json:"short_moods,omitempty"`
	PersonalNote  string      `json:"personal_note,omitempty"`
}

// Validate checks the request invariants. BuildPrompt assumes they hold and
// never calls this itself.
func (r TripRequest) Validate() error {
	switch r.Mode {
	case ModeLong, ModeShort:
	default:
		return fmt.Errorf("%w: unknown trip mode %q", ErrInvalidRequest, r.Mode)
	}
	d := r.Duration
	if d.Days < 0 || d.Nights < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidRequest)
	}
	if r.Mode == ModeLong && d.Days < 1 {
		return fmt.Errorf("%w: a long trip needs at least one day", ErrInvalidRequest)
	}
	if d.Days > 0 && d.Nights >= d.Days {
		return fmt.Errorf("%w: nights must be fewer than days", ErrInvalidRequest)
	}
	if d.Days == 0 && d.Nights > 0 {
		return fmt.Errorf("%w: same-day trip cannot have nights", ErrInvalidRequest)
	}
	if r.Budget < 0 {
		return fmt.Errorf("%w: negative budget", ErrInvalidRequest)
	}
	if r.StartDate != "" {
		if _, err := time.Parse(time.DateOnly, r.StartDate); err != nil {
			return fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidRequest)
		}
	}
	if utf8.RuneCountInString(r.PersonalNote) > MaxPersonalNoteLen {
		return fmt.Errorf("%w: personal note longer than %d characters", ErrInvalidRequest, MaxPersonalNoteLen)
	}
	for _, m := range r.Moods {
		if _, ok := m.phrase(); !ok {
			return fmt.Errorf("%w: unknown mood %q", ErrInvalidRequest, m)
		}
	}
	for _, m := range r.ShortMoods {
		if _, ok := m.phrase(); !ok {
			return fmt.Errorf("%w: unknown short mood %q", ErrInvalidRequest, m)
		}
	}
	return nil
}

// Text is a free-text field that tolerates models emitting numbers or booleans
// where a string was asked for. Objects and arrays are rejected so the
// enclosing value keeps them raw.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Text(n.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*t = Text(strconv.FormatBool(b))
		return nil
	}
	return errNotText
}

var errNotText = errors.New("object or array where text was expected")

// Flag is a boolean that also accepts "true"/"false" strings and 0/1.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var t Text
	if err := t.UnmarshalJSON(data); err != nil {
		*f = false
		return nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(string(t)))
	*f = Flag(err == nil && v)
	return nil
}

type TravelTip struct {
	Method         string `json:"method"`
	Duration       Text   `json:"duration"`
	Notes          string `json:"notes"`
	GoogleMapsLink string `json:"google_maps_link"`

	rest passthrough
}

type ScheduleItem struct {
	Time           Text        `json:"time"`
	Activity       string      `json:"activity"`
	Venue          string      `json:"venue,omitempty"`
	EstimatedCost  Text        `json:"estimated_cost,omitempty"`
	GoogleMapsLink string      `json:"google_maps_link,omitempty"`
	TravelTips     []TravelTip `json:"travel_tips,omitempty"`
	IsTrending     Flag        `json:"is_trending,omitempty"`
	TrendingReason string      `json:"trending_reason,omitempty"`

	rest passthrough
}

type WeatherInfo struct {
	Condition   string `json:"condition"`
	Temperature Text   `json:"temperature"`
	RainChance  Text   `json:"rain_chance,omitempty"`

	rest passthrough
}

type DayPlan struct {
	Day         Text           `json:"day"`
	Title       string         `json:"title"`
	WeatherNote string         `json:"weather_note,omitempty"`
	Weather     *WeatherInfo   `json:"weather,omitempty"`
	Schedule    []ScheduleItem `json:"schedule"`

	rest passthrough
}

type FoodSuggestion struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	rest passthrough
}

type AccommodationSuggestion struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Reason string `json:"reason"`

	rest passthrough
}

type BudgetLine struct {
	Category string `json:"category"`
	Amount   Text   `json:"amount"`
	Note     string `json:"note,omitempty"`

	rest passthrough
}

type BudgetSummary struct {
	TotalEstimated Text         `json:"total_estimated"`
	Breakdown      []BudgetLine `json:"breakdown"`
	VsBudgetNote   string       `json:"vs_budget_note"`

	rest passthrough
}

// Plan is the validated itinerary handed to the caller. ID stays empty until
// the caller assigns it with AssignID.
type Plan struct {
	ID                 string                    `json:"id,omitempty"`
	Destination        string                    `json:"destination"`
	Overview           string                    `json:"overview"`
	Timeline           []DayPlan                 `json:"timeline"`
	Food               []FoodSuggestion          `json:"food"`
	Accommodation      []AccommodationSuggestion `json:"accommodation"`
	Tips               []string                  `json:"tips"`
	PackingSuggestions []string                  `json:"packing_suggestions"`
	TrafficAlerts      []string                  `json:"traffic_alerts,omitempty"`
	SafetyAlerts       []string                  `json:"safety_alerts,omitempty"`
	BudgetSummary      *BudgetSummary            `json:"budget_summary,omitempty"`

	rest passthrough
}

// AssignID sets the plan id to "<destination>-<unix millis>".
func AssignID(p *Plan, now time.Time) {
	p.ID = fmt.Sprintf("%s-%d", p.Destination, now.UnixMilli())
}

// Clone returns a deep copy so edits never reach the original.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := *p
	out.Timeline = cloneSlice(p.Timeline)
	for i, d := range out.Timeline {
		if d.Weather != nil {
			w := *d.Weather
			out.Timeline[i].Weather = &w
		}
		out.Timeline[i].Schedule = cloneSlice(d.Schedule)
		for j, it := range out.Timeline[i].Schedule {
			out.Timeline[i].Schedule[j].TravelTips = cloneSlice(it.TravelTips)
		}
	}
	out.Food = cloneSlice(p.Food)
	out.Accommodation = cloneSlice(p.Accommodation)
	out.Tips = cloneSlice(p.Tips)
	out.PackingSuggestions = cloneSlice(p.PackingSuggestions)
	out.TrafficAlerts = cloneSlice(p.TrafficAlerts)
	out.SafetyAlerts = cloneSlice(p.SafetyAlerts)
	if p.BudgetSummary != nil {
		bs := *p.BudgetSummary
		bs.Breakdown = cloneSlice(p.BudgetSummary.Breakdown)
		out.BudgetSummary = &bs
	}
	return &out
}

// cloneSlice copies s, keeping nil and empty distinct.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

var ErrItemOutOfRange = errors.New("schedule item out of range")

// SetItemTime edits the time of one schedule item in place.
func (p *Plan) SetItemTime(dayIndex, itemIndex int, value string) error {
	if dayIndex < 0 || dayIndex >= len(p.Timeline) {
		return ErrItemOutOfRange
	}
	schedule := p.Timeline[dayIndex].Schedule
	if itemIndex < 0 || itemIndex >= len(schedule) {
		return ErrItemOutOfRange
	}
	schedule[itemIndex].Time = Text(strings.TrimSpace(value))
	return nil
}

// SavedPlan is a plan persisted for one owner.
type SavedPlan struct {
	OwnerUID  string
	Plan      *Plan
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the list view of a saved plan.
type Summary struct {
	ID          string    `json:"id"`
	Destination string    `json:"destination"`
	Days        int       `json:"days"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
