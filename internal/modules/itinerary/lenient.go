// README: Tolerant decoding for model-written plan fields; members that do not fit keep their raw JSON.
package itinerary

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// passthrough holds the JSON a typed value could not represent. extra keeps
// object members that were unknown or ill-typed; whole keeps a value that was
// not an object at all. Both are written back unchanged on encode.
type passthrough struct {
	extra map[string]json.RawMessage
	whole json.RawMessage
}

// opaque reports whether the value was not a JSON object.
func (p passthrough) opaque() bool { return p.whole != nil }

// decodeMembers decodes each member of a JSON object into the target
// registered for its key. A member that fails to decode leaves its target
// zeroed and is kept raw.
func decodeMembers(data []byte, targets map[string]any) passthrough {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return passthrough{}
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &members); err != nil {
		return passthrough{whole: append(json.RawMessage(nil), trimmed...)}
	}

	var p passthrough
	for key, raw := range members {
		if target, ok := targets[key]; ok {
			if err := json.Unmarshal(raw, target); err == nil {
				continue
			}
			reflect.ValueOf(target).Elem().SetZero()
		}
		if p.extra == nil {
			p.extra = map[string]json.RawMessage{}
		}
		p.extra[key] = raw
	}
	return p
}

// encode marshals v and restores raw members whose typed value is still empty.
func (p passthrough) encode(v any) ([]byte, error) {
	if p.opaque() {
		return p.whole, nil
	}
	data, err := json.Marshal(v)
	if err != nil || len(p.extra) == 0 {
		return data, err
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	for key, raw := range p.extra {
		if cur, ok := members[key]; ok && !emptyJSON(cur) {
			continue
		}
		members[key] = raw
	}
	return json.Marshal(members)
}

func emptyJSON(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case `""`, `null`, `0`, `false`, `[]`, `{}`:
		return true
	}
	return false
}

func (t *TravelTip) UnmarshalJSON(data []byte) error {
	*t = TravelTip{}
	t.rest = decodeMembers(data, map[string]any{
		"method":           &t.Method,
		"duration":         &t.Duration,
		"notes":            &t.Notes,
		"google_maps_link": &t.GoogleMapsLink,
	})
	return nil
}

func (t TravelTip) MarshalJSON() ([]byte, error) {
	type plain TravelTip
	return t.rest.encode(plain(t))
}

func (s *ScheduleItem) UnmarshalJSON(data []byte) error {
	*s = ScheduleItem{}
	s.rest = decodeMembers(data, map[string]any{
		"time":             &s.Time,
		"activity":         &s.Activity,
		"venue":            &s.Venue,
		"estimated_cost":   &s.EstimatedCost,
		"google_maps_link": &s.GoogleMapsLink,
		"travel_tips":      &s.TravelTips,
		"is_trending":      &s.IsTrending,
		"trending_reason":  &s.TrendingReason,
	})
	return nil
}

func (s ScheduleItem) MarshalJSON() ([]byte, error) {
	type plain ScheduleItem
	return s.rest.encode(plain(s))
}

func (w *WeatherInfo) UnmarshalJSON(data []byte) error {
	*w = WeatherInfo{}
	w.rest = decodeMembers(data, map[string]any{
		"condition":   &w.Condition,
		"temperature": &w.Temperature,
		"rain_chance": &w.RainChance,
	})
	return nil
}

func (w WeatherInfo) MarshalJSON() ([]byte, error) {
	type plain WeatherInfo
	return w.rest.encode(plain(w))
}

func (d *DayPlan) UnmarshalJSON(data []byte) error {
	*d = DayPlan{}
	d.rest = decodeMembers(data, map[string]any{
		"day":          &d.Day,
		"title":        &d.Title,
		"weather_note": &d.WeatherNote,
		"weather":      &d.Weather,
		"schedule":     &d.Schedule,
	})
	return nil
}

func (d DayPlan) MarshalJSON() ([]byte, error) {
	type plain DayPlan
	return d.rest.encode(plain(d))
}

func (f *FoodSuggestion) UnmarshalJSON(data []byte) error {
	*f = FoodSuggestion{}
	f.rest = decodeMembers(data, map[string]any{
		"name":        &f.Name,
		"description": &f.Description,
	})
	return nil
}

func (f FoodSuggestion) MarshalJSON() ([]byte, error) {
	type plain FoodSuggestion
	return f.rest.encode(plain(f))
}

func (a *AccommodationSuggestion) UnmarshalJSON(data []byte) error {
	*a = AccommodationSuggestion{}
	a.rest = decodeMembers(data, map[string]any{
		"name":   &a.Name,
		"type":   &a.Type,
		"reason": &a.Reason,
	})
	return nil
}

func (a AccommodationSuggestion) MarshalJSON() ([]byte, error) {
	type plain AccommodationSuggestion
	return a.rest.encode(plain(a))
}

func (b *BudgetLine) UnmarshalJSON(data []byte) error {
	*b = BudgetLine{}
	b.rest = decodeMembers(data, map[string]any{
		"category": &b.Category,
		"amount":   &b.Amount,
		"note":     &b.Note,
	})
	return nil
}

func (b BudgetLine) MarshalJSON() ([]byte, error) {
	type plain BudgetLine
	return b.rest.encode(plain(b))
}

func (b *BudgetSummary) UnmarshalJSON(data []byte) error {
	*b = BudgetSummary{}
	b.rest = decodeMembers(data, map[string]any{
		"total_estimated": &b.TotalEstimated,
		"breakdown":       &b.Breakdown,
		"vs_budget_note":  &b.VsBudgetNote,
	})
	return nil
}

func (b BudgetSummary) MarshalJSON() ([]byte, error) {
	type plain BudgetSummary
	return b.rest.encode(plain(b))
}

func (p *Plan) UnmarshalJSON(data []byte) error {
	*p = Plan{}
	p.rest = decodeMembers(data, map[string]any{
		"id":                  &p.ID,
		"destination":         &p.Destination,
		"overview":            &p.Overview,
		"timeline":            &p.Timeline,
		"food":                &p.Food,
		"accommodation":       &p.Accommodation,
		"tips":                &p.Tips,
		"packing_suggestions": &p.PackingSuggestions,
		"traffic_alerts":      &p.TrafficAlerts,
		"safety_alerts":       &p.SafetyAlerts,
		"budget_summary":      &p.BudgetSummary,
	})
	return nil
}

func (p Plan) MarshalJSON() ([]byte, error) {
	type plain Plan
	return p.rest.encode(plain(p))
}
