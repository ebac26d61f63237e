package itinerary

import (
	"bytes"
	"encoding/json"
	"testing"
)

const mistypedPlan = `{
  "destination": "Hội An",
  "overview": "Phố cổ và biển.",
  "timeline": [
    {"day": "Ngày 1", "weather": "Nắng", "schedule": [
      {"time": "08:00", "activity": "Dạo phố", "venue": "Chùa Cầu", "travel_tips": "Đi bộ", "rating": 5},
      {"time": "11:00", "activity": "Ăn trưa", "venue": "Chợ Hội An", "travel_tips": ["Xe đạp 10 phút"]}
    ]},
    "Ngày 2 tự do"
  ],
  "food": ["Cao lầu"],
  "tips": [{"tip": "Mang mũ"}],
  "budget_summary": "khoảng 2 triệu"
}`

func TestNormalize_NestedMismatchesPassThrough(t *testing.T) {
	p, err := Normalize(mistypedPlan)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(p.Timeline) != 2 || p.Timeline[0].Schedule[0].Venue != "Chùa Cầu" {
		t.Fatalf("typed fields not decoded: %+v", p.Timeline)
	}
	if w := p.Timeline[0].Weather; w == nil || w.Condition != "" || !w.rest.opaque() {
		t.Fatalf("string weather should stay raw, got %+v", w)
	}
	if len(p.Tips) != 0 || len(p.Food) != 1 || p.Food[0].Name != "" {
		t.Fatalf("unexpected collections: tips=%v food=%+v", p.Tips, p.Food)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got struct {
		Timeline []json.RawMessage `json:"timeline"`
		Food     []string          `json:"food"`
		Tips     []struct {
			Tip string `json:"tip"`
		} `json:"tips"`
		BudgetSummary string `json:"budget_summary"`
	}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("re-decode %s: %v", out, err)
	}
	if len(got.Food) != 1 || got.Food[0] != "Cao lầu" {
		t.Fatalf("food not passed through: %s", out)
	}
	if len(got.Tips) != 1 || got.Tips[0].Tip != "Mang mũ" {
		t.Fatalf("tips not passed through: %s", out)
	}
	if got.BudgetSummary != "khoảng 2 triệu" {
		t.Fatalf("budget summary not passed through: %s", out)
	}
	if string(got.Timeline[1]) != `"Ngày 2 tự do"` {
		t.Fatalf("non-object day not passed through: %s", got.Timeline[1])
	}

	var day struct {
		Weather  string `json:"weather"`
		Schedule []struct {
			Activity   string          `json:"activity"`
			TravelTips json.RawMessage `json:"travel_tips"`
			Rating     int             `json:"rating"`
		} `json:"schedule"`
	}
	if err := json.Unmarshal(got.Timeline[0], &day); err != nil {
		t.Fatalf("decode day: %v", err)
	}
	if day.Weather != "Nắng" || day.Schedule[0].Rating != 5 || string(day.Schedule[0].TravelTips) != `"Đi bộ"` {
		t.Fatalf("day members not passed through: %s", got.Timeline[0])
	}
	if day.Schedule[1].Activity != "Ăn trưa" || string(day.Schedule[1].TravelTips) != `["Xe đạp 10 phút"]` {
		t.Fatalf("second item not passed through: %s", got.Timeline[0])
	}
}

func TestPlanEncodingIsStable(t *testing.T) {
	p, err := Normalize(mistypedPlan)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	first, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var again Plan
	if err := json.Unmarshal(first, &again); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	second, err := json.Marshal(&again)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("encoding changed across a store round trip:\n%s\n%s", first, second)
	}
}

func TestTypedValueWinsOverRawOnceSet(t *testing.T) {
	var item ScheduleItem
	if err := json.Unmarshal([]byte(`{"activity":"Cà phê","google_maps_link":7,"is_trending":{"x":1}}`), &item); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	out, _ := json.Marshal(item)
	if !bytes.Contains(out, []byte(`"google_maps_link":7`)) {
		t.Fatalf("raw link should survive while unset: %s", out)
	}

	item.GoogleMapsLink = "https://maps.example/cafe"
	out, _ = json.Marshal(item)
	if !bytes.Contains(out, []byte(`"google_maps_link":"https://maps.example/cafe"`)) {
		t.Fatalf("filled link should replace the raw value: %s", out)
	}
}

func TestDecodeMembersResetsPartialTargets(t *testing.T) {
	var tips []string
	rest := decodeMembers([]byte(`{"tips":["a",{"b":1}]}`), map[string]any{"tips": &tips})
	if tips != nil {
		t.Fatalf("partially decoded target should be reset, got %v", tips)
	}
	if string(rest.extra["tips"]) != `["a",{"b":1}]` {
		t.Fatalf("raw member not kept: %s", rest.extra["tips"])
	}
}

func TestTextRejectsObjects(t *testing.T) {
	var txt Text
	if err := txt.UnmarshalJSON([]byte(`{"h":8}`)); err == nil {
		t.Fatal("expected an error for an object")
	}
	if err := txt.UnmarshalJSON([]byte(`12.5`)); err != nil || txt != "12.5" {
		t.Fatalf("number should decode as text, got %q %v", txt, err)
	}
}

func TestLinkFiller_SkipsOpaqueTips(t *testing.T) {
	p, err := Normalize(`{"destination":"Hội An","overview":"x","timeline":[{"day":"1","schedule":[
		{"activity":"a","venue":"Chùa Cầu"},
		{"activity":"b","venue":"Chợ Hội An","travel_tips":["Đi bộ"]}
	]}]}`)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	legs := &stubLegs{}
	if n := NewLinkFiller(nil, legs, nil).Fill(t.Context(), p); n != 0 || len(legs.origins) != 0 {
		t.Fatalf("opaque tip should be left alone, got n=%d calls=%d", n, len(legs.origins))
	}
}

func TestPlanEncodesEmptyPackingSuggestions(t *testing.T) {
	p, err := Normalize(`{"destination":"Đà Lạt","overview":"Nửa ngày.","timeline":[{"day":"Buổi sáng","schedule":[]}],"accommodation":[],"packing_suggestions":[]}`)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Contains(out, []byte(`"packing_suggestions":[]`)) || !bytes.Contains(out, []byte(`"accommodation":[]`)) {
		t.Fatalf("empty arrays should be encoded: %s", out)
	}
}
