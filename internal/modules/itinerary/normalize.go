// README: Response normalizer; raw model text to a Plan with anchor-field checks.
package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MalformedResponseError reports model text that is not valid JSON after
// fence stripping.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("itinerary: malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// InvalidShapeError reports valid JSON whose anchor fields are missing, blank
// or of the wrong type.
type InvalidShapeError struct {
	Missing []string
}

func (e *InvalidShapeError) Error() string {
	return "itinerary: response missing " + strings.Join(e.Missing, ", ")
}

// Normalize converts untrusted model output into a Plan. Only destination,
// overview and timeline are checked; nested fields pass through as received,
// typed where they fit and raw where they do not.
func Normalize(raw string) (*Plan, error) {
	text := stripFence(strings.TrimSpace(raw))

	var doc json.RawMessage
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	if err := checkRawAnchors(doc); err != nil {
		return nil, err
	}

	var plan Plan
	if err := json.Unmarshal(doc, &plan); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}

	// The id belongs to the caller, even if the model invented one.
	plan.ID = ""
	delete(plan.rest.extra, "id")
	if plan.Food == nil {
		plan.Food = []FoodSuggestion{}
	}
	if plan.Accommodation == nil {
		plan.Accommodation = []AccommodationSuggestion{}
	}
	if plan.Tips == nil {
		plan.Tips = []string{}
	}
	if plan.PackingSuggestions == nil {
		plan.PackingSuggestions = []string{}
	}
	return &plan, nil
}

// checkRawAnchors requires destination and overview to be non-blank strings
// and timeline a non-empty array. Anything that is not an object misses all
// three.
func checkRawAnchors(doc json.RawMessage) error {
	var members map[string]json.RawMessage
	_ = json.Unmarshal(doc, &members)

	var missing []string
	if !nonBlankString(members["destination"]) {
		missing = append(missing, "destination")
	}
	var timeline []json.RawMessage
	if err := json.Unmarshal(members["timeline"], &timeline); err != nil || len(timeline) == 0 {
		missing = append(missing, "timeline")
	}
	if !nonBlankString(members["overview"]) {
		missing = append(missing, "overview")
	}
	if len(missing) > 0 {
		return &InvalidShapeError{Missing: missing}
	}
	return nil
}

func nonBlankString(raw json.RawMessage) bool {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false
	}
	return strings.TrimSpace(s) != ""
}

// CheckAnchors reports an *InvalidShapeError when destination, timeline or
// overview is empty.
func CheckAnchors(p *Plan) error {
	var missing []string
	if strings.TrimSpace(p.Destination) == "" {
		missing = append(missing, "destination")
	}
	if len(p.Timeline) == 0 {
		missing = append(missing, "timeline")
	}
	if strings.TrimSpace(p.Overview) == "" {
		missing = append(missing, "overview")
	}
	if len(missing) > 0 {
		return &InvalidShapeError{Missing: missing}
	}
	return nil
}
