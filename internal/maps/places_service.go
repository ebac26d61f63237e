package maps

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"googlemaps.github.io/maps"
)

// ErrNoPlace is returned when a text search finds nothing usable.
var ErrNoPlace = errors.New("no matching place")

// Place represents a simplified location result.
type Place struct {
	Name    string
	Address string
	Rating  float32
	PlaceID string
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client *maps.Client
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// Search runs a text search for query, optionally biased towards near.
// Results keep the API's ranking.
func (s *PlacesService) Search(ctx context.Context, query, near string) ([]Place, error) {
	fullQuery := strings.TrimSpace(query)
	if near = strings.TrimSpace(near); near != "" && !containsIgnoreCase(fullQuery, near) {
		fullQuery = fmt.Sprintf("%s, %s", fullQuery, near)
	}

	resp, err := s.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    fullQuery,
		Language: "vi",
		Region:   "VN",
	})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	results := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, Place{
			Name:    r.Name,
			Address: r.FormattedAddress,
			Rating:  r.Rating,
			PlaceID: r.PlaceID,
		})
	}
	return results, nil
}

// LocateVenue returns a Google Maps link pinned to the best match for venue.
func (s *PlacesService) LocateVenue(ctx context.Context, venue, near string) (string, error) {
	if strings.TrimSpace(venue) == "" {
		return "", ErrNoPlace
	}
	places, err := s.Search(ctx, venue, near)
	if err != nil {
		return "", err
	}
	if len(places) == 0 || places[0].PlaceID == "" {
		return "", fmt.Errorf("%w: %q", ErrNoPlace, venue)
	}
	top := places[0]
	return SearchURL(top.Name+", "+top.Address, top.PlaceID), nil
}

// SearchURL builds a Maps URLs search link. placeID may be empty.
func SearchURL(query, placeID string) string {
	v := url.Values{}
	v.Set("api", "1")
	v.Set("query", query)
	if placeID != "" {
		v.Set("query_place_id", placeID)
	}
	return "https://www.google.com/maps/search/?" + v.Encode()
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
