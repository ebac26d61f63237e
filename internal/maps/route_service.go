package maps

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

// RouteService handles interactions with Google Maps Directions API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// ModeForMethod maps a free-text travel method (as written in itineraries) to
// a directions travel mode. Unknown methods fall back to driving.
func ModeForMethod(method string) maps.Mode {
	m := strings.ToLower(method)
	switch {
	case strings.Contains(m, "đi bộ"), strings.Contains(m, "walk"):
		return maps.TravelModeWalking
	case strings.Contains(m, "xe đạp"), strings.Contains(m, "bicycl"), strings.Contains(m, "bike"):
		return maps.TravelModeBicycling
	case strings.Contains(m, "buýt"), strings.Contains(m, "bus"), strings.Contains(m, "tàu"),
		strings.Contains(m, "metro"), strings.Contains(m, "train"):
		return maps.TravelModeTransit
	default:
		return maps.TravelModeDriving
	}
}

// TravelTime returns the duration of the first route from origin to destination.
func (s *RouteService) TravelTime(ctx context.Context, origin, destination string, mode maps.Mode) (time.Duration, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        mode,
		Language:    "vi",
		Region:      "VN",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, fmt.Errorf("no route found")
	}
	return routes[0].Legs[0].Duration, nil
}

// EstimateLeg returns a display duration and a directions link for one leg.
func (s *RouteService) EstimateLeg(ctx context.Context, origin, destination, method string) (string, string, error) {
	mode := ModeForMethod(method)
	d, err := s.TravelTime(ctx, origin, destination, mode)
	if err != nil {
		return "", "", err
	}
	return FormatDuration(d), DirectionsURL(origin, destination, mode), nil
}

// FormatDuration renders d as "Khoảng N phút" or "Khoảng H giờ M phút".
func FormatDuration(d time.Duration) string {
	minutes := int(math.Ceil(d.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	if minutes < 60 {
		return fmt.Sprintf("Khoảng %d phút", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("Khoảng %d giờ", h)
	}
	return fmt.Sprintf("Khoảng %d giờ %d phút", h, m)
}

// DirectionsURL builds a Maps URLs directions link.
func DirectionsURL(origin, destination string, mode maps.Mode) string {
	v := url.Values{}
	v.Set("api", "1")
	v.Set("origin", origin)
	v.Set("destination", destination)
	if mode != "" {
		v.Set("travelmode", string(mode))
	}
	return "https://www.google.com/maps/dir/?" + v.Encode()
}
