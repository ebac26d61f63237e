// README: Post-generation enrichment; fills missing map links and travel durations from Google Maps.
package itinerary

import (
	"context"
	"log/slog"
	"strings"
)

// VenueLocator resolves a venue name to a map link.
type VenueLocator interface {
	LocateVenue(ctx context.Context, venue, near string) (string, error)
}

// LegEstimator returns a display duration and directions link for one leg.
type LegEstimator interface {
	EstimateLeg(ctx context.Context, origin, destination, method string) (duration, link string, err error)
}

// LinkFiller fills blanks the model left in a plan. Lookups that fail are
// skipped and never fail the whole fill.
type LinkFiller struct {
	venues VenueLocator
	legs   LegEstimator
	logger *slog.Logger
}

// NewLinkFiller creates a filler. legs may be nil to skip travel tips.
func NewLinkFiller(venues VenueLocator, legs LegEstimator, logger *slog.Logger) *LinkFiller {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkFiller{venues: venues, legs: legs, logger: logger}
}

// Fill edits p in place and returns the number of fields it filled.
func (f *LinkFiller) Fill(ctx context.Context, p *Plan) int {
	filled := 0
	located := map[string]string{}

	for d := range p.Timeline {
		schedule := p.Timeline[d].Schedule
		for i := range schedule {
			if ctx.Err() != nil {
				return filled
			}
			item := &schedule[i]
			venue := strings.TrimSpace(item.Venue)

			if item.GoogleMapsLink == "" && venue != "" && f.venues != nil {
				link, ok := located[venue]
				if !ok {
					var err error
					link, err = f.venues.LocateVenue(ctx, venue, p.Destination)
					if err != nil {
						f.logger.Debug("venue lookup failed", "venue", venue, "err", err)
					}
					located[venue] = link
				}
				if link != "" {
					item.GoogleMapsLink = link
					filled++
				}
			}

			if f.legs == nil || i == 0 || venue == "" {
				continue
			}
			prev := strings.TrimSpace(schedule[i-1].Venue)
			if prev == "" {
				continue
			}
			for t := range item.TravelTips {
				filled += f.fillTip(ctx, &item.TravelTips[t], prev, venue)
			}
		}
	}
	return filled
}

func (f *LinkFiller) fillTip(ctx context.Context, tip *TravelTip, origin, destination string) int {
	if tip.rest.opaque() || strings.TrimSpace(string(tip.Duration)) != "" && tip.GoogleMapsLink != "" {
		return 0
	}
	duration, link, err := f.legs.EstimateLeg(ctx, origin, destination, tip.Method)
	if err != nil {
		f.logger.Debug("leg estimate failed", "origin", origin, "destination", destination, "err", err)
		return 0
	}
	n := 0
	if strings.TrimSpace(string(tip.Duration)) == "" && duration != "" {
		tip.Duration = Text(duration)
		n++
	}
	if tip.GoogleMapsLink == "" && link != "" {
		tip.GoogleMapsLink = link
		n++
	}
	return n
}
