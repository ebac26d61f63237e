// README: Builds the configured LLM gateway and map-link filler shared by the API and the demo CLI.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"moodtrip/internal/ai"
	"moodtrip/internal/config"
	"moodtrip/internal/maps"
	"moodtrip/internal/modules/itinerary"
)

// NewGateway returns the gateway for cfg.Gateway.Provider and a close func.
func NewGateway(ctx context.Context, cfg config.Config) (ai.Gateway, func() error, error) {
	g := cfg.Gateway
	switch g.Provider {
	case config.ProviderProxy:
		gw := ai.NewChatGateway(ai.ChatConfig{
			BaseURL:     g.BaseURL,
			APIKey:      g.APIKey,
			Model:       g.Model,
			MaxTokens:   g.MaxTokens,
			Temperature: g.Temperature,
			Timeout:     g.Timeout,
		})
		return gw, func() error { return nil }, nil
	case config.ProviderGemini:
		gw, err := ai.NewGeminiGateway(ctx, ai.GeminiConfig{
			APIKey:      cfg.Gemini.APIKey,
			Model:       g.Model,
			MaxTokens:   g.MaxTokens,
			Temperature: g.Temperature,
			Timeout:     g.Timeout,
			JSONOutput:  true,
		})
		if err != nil {
			return nil, nil, err
		}
		return gw, gw.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown gateway provider %q", g.Provider)
	}
}

// NewLinkFiller returns nil when no Maps key is configured.
func NewLinkFiller(cfg config.Config, logger *slog.Logger) (*itinerary.LinkFiller, error) {
	if cfg.Maps.APIKey == "" {
		return nil, nil
	}
	places, err := maps.NewPlacesService(cfg.Maps.APIKey)
	if err != nil {
		return nil, err
	}
	routes, err := maps.NewRouteService(cfg.Maps.APIKey)
	if err != nil {
		return nil, err
	}
	return itinerary.NewLinkFiller(places, routes, logger), nil
}
