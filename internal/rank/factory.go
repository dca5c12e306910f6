package rank

import (
	"context"
	"fmt"

	"runscan/internal/config"
	"runscan/internal/logging"
)

// NewRanker builds the ranker selected by cfg.
func NewRanker(ctx context.Context, cfg *config.Config) (Ranker, error) {
	rc := cfg.Ranking
	logging.BootDebug("NewRanker: provider=%s model=%s", rc.Provider, rc.Model)

	switch rc.Provider {
	case "", config.ProviderNone:
		return NoneRanker{}, nil
	case config.ProviderLocal:
		return LocalRanker{}, nil
	case config.ProviderOpenAI:
		oc := DefaultOpenAIConfig(rc.APIKey)
		if rc.BaseURL != "" {
			oc.BaseURL = rc.BaseURL
		}
		if rc.Model != "" {
			oc.Model = rc.Model
		}
		oc.Timeout = cfg.GetRankTimeout()
		return NewOpenAIRanker(oc), nil
	case config.ProviderGemini:
		return NewGeminiRanker(ctx, GeminiConfig{
			APIKey:  rc.APIKey,
			BaseURL: rc.BaseURL,
			Model:   rc.Model,
			Timeout: cfg.GetRankTimeout(),
		})
	default:
		return nil, fmt.Errorf("unknown ranking provider: %s (valid: %v)", rc.Provider, config.ValidProviders)
	}
}
