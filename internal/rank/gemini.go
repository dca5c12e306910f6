package rank

import (
	"context"
	"fmt"
	"time"

	"runscan/internal/logging"

	"google.golang.org/genai"
)

// GeminiConfig holds configuration for the Gemini ranker.
type GeminiConfig struct {
	APIKey  string
	BaseURL string // optional endpoint override
	Model   string
	Timeout time.Duration
}

// generateFunc sends one prompt pair and returns the reply text.
type generateFunc func(ctx context.Context, system, user string) (string, error)

// GeminiRanker ranks results with Google's GenAI SDK.
type GeminiRanker struct {
	model    string
	timeout  time.Duration
	generate generateFunc
}

// NewGeminiRanker creates a Gemini-backed ranker.
func NewGeminiRanker(ctx context.Context, cfg GeminiConfig) (*GeminiRanker, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	r := &GeminiRanker{model: cfg.Model, timeout: cfg.Timeout}
	r.generate = func(ctx context.Context, system, user string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, r.model,
			[]*genai.Content{genai.NewContentFromText(user, genai.RoleUser)},
			&genai.GenerateContentConfig{
				SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
				Temperature:       genai.Ptr[float32](0),
				ResponseMIMEType:  "application/json",
			},
		)
		if err != nil {
			return "", fmt.Errorf("GenAI generate failed: %w", err)
		}
		return resp.Text(), nil
	}
	return r, nil
}

func (r *GeminiRanker) Name() string { return "gemini:" + r.model }

// Rank sends outputs to Gemini and decodes its reordering.
func (r *GeminiRanker) Rank(ctx context.Context, outputs [][]string) ([][]string, error) {
	prompt, err := userPrompt(outputs)
	if err != nil {
		return nil, err
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	logging.RankDebug("[Gemini] Rank: model=%s results=%d", r.model, len(outputs))
	text, err := r.generate(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return parseRanked(text)
}
