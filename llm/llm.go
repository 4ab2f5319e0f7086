// Package llm holds the embedding and generation model clients. Providers are
// resolved once from configuration; callers only see the two interfaces.
package llm

import (
	"context"
	"fmt"

	"videoChat/config"
)

// Embedder turns text into a fixed-length vector. The index build embeds one
// chunk per call so a failing chunk can be skipped without losing the batch.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces text from a single-turn prompt. No conversation state is
// kept by the model; all context is re-supplied per call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewProvider builds the embedder and generator for the configured provider.
func NewProvider(cfg *config.Config) (Embedder, Generator, error) {
	switch cfg.Provider {
	case "openai":
		c := newOpenAIProvider(cfg)
		return c, c, nil
	case "gemini":
		c, err := newGeminiProvider(cfg)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case "mock", "":
		m := &MockProvider{}
		return m, m, nil
	}
	return nil, nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
}
