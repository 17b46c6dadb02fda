// Package embedding generates vector embeddings for element descriptions.
// Two backends are provided: the Gemini API and a deterministic local
// hashing engine for offline use and tests.
package embedding

import (
	"context"
	"fmt"
	"math"
)

// Engine turns text into vectors.
type Engine interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch generates embeddings for multiple texts in one round trip
	// where the backend supports it.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the dimensionality of produced vectors.
	Dimensions() int
	// Name identifies the backend for logs.
	Name() string
}

// Config selects and parameterizes the backend.
type Config struct {
	Provider string `mapstructure:"provider"` // "genai" or "local"
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
}

// NewEngine builds the configured engine.
func NewEngine(ctx context.Context, cfg Config) (Engine, error) {
	switch cfg.Provider {
	case "genai":
		return NewGenAIEngine(ctx, cfg.APIKey, cfg.Model)
	case "local", "":
		return NewLocalEngine(), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q (use 'genai' or 'local')", cfg.Provider)
	}
}

// Cosine computes the cosine similarity of two vectors: 1 identical, 0
// orthogonal. Vectors of mismatched length are an error.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d != %d", len(a), len(b))
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}
