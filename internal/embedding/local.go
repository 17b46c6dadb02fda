package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const localDimensions = 256

// localEngine is a deterministic hashing embedder: token and character
// trigram buckets, L2-normalized. No network, stable across runs, good
// enough to rank short element descriptions offline and in tests.
type localEngine struct{}

// NewLocalEngine creates the local hashing engine.
func NewLocalEngine() Engine { return localEngine{} }

func (localEngine) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, localDimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		vec[bucket(token)] += 2
		for i := 0; i+3 <= len(token); i++ {
			vec[bucket(token[i:i+3])]++
		}
	}
	var mag float64
	for _, v := range vec {
		mag += float64(v) * float64(v)
	}
	if mag > 0 {
		norm := float32(1 / math.Sqrt(mag))
		for i := range vec {
			vec[i] *= norm
		}
	}
	return vec, nil
}

func (e localEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (localEngine) Dimensions() int { return localDimensions }

func (localEngine) Name() string { return "local" }

func bucket(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % localDimensions)
}
