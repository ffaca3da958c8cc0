package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// FallbackEmbedder wraps a primary embedder and degrades to a deterministic
// local embedding when the primary is unreachable. The local vectors are
// hashed bag-of-words projections: far weaker than a real model, but stable
// across calls, so retrieval keeps working instead of erroring out.
type FallbackEmbedder struct {
	primary Embedder
}

// NewFallbackEmbedder wraps primary with the deterministic local fallback.
func NewFallbackEmbedder(primary Embedder) *FallbackEmbedder {
	return &FallbackEmbedder{primary: primary}
}

func (e *FallbackEmbedder) Name() string {
	return e.primary.Name() + "+local-fallback"
}

func (e *FallbackEmbedder) Dimensions() int {
	return e.primary.Dimensions()
}

func (e *FallbackEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	results, err := e.primary.Embed(ctx, texts)
	if err == nil {
		return results, nil
	}
	if ctx.Err() != nil {
		// Caller cancelled; do not mask that with fallback vectors.
		return nil, ctx.Err()
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = hashEmbed(text, e.primary.Dimensions())
	}
	return out, nil
}

// hashEmbed projects a text into dims dimensions by hashing each token into a
// bucket, then L2-normalizes so cosine similarity behaves.
func hashEmbed(text string, dims int) []float32 {
	vec := make([]float32, dims)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[h.Sum32()%uint32(dims)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}
