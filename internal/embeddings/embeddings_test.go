package embeddings

import (
	"context"
	"errors"
	"math"
	"testing"
)

// failingEmbedder always errors, standing in for an unreachable primary.
type failingEmbedder struct{}

func (failingEmbedder) Name() string    { return "failing" }
func (failingEmbedder) Dimensions() int { return 64 }
func (failingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("embedding API unreachable")
}

// staticEmbedder returns a fixed vector for every text.
type staticEmbedder struct{ dims int }

func (e staticEmbedder) Name() string    { return "static" }
func (e staticEmbedder) Dimensions() int { return e.dims }
func (e staticEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dims)
		out[i][0] = 1
	}
	return out, nil
}

func TestFallbackUsesPrimaryWhenHealthy(t *testing.T) {
	e := NewFallbackEmbedder(staticEmbedder{dims: 8})

	vecs, err := e.Embed(context.Background(), []string{"hello"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 1 || vecs[0][0] != 1 {
		t.Errorf("expected primary's vector, got %v", vecs)
	}
	if e.Dimensions() != 8 {
		t.Errorf("Dimensions = %d, want 8", e.Dimensions())
	}
}

func TestFallbackIsDeterministic(t *testing.T) {
	e := NewFallbackEmbedder(failingEmbedder{})
	ctx := context.Background()

	first, err := e.Embed(ctx, []string{"how do I enroll in the program"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	second, err := e.Embed(ctx, []string{"how do I enroll in the program"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	for i := range first[0] {
		if first[0][i] != second[0][i] {
			t.Fatalf("fallback vectors differ at index %d", i)
		}
	}
}

func TestFallbackVectorsAreNormalized(t *testing.T) {
	e := NewFallbackEmbedder(failingEmbedder{})

	vecs, err := e.Embed(context.Background(), []string{"tuition fees and payment plans"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1.0) > 1e-5 {
		t.Errorf("expected unit norm, got %f", norm)
	}

	if len(vecs[0]) != 64 {
		t.Errorf("expected 64 dimensions, got %d", len(vecs[0]))
	}
}

func TestFallbackDistinguishesTexts(t *testing.T) {
	e := NewFallbackEmbedder(failingEmbedder{})

	vecs, err := e.Embed(context.Background(), []string{
		"admission requirements",
		"refund policy deadline",
	})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	same := true
	for i := range vecs[0] {
		if vecs[0][i] != vecs[1][i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical fallback vectors")
	}
}

func TestFallbackRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewFallbackEmbedder(failingEmbedder{})
	if _, err := e.Embed(ctx, []string{"x"}); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestHashEmbedEmptyText(t *testing.T) {
	vec := hashEmbed("", 16)
	if len(vec) != 16 {
		t.Fatalf("expected 16 dims, got %d", len(vec))
	}
	for i, v := range vec {
		if v != 0 {
			t.Errorf("expected zero vector for empty text, index %d = %f", i, v)
		}
	}
}
