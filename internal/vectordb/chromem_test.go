package vectordb

import (
	"context"
	"math"
	"testing"
	"time"
)

// mockEmbedder returns deterministic embeddings based on text content.
// It produces a simple hash-based vector for reproducible tests.
type mockEmbedder struct {
	dims int
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{dims: dims}
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = m.deterministicVector(text)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

// deterministicVector produces a normalized vector from text. Similar texts
// produce similar vectors because shared characters contribute to the same
// positions in the vector.
func (m *mockEmbedder) deterministicVector(text string) []float32 {
	vec := make([]float32, m.dims)
	for i, ch := range text {
		idx := (int(ch) + i) % m.dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func sampleDocs() []Document {
	now := time.Now()
	return []Document{
		{
			ID:      "doc-a:0",
			Content: "Admission requirements for the business analysis program include a completed application",
			Metadata: DocumentMetadata{
				DocID:      "doc-a",
				Title:      "Admissions FAQ",
				Source:     "admissions.md",
				ChunkIndex: 0,
				IngestedAt: now,
			},
		},
		{
			ID:      "doc-a:1",
			Content: "Application deadlines fall at the start of each quarter",
			Metadata: DocumentMetadata{
				DocID:      "doc-a",
				Title:      "Admissions FAQ",
				Source:     "admissions.md",
				ChunkIndex: 1,
				IngestedAt: now,
			},
		},
		{
			ID:      "doc-b:0",
			Content: "Tuition can be paid upfront or through a monthly payment plan",
			Metadata: DocumentMetadata{
				DocID:      "doc-b",
				Title:      "Tuition and Fees",
				Source:     "tuition.md",
				ChunkIndex: 0,
				IngestedAt: now,
			},
		},
	}
}

func TestChromemStoreAddAndSearch(t *testing.T) {
	ctx := context.Background()
	store, err := NewChromemStore(newMockEmbedder(64))
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}

	if err := store.AddDocuments(ctx, sampleDocs()); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	if count := store.Count(); count != 3 {
		t.Errorf("Count: got %d, want 3", count)
	}

	results, err := store.Search(ctx, "admission requirements application", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// Metadata must round-trip through the flat chromem map.
	got := results[0].Document.Metadata
	if got.DocID == "" || got.Title == "" || got.Source == "" {
		t.Errorf("metadata did not round-trip: %+v", got)
	}
}

func TestChromemStoreSearchEmpty(t *testing.T) {
	store, err := NewChromemStore(newMockEmbedder(64))
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}

	results, err := store.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Search on empty store: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestChromemStoreLimitClampedToSize(t *testing.T) {
	ctx := context.Background()
	store, err := NewChromemStore(newMockEmbedder(64))
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	if err := store.AddDocuments(ctx, sampleDocs()); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	results, err := store.Search(ctx, "tuition", 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected limit clamped to 3, got %d results", len(results))
	}
}

func TestChromemStoreDeleteByDocID(t *testing.T) {
	ctx := context.Background()
	store, err := NewChromemStore(newMockEmbedder(64))
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	if err := store.AddDocuments(ctx, sampleDocs()); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}

	if err := store.DeleteByDocID(ctx, "doc-a"); err != nil {
		t.Fatalf("DeleteByDocID: %v", err)
	}

	if count := store.Count(); count != 1 {
		t.Errorf("expected 1 chunk after delete, got %d", count)
	}
}

func TestChromemStorePersistAndLoad(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewChromemStore(newMockEmbedder(64))
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	if err := store.AddDocuments(ctx, sampleDocs()); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if err := store.Persist(ctx, dir); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	restored, err := NewChromemStore(newMockEmbedder(64))
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	if err := restored.Load(ctx, dir); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if count := restored.Count(); count != 3 {
		t.Errorf("expected 3 chunks after load, got %d", count)
	}
}
