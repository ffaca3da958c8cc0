package retrieval

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/ziadkadry99/support-bot/internal/vectordb"
)

// Assembler builds the retrieval context for a chat turn: nearest-neighbor
// search, dedup, and greedy packing into a character budget.
type Assembler struct {
	store  vectordb.VectorStore
	logger *zap.Logger
}

// NewAssembler creates an assembler over the given vector store.
func NewAssembler(store vectordb.VectorStore, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{store: store, logger: logger}
}

// BuildContext retrieves the k nearest chunks for query and packs them into a
// PromptContext of at most budgetChars rendered characters.
//
// A store failure or zero hits yields an empty context, never an error: the
// caller degrades to answering from general capability without citations.
func (a *Assembler) BuildContext(ctx context.Context, query string, k int, budgetChars int) PromptContext {
	if a.store == nil {
		return PromptContext{}
	}

	results, err := a.store.Search(ctx, query, k)
	if err != nil {
		a.logger.Warn("knowledge base search failed, continuing without context",
			zap.Error(err))
		return PromptContext{}
	}
	if len(results) == 0 {
		return PromptContext{}
	}

	chunks := toChunks(results)
	chunks = dedupeAdjacent(chunks)
	chunks = packBudget(chunks, budgetChars)

	return PromptContext{Chunks: chunks}
}

func toChunks(results []vectordb.SearchResult) []Chunk {
	chunks := make([]Chunk, len(results))
	for i, r := range results {
		chunks[i] = Chunk{
			DocID:  r.Document.Metadata.DocID,
			Title:  r.Document.Metadata.Title,
			Source: r.Document.Metadata.Source,
			Text:   r.Document.Content,
			Score:  float64(r.Similarity),
			Rank:   i + 1,
		}
	}
	return chunks
}

// dedupeAdjacent collapses rank-adjacent chunks from the same source
// document, keeping the higher-scoring one.
func dedupeAdjacent(chunks []Chunk) []Chunk {
	if len(chunks) < 2 {
		return chunks
	}

	out := chunks[:1]
	for _, c := range chunks[1:] {
		last := &out[len(out)-1]
		if c.DocID != "" && c.DocID == last.DocID {
			if c.Score > last.Score {
				*last = c
			}
			continue
		}
		out = append(out, c)
	}
	return out
}

// packBudget greedily accumulates chunks in descending score order until the
// budget is reached. A chunk that would overflow is dropped whole, never
// truncated; smaller chunks further down the ranking may still fit.
func packBudget(chunks []Chunk, budgetChars int) []Chunk {
	if budgetChars <= 0 {
		return chunks
	}

	sorted := make([]Chunk, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	var out []Chunk
	used := 0
	for _, c := range sorted {
		size := renderedSize(c)
		if used+size > budgetChars {
			continue
		}
		used += size
		out = append(out, c)
	}
	return out
}
