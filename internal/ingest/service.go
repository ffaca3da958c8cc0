package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/support-bot/internal/vectordb"
)

// Service turns raw document text into embedded chunks in the vector store.
type Service struct {
	store      vectordb.VectorStore
	chunker    *Chunker
	persistDir string
	logger     *zap.Logger
}

// NewService creates an ingestion service. If persistDir is non-empty the
// store is persisted there after every mutation.
func NewService(store vectordb.VectorStore, chunker *Chunker, persistDir string, logger *zap.Logger) *Service {
	if chunker == nil {
		chunker = NewChunker(DefaultChunkSize, DefaultChunkOverlap)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, chunker: chunker, persistDir: persistDir, logger: logger}
}

// AddResult reports what a single document ingestion produced.
type AddResult struct {
	DocID  string `json:"doc_id"`
	Title  string `json:"title"`
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
}

// AddDocument chunks, embeds and stores one document. The returned DocID
// identifies every chunk of the document for later deletion.
func (s *Service) AddDocument(ctx context.Context, title, source, content string) (AddResult, error) {
	chunks := s.chunker.Chunk(content)
	if len(chunks) == 0 {
		return AddResult{}, fmt.Errorf("document %q has no indexable content", title)
	}

	docID := uuid.NewString()
	now := time.Now().UTC()

	docs := make([]vectordb.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = vectordb.Document{
			ID:      fmt.Sprintf("%s:%d", docID, i),
			Content: chunk,
			Metadata: vectordb.DocumentMetadata{
				DocID:      docID,
				Title:      title,
				Source:     source,
				ChunkIndex: i,
				IngestedAt: now,
			},
		}
	}

	if err := s.store.AddDocuments(ctx, docs); err != nil {
		return AddResult{}, fmt.Errorf("adding document %q: %w", title, err)
	}

	s.logger.Info("document ingested",
		zap.String("doc_id", docID),
		zap.String("title", title),
		zap.Int("chunks", len(chunks)))

	if err := s.persist(ctx); err != nil {
		s.logger.Warn("persisting knowledge base failed", zap.Error(err))
	}

	return AddResult{DocID: docID, Title: title, Source: source, Chunks: len(chunks)}, nil
}

// DeleteDocument removes every chunk belonging to docID.
func (s *Service) DeleteDocument(ctx context.Context, docID string) error {
	if err := s.store.DeleteByDocID(ctx, docID); err != nil {
		return fmt.Errorf("deleting document %s: %w", docID, err)
	}
	if err := s.persist(ctx); err != nil {
		s.logger.Warn("persisting knowledge base failed", zap.Error(err))
	}
	return nil
}

// Search runs a similarity query against the knowledge base.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]vectordb.SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.store.Search(ctx, query, limit)
}

// Count returns the number of stored chunks.
func (s *Service) Count() int {
	return s.store.Count()
}

func (s *Service) persist(ctx context.Context) error {
	if s.persistDir == "" {
		return nil
	}
	return s.store.Persist(ctx, s.persistDir)
}
