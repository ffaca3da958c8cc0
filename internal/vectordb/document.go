package vectordb

import "time"

// Document represents one knowledge base chunk to be stored and searched.
type Document struct {
	ID       string
	Content  string
	Metadata DocumentMetadata
}

// DocumentMetadata holds structured information about a chunk's origin.
type DocumentMetadata struct {
	DocID      string // identifier of the source document the chunk came from
	Title      string
	Source     string // filename or upload origin
	ChunkIndex int
	IngestedAt time.Time
}

// SearchResult pairs a chunk with its similarity score.
type SearchResult struct {
	Document   Document
	Similarity float32
}
