package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/support-bot/internal/orchestrator"
	"github.com/ziadkadry99/support-bot/internal/vectordb"
)

// mockStore implements vectordb.VectorStore for testing.
type mockStore struct {
	docs []vectordb.Document
}

func (m *mockStore) AddDocuments(_ context.Context, docs []vectordb.Document) error {
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *mockStore) Search(_ context.Context, query string, limit int) ([]vectordb.SearchResult, error) {
	var results []vectordb.SearchResult
	for _, doc := range m.docs {
		results = append(results, vectordb.SearchResult{Document: doc, Similarity: 0.95})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (m *mockStore) DeleteByDocID(_ context.Context, _ string) error { return nil }
func (m *mockStore) Persist(_ context.Context, _ string) error       { return nil }
func (m *mockStore) Load(_ context.Context, _ string) error          { return nil }
func (m *mockStore) Count() int                                      { return len(m.docs) }

type mockChatter struct {
	resp orchestrator.ChatResponse
}

func (m *mockChatter) Chat(_ context.Context, turn orchestrator.ChatTurn) (orchestrator.ChatResponse, error) {
	resp := m.resp
	resp.SessionID = turn.SessionID
	if resp.SessionID == "" {
		resp.SessionID = "generated"
	}
	return resp, nil
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"search_knowledge_base", searchKnowledgeBaseTool, "search_knowledge_base"},
		{"ask_support", askSupportTool, "ask_support"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	store := &mockStore{}
	srv := NewServer(store, &mockChatter{})

	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.store != store {
		t.Error("store not set correctly")
	}
}

func TestHandleSearchKnowledgeBase(t *testing.T) {
	store := &mockStore{
		docs: []vectordb.Document{
			{
				ID:      "d:0",
				Content: "Tuition refunds are issued within 30 days of withdrawal.",
				Metadata: vectordb.DocumentMetadata{
					DocID:  "d",
					Title:  "Refund Policy",
					Source: "policies/refunds.md",
				},
			},
		},
	}
	srv := NewServer(store, nil)
	ctx := context.Background()

	t.Run("basic search", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query": "refunds",
		}

		result, err := srv.handleSearchKnowledgeBase(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleSearchKnowledgeBase(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("empty store", func(t *testing.T) {
		emptySrv := NewServer(&mockStore{}, nil)
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"query": "anything",
		}

		result, err := emptySrv.handleSearchKnowledgeBase(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Error("empty results should not be an error")
		}
	})
}

func TestHandleAskSupport(t *testing.T) {
	chatter := &mockChatter{resp: orchestrator.ChatResponse{
		Response:   "Office hours are 9am to 5pm.",
		Confidence: 0.85,
		Sources:    []string{"handbook"},
	}}
	srv := NewServer(&mockStore{}, chatter)
	ctx := context.Background()

	t.Run("basic question", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"question": "what are the office hours?",
		}

		result, err := srv.handleAskSupport(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}

		text, ok := result.Content[0].(mcp.TextContent)
		if !ok {
			t.Fatalf("unexpected content type %T", result.Content[0])
		}
		if !strings.Contains(text.Text, "Office hours") {
			t.Errorf("answer missing from output: %s", text.Text)
		}
		if !strings.Contains(text.Text, "Confidence: 0.85") {
			t.Errorf("confidence missing from output: %s", text.Text)
		}
	})

	t.Run("missing question", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleAskSupport(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing question")
		}
	})

	t.Run("no chatter configured", func(t *testing.T) {
		srvNoChat := NewServer(&mockStore{}, nil)
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"question": "anything",
		}

		result, err := srvNoChat.handleAskSupport(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error when chat pipeline is absent")
		}
	})
}
