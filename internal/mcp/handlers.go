package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/support-bot/internal/orchestrator"
	"github.com/ziadkadry99/support-bot/internal/vectordb"
)

func (s *Server) handleSearchKnowledgeBase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	results, err := s.store.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No matching documents in the knowledge base."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

func (s *Server) handleAskSupport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	if s.chatter == nil {
		return mcp.NewToolResultError("chat pipeline not configured"), nil
	}

	resp, err := s.chatter.Chat(ctx, orchestrator.ChatTurn{
		Message:   question,
		SessionID: request.GetString("session_id", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chat failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(resp.Response)
	sb.WriteString("\n\n---\n")
	fmt.Fprintf(&sb, "Confidence: %.2f\n", resp.Confidence)
	fmt.Fprintf(&sb, "Session: %s\n", resp.SessionID)
	if resp.Escalated {
		fmt.Fprintf(&sb, "Escalated to a human advisor: %s\n", resp.EscalationReason)
	}
	if len(resp.Sources) > 0 {
		fmt.Fprintf(&sb, "Sources: %s\n", strings.Join(resp.Sources, ", "))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// formatSearchResults renders results as markdown sections.
func formatSearchResults(results []vectordb.SearchResult) string {
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "## Result %d: %s (score %.3f)\n\n", i+1, r.Document.Metadata.Title, r.Similarity)
		if r.Document.Metadata.Source != "" {
			fmt.Fprintf(&sb, "Source: %s\n\n", r.Document.Metadata.Source)
		}
		sb.WriteString(r.Document.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
