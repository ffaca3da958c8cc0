package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchKnowledgeBaseTool defines the search_knowledge_base MCP tool.
var searchKnowledgeBaseTool = mcp.NewTool("search_knowledge_base",
	mcp.WithDescription("Search the student support knowledge base semantically. Returns relevant document excerpts with titles, sources and similarity scores."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 5)"),
	),
)

// askSupportTool defines the ask_support MCP tool.
var askSupportTool = mcp.NewTool("ask_support",
	mcp.WithDescription("Ask the support assistant a question. Runs the full pipeline: retrieval, LLM answer, confidence check and escalation."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The student's question"),
	),
	mcp.WithString("session_id",
		mcp.Description("Session identifier for conversational continuity (optional)"),
	),
)
