package chat

import (
	"context"

	"github.com/ziadkadry99/support-bot/internal/keypool"
	"github.com/ziadkadry99/support-bot/internal/llm"
	"github.com/ziadkadry99/support-bot/internal/orchestrator"
)

// ChatRequest is the incoming HTTP body for a chat turn.
type ChatRequest struct {
	Message   string        `json:"message"`
	History   []llm.Message `json:"chat_history,omitempty"`
	SessionID string        `json:"session_id,omitempty"`
}

// Chatter handles one conversational turn. Satisfied by
// *orchestrator.Orchestrator; tests inject fakes.
type Chatter interface {
	Chat(ctx context.Context, turn orchestrator.ChatTurn) (orchestrator.ChatResponse, error)
}

// EscalationCounter reports how many escalations are waiting on a human.
type EscalationCounter interface {
	Count(ctx context.Context) (int, error)
}

// DocumentCounter reports how many chunks the knowledge base holds.
type DocumentCounter interface {
	Count() int
}

// StatusResponse is the health view exposed by the status endpoint.
type StatusResponse struct {
	Status          string                     `json:"status"`
	Documents       int                        `json:"documents"`
	Credentials     []keypool.CredentialStatus `json:"credentials"`
	OpenEscalations int                        `json:"open_escalations"`
}
