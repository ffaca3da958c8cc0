package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/support-bot/internal/orchestrator"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string `json:"type"` // only "message" for now
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type             string   `json:"type"` // "response" or "error"
	SessionID        string   `json:"session_id"`
	Content          string   `json:"content"`
	Confidence       float64  `json:"confidence_score,omitempty"`
	Escalated        bool     `json:"escalated,omitempty"`
	EscalationReason string   `json:"escalation_reason,omitempty"`
	Sources          []string `json:"sources,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			h.sendError(conn, "", "invalid message format")
			continue
		}
		if req.Type != "" && req.Type != "message" {
			h.sendError(conn, req.SessionID, "unknown message type: "+req.Type)
			continue
		}

		h.handleTurn(conn, r, req)
	}
}

func (h *Handler) handleTurn(conn *websocket.Conn, r *http.Request, req wsRequest) {
	resp, err := h.chatter.Chat(r.Context(), orchestrator.ChatTurn{
		Message:   req.Content,
		SessionID: req.SessionID,
	})
	if err != nil {
		if errors.Is(err, orchestrator.ErrEmptyMessage) {
			h.sendError(conn, req.SessionID, "content is required")
			return
		}
		h.sendError(conn, req.SessionID, "chat failed: "+err.Error())
		return
	}

	h.send(conn, wsResponse{
		Type:             "response",
		SessionID:        resp.SessionID,
		Content:          resp.Response,
		Confidence:       resp.Confidence,
		Escalated:        resp.Escalated,
		EscalationReason: resp.EscalationReason,
		Sources:          resp.Sources,
	})
}

func (h *Handler) sendError(conn *websocket.Conn, sessionID, msg string) {
	h.send(conn, wsResponse{Type: "error", SessionID: sessionID, Content: msg})
}

func (h *Handler) send(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		h.logger.Warn("websocket write failed", zap.Error(err))
	}
}
