package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/support-bot/internal/keypool"
	"github.com/ziadkadry99/support-bot/internal/orchestrator"
)

// Handler serves the chat and status endpoints.
type Handler struct {
	chatter     Chatter
	pool        *keypool.Pool
	docs        DocumentCounter
	escalations EscalationCounter
	logger      *zap.Logger
}

func NewHandler(chatter Chatter, pool *keypool.Pool, docs DocumentCounter,
	escalations EscalationCounter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatter:     chatter,
		pool:        pool,
		docs:        docs,
		escalations: escalations,
		logger:      logger,
	}
}

// RegisterRoutes mounts the chat API on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.handleChat)
	r.Get("/api/status", h.handleStatus)
	r.Get("/api/chat/ws", h.handleWebSocket)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	resp, err := h.chatter.Chat(r.Context(), orchestrator.ChatTurn{
		Message:   req.Message,
		History:   req.History,
		SessionID: req.SessionID,
	})
	if err != nil {
		if errors.Is(err, orchestrator.ErrEmptyMessage) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
			return
		}
		h.logger.Error("chat turn failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := StatusResponse{
		Status:      "ok",
		Credentials: h.pool.Snapshot(),
	}
	if h.docs != nil {
		status.Documents = h.docs.Count()
	}
	if h.escalations != nil {
		if n, err := h.escalations.Count(r.Context()); err == nil {
			status.OpenEscalations = n
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
