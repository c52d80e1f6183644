package api

import (
	"net/http"
	"strings"

	"safespace.app/backend/internal/core"
	"safespace.app/backend/internal/store"
)

type PostChatMessageRequest struct {
	Content string `json:"content"`
}

type ChatExchange struct {
	User      store.ChatMessage `json:"user"`
	Assistant store.ChatMessage `json:"assistant"`
}

func (h *APIHandler) ListChatMessagesHandler(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.Chat.History(r.Context(), session(r))
	if err != nil {
		h.fail(w, err, "load chat history")
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// PostChatMessageHandler sends a chat message. Callers accepting
// text/event-stream get the assistant entry as it grows, then the stored
// rows; everyone else gets the stored rows once the reply is complete.
func (h *APIHandler) PostChatMessageHandler(w http.ResponseWriter, r *http.Request) {
	sess := session(r)
	var req PostChatMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Message content cannot be empty")
		return
	}
	if _, err := core.ValidateChatMessage(req.Content); err != nil {
		h.fail(w, err, "send chat message")
		return
	}

	tl, err := h.svc.Chat.Open(r.Context(), sess)
	if err != nil {
		h.fail(w, err, "load chat history")
		return
	}

	if !strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		userMsg, assistantMsg, err := h.svc.Chat.Send(r.Context(), sess, tl, req.Content, nil)
		if err != nil {
			h.fail(w, err, "get chat reply")
			return
		}
		writeJSON(w, http.StatusCreated, ChatExchange{User: userMsg, Assistant: assistantMsg})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)

	userMsg, assistantMsg, err := h.svc.Chat.Send(r.Context(), sess, tl, req.Content, func(e core.Entry) {
		if werr := writeEvent(w, rc, "delta", e); werr != nil {
			h.logger.Debug("chat stream write failed", "error", werr)
		}
	})
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.logger.Error("chat reply failed", "user_id", sess.UserID, "error", err)
		}
		writeEvent(w, rc, "error", map[string]any{
			"status": statusFor(err),
			"error":  errorMessage(err, "get chat reply"),
		})
		return
	}
	writeEvent(w, rc, "done", ChatExchange{User: userMsg, Assistant: assistantMsg})
}

func (h *APIHandler) ClearChatHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Chat.Clear(r.Context(), session(r))
	if err != nil {
		h.fail(w, err, "clear chat history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
