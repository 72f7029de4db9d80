package stream

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	chatService "github.com/kulim/agrimarket/backend/internal/service/chat"
	"github.com/kulim/agrimarket/backend/pkg/utils"
)

const heartbeatInterval = 15 * time.Second

// Handler pushes conversation state to the widget via Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes registers the SSE endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

// mailbox keeps only the newest state so a slow reader never blocks the
// conversation.
type mailbox struct {
	ch chan chatService.State
}

func newMailbox() *mailbox {
	return &mailbox{ch: make(chan chatService.State, 1)}
}

func (m *mailbox) put(state chatService.State) {
	for {
		select {
		case m.ch <- state:
			return
		default:
		}
		select {
		case <-m.ch:
		default:
		}
	}
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	conv, err := h.chatSvc.Conversation(sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chatService.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	updates := newMailbox()
	unsubscribe := conv.Subscribe(updates.put)
	defer unsubscribe()

	log.Printf("[sse] opening state stream for session=%s", sessionID)
	defer log.Printf("[sse] closing state stream for session=%s", sessionID)

	if err := utils.SendSSEEvent(w, flusher, "state", conv.State()); err != nil {
		return
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-conv.Done():
			_ = utils.SendSSEEvent(w, flusher, "closed", map[string]string{"sessionId": sessionID})
			return
		case state := <-updates.ch:
			if err := utils.SendSSEEvent(w, flusher, "state", state); err != nil {
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		}
	}
}
