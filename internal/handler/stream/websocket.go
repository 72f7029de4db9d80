package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatService "github.com/kulim/agrimarket/backend/internal/service/chat"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// WebSocketHandler WebSocket聊天处理器
type WebSocketHandler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(chatSvc *chatService.Service) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TextMessage 文本消息
type TextMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	conv, err := h.chatSvc.Conversation(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := h.write(conn, outgoingMessage{Type: "connected", SessionID: sessionID}); err != nil {
		return
	}

	updates := newMailbox()
	unsubscribe := conv.Subscribe(updates.put)
	defer unsubscribe()
	updates.put(conv.State())

	replies := make(chan outgoingMessage, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(ctx, conn, conv, sessionID, updates, replies)
		cancel()
		// unblock the reader
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	h.readLoop(ctx, conn, sessionID, replies)
	cancel()
	<-writerDone
}

func (h *WebSocketHandler) readLoop(ctx context.Context, conn *websocket.Conn, sessionID string, replies chan<- outgoingMessage) {
	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && ctx.Err() == nil {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		if err := h.handleMessage(ctx, sessionID, &msg); err != nil {
			select {
			case replies <- outgoingMessage{Type: "error", SessionID: sessionID, Data: map[string]string{"message": err.Error()}}:
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, sessionID string, msg *inboundMessage) error {
	if msg.Type == "close" {
		return h.chatSvc.CloseSession(ctx, sessionID)
	}

	var text TextMessage
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &text); err != nil {
			return errors.New("invalid " + msg.Type + " payload")
		}
	}

	switch msg.Type {
	case "text":
		_, _, err := h.chatSvc.Submit(ctx, sessionID, text.Text)
		return err
	case "suggestion":
		_, err := h.chatSvc.SelectSuggestion(ctx, sessionID, text.Text)
		return err
	case "input":
		_, err := h.chatSvc.SetInput(ctx, sessionID, text.Text)
		return err
	default:
		return errors.New("unsupported message type: " + msg.Type)
	}
}

// writeLoop is the only goroutine writing to conn.
func (h *WebSocketHandler) writeLoop(ctx context.Context, conn *websocket.Conn, conv *chatService.Conversation, sessionID string, updates *mailbox, replies <-chan outgoingMessage) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		var out outgoingMessage
		select {
		case <-ctx.Done():
			return
		case <-conv.Done():
			h.write(conn, outgoingMessage{Type: "closed", SessionID: sessionID})
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "conversation closed"),
				time.Now().Add(writeTimeout))
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
			continue
		case state := <-updates.ch:
			out = outgoingMessage{Type: "state", SessionID: sessionID, Data: state}
		case out = <-replies:
		}

		if err := h.write(conn, out); err != nil {
			log.Printf("[websocket] write failed session=%s: %v", sessionID, err)
			return
		}
	}
}

func (h *WebSocketHandler) write(conn *websocket.Conn, msg outgoingMessage) error {
	msg.Timestamp = time.Now().UnixMilli()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(msg)
}
