package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/kulim/agrimarket/backend/internal/analysis/intent"
	"github.com/kulim/agrimarket/backend/internal/model/knowledge"
	chatservice "github.com/kulim/agrimarket/backend/internal/service/chat"
)

func setupServer(t *testing.T) (*httptest.Server, *chatservice.Service) {
	t.Helper()
	chatSvc := chatservice.NewService(intent.New(knowledge.Default()), chatservice.Options{ReplyDelay: 5 * time.Millisecond})

	r := chi.NewRouter()
	New(chatSvc).RegisterRoutes(r)
	NewWebSocketHandler(chatSvc).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		chatSvc.Shutdown()
		srv.Close()
	})
	return srv, chatSvc
}

type wsState struct {
	Type string            `json:"type"`
	Data chatservice.State `json:"data"`
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(wsState) bool) wsState {
	t.Helper()
	for {
		var msg wsState
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read err: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func TestWebSocketSubmitReceivesReply(t *testing.T) {
	srv, chatSvc := setupServer(t)
	session, _ := chatSvc.CreateSession(context.Background())
	conn := dial(t, srv, session.ID)

	readUntil(t, conn, func(m wsState) bool { return m.Type == "connected" })
	initial := readUntil(t, conn, func(m wsState) bool { return m.Type == "state" })
	if len(initial.Data.Log) != 1 {
		t.Fatalf("expected greeting only, got %d messages", len(initial.Data.Log))
	}

	if err := conn.WriteJSON(map[string]any{"type": "text", "data": map[string]string{"text": "how to grow tomatoes"}}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	final := readUntil(t, conn, func(m wsState) bool {
		return m.Type == "state" && len(m.Data.Log) == 3 && !m.Data.Composing
	})
	want, _ := knowledge.Default().Aspect("tomato", "growing")
	if got := final.Data.Log[2].Text; got != want {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestWebSocketSuggestionAndErrors(t *testing.T) {
	srv, chatSvc := setupServer(t)
	session, _ := chatSvc.CreateSession(context.Background())
	conn := dial(t, srv, session.ID)

	conn.WriteJSON(map[string]any{"type": "suggestion", "data": map[string]string{"text": "Current market prices"}})
	state := readUntil(t, conn, func(m wsState) bool { return m.Type == "state" && m.Data.PendingInput != "" })
	if state.Data.PendingInput != "Current market prices" || len(state.Data.Log) != 1 {
		t.Fatalf("unexpected state %+v", state.Data)
	}

	conn.WriteJSON(map[string]any{"type": "dance"})
	readUntil(t, conn, func(m wsState) bool { return m.Type == "error" })
}

func TestWebSocketCloseEndsConversation(t *testing.T) {
	srv, chatSvc := setupServer(t)
	session, _ := chatSvc.CreateSession(context.Background())
	conn := dial(t, srv, session.ID)

	conn.WriteJSON(map[string]any{"type": "close"})
	readUntil(t, conn, func(m wsState) bool { return m.Type == "closed" })

	if _, err := chatSvc.GetSession(context.Background(), session.ID); err == nil {
		t.Fatal("session should be closed")
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	srv, _ := setupServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/missing"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}

func TestSSEStreamsStateChanges(t *testing.T) {
	srv, chatSvc := setupServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, _ := chatSvc.CreateSession(ctx)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream/"+session.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream request err: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	scanner := bufio.NewScanner(resp.Body)
	submitted := false
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var state chatservice.State
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &state); err != nil {
			t.Fatalf("decode state: %v", err)
		}
		if !submitted {
			submitted = true
			if _, _, err := chatSvc.Submit(ctx, session.ID, "hello"); err != nil {
				t.Fatalf("Submit err: %v", err)
			}
			continue
		}
		if len(state.Log) == 3 && !state.Composing {
			return
		}
	}
	t.Fatalf("stream ended before reply: %v", scanner.Err())
}

func TestSSEUnknownSession(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/stream/missing")
	if err != nil {
		t.Fatalf("request err: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestMailboxKeepsNewest(t *testing.T) {
	m := newMailbox()
	m.put(chatservice.State{Version: 1})
	m.put(chatservice.State{Version: 2})

	if got := (<-m.ch).Version; got != 2 {
		t.Fatalf("expected newest state, got version %d", got)
	}
}
