package chat

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kulim/agrimarket/backend/internal/model/chat"
)

var ErrSessionNotFound = errors.New("session not found")

// Service keeps one independent Conversation per widget session.
type Service struct {
	responder Responder
	opts      Options

	mu            sync.RWMutex
	sessions      map[string]chat.Session
	conversations map[string]*Conversation
}

// NewService bootstraps the in-memory registry. Every session shares the
// responder but owns its own conversation state.
func NewService(responder Responder, opts Options) *Service {
	return &Service{
		responder:     responder,
		opts:          opts,
		sessions:      make(map[string]chat.Session),
		conversations: make(map[string]*Conversation),
	}
}

// CreateSession opens a new conversation seeded with the greeting.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	name := s.opts.AssistantName
	if name == "" {
		name = "ChatKulim"
	}
	session := chat.Session{
		ID:            uuid.NewString(),
		AssistantName: name,
		CreatedAt:     time.Now().UTC(),
	}

	conv := NewConversation(s.responder, s.opts)

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.conversations[session.ID] = conv
	s.mu.Unlock()

	log.Printf("[chat] opened session=%s", session.ID)
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Conversation returns the live conversation bound to a session.
func (s *Service) Conversation(sessionID string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return conv, nil
}

// Submit forwards an utterance to the session's conversation.
func (s *Service) Submit(_ context.Context, sessionID, utterance string) (bool, State, error) {
	conv, err := s.Conversation(sessionID)
	if err != nil {
		return false, State{}, err
	}
	accepted, err := conv.Submit(utterance)
	if err != nil {
		return false, State{}, err
	}
	return accepted, conv.State(), nil
}

// SelectSuggestion pre-fills the session's pending input.
func (s *Service) SelectSuggestion(_ context.Context, sessionID, text string) (State, error) {
	conv, err := s.Conversation(sessionID)
	if err != nil {
		return State{}, err
	}
	if err := conv.SelectSuggestion(text); err != nil {
		return State{}, err
	}
	return conv.State(), nil
}

// SetInput replaces the session's pending input.
func (s *Service) SetInput(_ context.Context, sessionID, text string) (State, error) {
	conv, err := s.Conversation(sessionID)
	if err != nil {
		return State{}, err
	}
	if err := conv.SetInput(text); err != nil {
		return State{}, err
	}
	return conv.State(), nil
}

// Snapshot returns the current state of a session.
func (s *Service) Snapshot(_ context.Context, sessionID string) (State, error) {
	conv, err := s.Conversation(sessionID)
	if err != nil {
		return State{}, err
	}
	return conv.State(), nil
}

// CloseSession tears a conversation down, cancelling any pending reply.
func (s *Service) CloseSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	conv, ok := s.conversations[sessionID]
	delete(s.conversations, sessionID)
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	conv.Close()
	log.Printf("[chat] closed session=%s", sessionID)
	return nil
}

// Shutdown closes every open conversation.
func (s *Service) Shutdown() {
	s.mu.Lock()
	conversations := s.conversations
	s.conversations = make(map[string]*Conversation)
	s.sessions = make(map[string]chat.Session)
	s.mu.Unlock()

	for _, conv := range conversations {
		conv.Close()
	}
	if len(conversations) > 0 {
		log.Printf("[chat] closed %d open sessions", len(conversations))
	}
}
