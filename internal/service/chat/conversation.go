package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kulim/agrimarket/backend/internal/model/chat"
)

// ErrConversationClosed is returned once a conversation has been torn down.
var ErrConversationClosed = errors.New("conversation closed")

// Responder turns one utterance into the assistant's answer.
type Responder interface {
	Respond(utterance string) string
}

// Options tune a single conversation.
type Options struct {
	AssistantName string
	Greeting      string
	ReplyDelay    time.Duration
	Suggestions   []string
}

// State is a read-only snapshot handed to renderers.
type State struct {
	Log          []chat.Message `json:"log"`
	Composing    bool           `json:"composing"`
	PendingInput string         `json:"pendingInput"`
	Suggestions  []string       `json:"suggestions"`
	Version      uint64         `json:"version"`
}

// Conversation owns the message log of one assistant widget. User messages are
// appended synchronously; replies are produced one at a time, each after the
// configured delay.
type Conversation struct {
	responder Responder
	delay     time.Duration
	now       func() time.Time

	mu          sync.Mutex
	log         []chat.Message
	pending     []string
	composing   bool
	running     bool
	input       string
	suggestions []string
	version     uint64
	closed      bool
	idle        chan struct{}
	observers   map[int]func(State)
	nextID      int

	// notifyMu keeps observer callbacks in state order.
	notifyMu sync.Mutex

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewConversation seeds a conversation with the assistant's greeting.
func NewConversation(responder Responder, opts Options) *Conversation {
	return newConversation(responder, opts, time.Now)
}

func newConversation(responder Responder, opts Options, now func() time.Time) *Conversation {
	idle := make(chan struct{})
	close(idle)

	c := &Conversation{
		responder:   responder,
		delay:       opts.ReplyDelay,
		now:         now,
		log:         make([]chat.Message, 0, 16),
		suggestions: append([]string(nil), opts.Suggestions...),
		idle:        idle,
		observers:   make(map[int]func(State)),
		done:        make(chan struct{}),
	}
	if c.delay < 0 {
		c.delay = 0
	}

	greeting := strings.TrimSpace(opts.Greeting)
	if greeting == "" {
		greeting = DefaultGreeting(opts.AssistantName)
	}
	c.log = append(c.log, c.newMessage(greeting, chat.SenderAssistant))
	return c
}

// DefaultGreeting is the opening line used when no greeting is configured.
func DefaultGreeting(assistantName string) string {
	if assistantName == "" {
		assistantName = "ChatKulim"
	}
	return "Hello! I'm " + assistantName + ", your agricultural assistant. How can I help you today?"
}

func (c *Conversation) newMessage(text string, sender chat.Sender) chat.Message {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return chat.Message{
		ID:        id.String(),
		Text:      text,
		Sender:    sender,
		Timestamp: c.now().UTC(),
	}
}

// Submit appends a user turn and schedules its reply. Blank input is ignored
// and reported as not accepted.
func (c *Conversation) Submit(utterance string) (bool, error) {
	text := strings.TrimSpace(utterance)
	if text == "" {
		return false, nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrConversationClosed
	}

	c.log = append(c.log, c.newMessage(text, chat.SenderUser))
	c.pending = append(c.pending, text)
	c.input = ""
	c.composing = true
	if !c.running {
		c.running = true
		c.idle = make(chan struct{})
		c.wg.Add(1)
		go c.run()
	}
	c.publishLocked()
	return true, nil
}

// run replies to queued utterances in order until the queue drains or the
// conversation closes.
func (c *Conversation) run() {
	defer c.wg.Done()

	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		utterance := c.pending[0]
		c.mu.Unlock()

		timer := time.NewTimer(c.delay)
		select {
		case <-c.done:
			timer.Stop()
			return
		case <-timer.C:
		}

		reply := c.responder.Respond(utterance)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.pending = c.pending[1:]
		c.log = append(c.log, c.newMessage(reply, chat.SenderAssistant))
		more := len(c.pending) > 0
		if !more {
			c.composing = false
			c.running = false
			close(c.idle)
		}
		c.publishLocked()

		if !more {
			return
		}
	}
}

// SelectSuggestion pre-fills the pending input without submitting it.
func (c *Conversation) SelectSuggestion(text string) error {
	return c.SetInput(text)
}

// SetInput replaces the pending input buffer.
func (c *Conversation) SetInput(text string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrConversationClosed
	}
	c.input = text
	c.publishLocked()
	return nil
}

// State returns a snapshot of the conversation.
func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Conversation) snapshotLocked() State {
	return State{
		Log:          append([]chat.Message(nil), c.log...),
		Composing:    c.composing,
		PendingInput: c.input,
		Suggestions:  append([]string(nil), c.suggestions...),
		Version:      c.version,
	}
}

// publishLocked bumps the version and fans the snapshot out to observers. It
// must be called with mu held and releases it.
func (c *Conversation) publishLocked() {
	c.version++
	state := c.snapshotLocked()
	observers := make([]func(State), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, fn := range observers {
		fn(state)
	}
}

// Subscribe registers a sink for state changes. Observers run on the goroutine
// that changed the state and must not call back into the conversation.
func (c *Conversation) Subscribe(fn func(State)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// WaitIdle blocks until no reply is outstanding.
func (c *Conversation) WaitIdle(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-c.done:
		return ErrConversationClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when the conversation is torn down.
func (c *Conversation) Done() <-chan struct{} {
	return c.done
}

// Close cancels any pending reply and waits for the reply worker to exit.
// It is safe to call more than once.
func (c *Conversation) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.composing = false
		c.pending = nil
		c.observers = make(map[int]func(State))
		c.mu.Unlock()

		close(c.done)
	})
	c.wg.Wait()
}
