package chat

import "time"

// Session captures a transient anonymous assistant widget.
type Session struct {
	ID            string    `json:"id"`
	AssistantName string    `json:"assistantName"`
	CreatedAt     time.Time `json:"createdAt"`
}
