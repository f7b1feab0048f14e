package model

import "time"

// DefaultSessionTitle is the title a session carries until its first user
// message produces a derived one.
const DefaultSessionTitle = "New Chat"

// ChatSession is one persisted conversation thread. Deferred is transient
// in-run state and never reaches the backend.
type ChatSession struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Messages  []ChatMessage   `json:"messages"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	IsActive  bool            `json:"isActive"`
	Preview   string          `json:"preview"`
	Deferred  *DeferredAction `json:"-"`
}

// Message returns a pointer to the message with the given id, or nil.
func (s *ChatSession) Message(id string) *ChatMessage {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return &s.Messages[i]
		}
	}
	return nil
}

// LastMessage returns the most recent message, or nil for an empty session.
func (s *ChatSession) LastMessage() *ChatMessage {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// CategoryBreakdown summarizes one product category within a result set.
type CategoryBreakdown struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	TopProduct Product `json:"topProduct"`
	AvgPrice   float64 `json:"avgPrice"`
}
