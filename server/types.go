package server

import (
	"time"

	"github.com/NextShop-AI/assistant-go/model"
)

// MessageRequest is the inbound body for one conversation turn.
type MessageRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

// ConfirmRequest targets a message with a pending action.
type ConfirmRequest struct {
	SessionID string `json:"sessionId"`
	MessageID string `json:"messageId"`
}

// ReplayRequest asks for the session's deferred action to run after sign-in.
type ReplayRequest struct {
	SessionID string `json:"sessionId"`
}

// ReplaceMessagesRequest swaps a session's whole message list.
type ReplaceMessagesRequest struct {
	Messages []model.ChatMessage `json:"messages"`
}

// SessionSummary is the list projection of a session.
type SessionSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Preview      string `json:"preview"`
	MessageCount int    `json:"messageCount"`
	IsActive     bool   `json:"isActive"`
	UpdatedAt    string `json:"updatedAt"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func summarize(sessions []*model.ChatSession) []SessionSummary {
	summaries := make([]SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		summaries = append(summaries, SessionSummary{
			ID:           sess.ID,
			Title:        sess.Title,
			Preview:      sess.Preview,
			MessageCount: len(sess.Messages),
			IsActive:     sess.IsActive,
			UpdatedAt:    sess.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return summaries
}
