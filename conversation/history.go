// Package conversation projects a session's messages into the context
// structure the Nex backend expects on each turn.
package conversation

import (
	"time"

	"github.com/NextShop-AI/assistant-go/model"
)

// Entry is one prior turn in the outbound conversation context.
type Entry struct {
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Products  []model.Product `json:"products,omitempty"`
	Timestamp string          `json:"timestamp"`
	Metadata  Metadata        `json:"metadata"`
}

// Metadata carries the response hints alongside each projected turn.
type Metadata struct {
	DisplayMode model.DisplayMode `json:"displayMode,omitempty"`
	TotalFound  int               `json:"totalFound,omitempty"`
	HasProducts bool              `json:"hasProducts"`
}

// Build projects messages into backend context entries, oldest first.
// Typing indicators are dropped; everything non-user maps to the assistant
// role. The projection is rebuilt fresh each turn and never mutated.
func Build(messages []model.ChatMessage) []Entry {
	entries := make([]Entry, 0, len(messages))
	for _, msg := range messages {
		if msg.Typing {
			continue
		}

		role := "assistant"
		if msg.Sender == model.SenderUser {
			role = "user"
		}

		entries = append(entries, Entry{
			Role:      role,
			Content:   msg.Text,
			Products:  msg.Products,
			Timestamp: msg.Timestamp.UTC().Format(time.RFC3339),
			Metadata: Metadata{
				DisplayMode: msg.DisplayMode,
				TotalFound:  msg.TotalFound,
				HasProducts: len(msg.Products) > 0,
			},
		})
	}
	return entries
}
