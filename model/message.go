package model

import (
	"time"
)

// Sender identifies who produced a chat message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	SenderSystem    Sender = "system"
)

// DisplayMode is the backend's hint for how a response should be presented.
type DisplayMode string

const (
	DisplayChatOnly     DisplayMode = "chat_only"
	DisplayAutoNavigate DisplayMode = "auto_navigate"
	DisplayDualView     DisplayMode = "dual_view"
)

// Step is one entry of a response's processing trace.
type Step struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// Button is an inline affordance attached to an assistant message,
// e.g. a sign-in prompt or a shortcut to the cart.
type Button struct {
	Label  string `json:"label"`
	Target string `json:"target"`
}

// ChatMessage is one turn of a conversation.
//
// Confirmation state is transient: it lives for the current run only and is
// not written through to the session backend.
type ChatMessage struct {
	ID           string       `json:"id"`
	Sender       Sender       `json:"sender"`
	Text         string       `json:"text"`
	Timestamp    time.Time    `json:"timestamp"`
	Products     []Product    `json:"products,omitempty"`
	DisplayMode  DisplayMode  `json:"displayMode,omitempty"`
	TotalFound   int          `json:"totalFound,omitempty"`
	Steps        []Step       `json:"steps,omitempty"`
	Buttons      []Button     `json:"buttons,omitempty"`
	Typing       bool         `json:"-"`
	Confirmation Confirmation `json:"-"`
}

// AwaitingConfirmation reports whether this message carries an action that
// still needs the user's explicit confirmation.
func (m *ChatMessage) AwaitingConfirmation() bool {
	return m.Confirmation.Awaiting()
}

// PendingAction returns the action awaiting confirmation, or nil.
func (m *ChatMessage) PendingAction() *PendingAction {
	if !m.Confirmation.Awaiting() {
		return nil
	}
	return m.Confirmation.Action
}
