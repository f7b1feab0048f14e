package processor

import (
	"github.com/NextShop-AI/assistant-go/analyzer"
	"github.com/NextShop-AI/assistant-go/dispatch"
	"github.com/NextShop-AI/assistant-go/model"
)

// TurnRequest is one user turn entering the assistant.
type TurnRequest struct {
	UserID    string
	SessionID string
	Text      string
	Token     string
}

// TurnResult is everything the UI needs to render the assistant's reply.
// DisplayText carries the decorated variant of the stored message text.
type TurnResult struct {
	SessionID            string                     `json:"sessionId"`
	Message              model.ChatMessage          `json:"message"`
	DisplayText          string                     `json:"displayText"`
	AwaitingConfirmation bool                       `json:"awaitingConfirmation"`
	PendingAction        *model.PendingAction       `json:"pendingAction,omitempty"`
	Analysis             *analyzer.Analysis         `json:"analysis,omitempty"`
	Navigate             bool                       `json:"navigate"`
	NavigationPayload    map[string]any             `json:"navigationPayload,omitempty"`
	Immediate            []dispatch.ImmediateResult `json:"immediate,omitempty"`
	Rejected             bool                       `json:"rejected,omitempty"`
	Superseded           bool                       `json:"superseded,omitempty"`
}
