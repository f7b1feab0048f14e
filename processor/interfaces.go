package processor

import (
	"context"
	"encoding/json"

	"github.com/NextShop-AI/assistant-go/dispatch"
	"github.com/NextShop-AI/assistant-go/model"
	"github.com/NextShop-AI/assistant-go/nex"
)

// NexClientInterface is the transport collaborator sending built histories
// to the reasoning backend.
type NexClientInterface interface {
	Converse(ctx context.Context, req nex.Request) (json.RawMessage, error)
}

// SessionStoreInterface covers the session operations a turn needs.
type SessionStoreInterface interface {
	Create(ctx context.Context, userID string) (*model.ChatSession, error)
	Get(ctx context.Context, userID, sessionID string) (*model.ChatSession, error)
	Active(ctx context.Context, userID string) (*model.ChatSession, error)
	AppendMessage(ctx context.Context, userID, sessionID string, msg model.ChatMessage) error
}

// DispatcherInterface inspects backend-requested actions for a new message
// and enriches view results with their contents.
type DispatcherInterface interface {
	Inspect(actions []model.Action, fallbackProducts []model.Product) (*model.PendingAction, []dispatch.ImmediateResult)
	FetchViews(ctx context.Context, token string, results []dispatch.ImmediateResult) []dispatch.ImmediateResult
}
