// Package processor orchestrates one conversation turn: validation, history
// projection, the transport call, normalization, analysis, action
// inspection, and the session append.
package processor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/NextShop-AI/assistant-go/analyzer"
	"github.com/NextShop-AI/assistant-go/conversation"
	"github.com/NextShop-AI/assistant-go/dispatch"
	"github.com/NextShop-AI/assistant-go/execution"
	"github.com/NextShop-AI/assistant-go/model"
	"github.com/NextShop-AI/assistant-go/nex"
	"github.com/NextShop-AI/assistant-go/response"
	"github.com/NextShop-AI/assistant-go/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const transportErrorText = "I'm having trouble reaching the shopping assistant right now. Please try again in a moment."

type TurnProcessor struct {
	nexClient  NexClientInterface
	sessions   SessionStoreInterface
	dispatcher DispatcherInterface
	runs       *execution.Manager
}

func NewTurnProcessor(nexClient NexClientInterface, sessions SessionStoreInterface, dispatcher DispatcherInterface, runs *execution.Manager) *TurnProcessor {
	return &TurnProcessor{
		nexClient:  nexClient,
		sessions:   sessions,
		dispatcher: dispatcher,
		runs:       runs,
	}
}

// ProcessTurn runs one user turn end to end. Every locally recoverable
// failure comes back as a chat-visible assistant message, never an error
// that would leave the UI blank.
func (p *TurnProcessor) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	req.Text = strings.TrimSpace(req.Text)
	if reply, ok := validateMessage(req.Text); !ok {
		return &TurnResult{
			SessionID:   req.SessionID,
			Message:     assistantMessage(reply),
			DisplayText: reply,
			Rejected:    true,
		}, nil
	}

	sess, err := p.resolveSession(ctx, req)
	if err != nil {
		return nil, err
	}

	// Prior turns only; the current query travels separately.
	history := conversation.Build(sess.Messages)

	userMsg := model.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    model.SenderUser,
		Text:      req.Text,
		Timestamp: time.Now(),
	}
	if err := p.sessions.AppendMessage(ctx, req.UserID, sess.ID, userMsg); err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("Failed to store user message")
	}

	runCtx := p.runs.Start(sess.ID)
	defer p.runs.Cleanup(sess.ID, runCtx)

	raw, err := p.nexClient.Converse(runCtx, nex.Request{
		Query:               req.Text,
		UserID:              req.UserID,
		ConversationHistory: history,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Str("session_id", sess.ID).Msg("Turn superseded by a newer send")
			return &TurnResult{SessionID: sess.ID, Superseded: true}, nil
		}
		log.Error().Err(err).Str("session_id", sess.ID).Msg("Transport call failed")
		return p.appendAssistantReply(ctx, req.UserID, sess.ID, assistantMessage(transportErrorText), response.ProcessedResponse{}, nil, nil), nil
	}
	if runCtx.Err() != nil {
		// A newer send won the race while this response was in flight.
		log.Info().Str("session_id", sess.ID).Msg("Dropping late response for superseded turn")
		return &TurnResult{SessionID: sess.ID, Superseded: true}, nil
	}

	pr := response.NormalizeRaw(raw)

	var analysis *analyzer.Analysis
	if pr.Products != nil {
		a := analyzer.Analyze(pr.Products, req.Text)
		analysis = &a
	}

	pending, immediate := p.dispatcher.Inspect(pr.Actions, pr.Products)
	immediate = p.dispatcher.FetchViews(ctx, req.Token, immediate)

	assistantMsg := model.ChatMessage{
		ID:          uuid.NewString(),
		Sender:      model.SenderAssistant,
		Text:        pr.Message,
		Timestamp:   time.Now(),
		Products:    pr.Products,
		DisplayMode: pr.DisplayMode,
		TotalFound:  pr.TotalFound,
		Steps:       pr.Steps,
	}
	if pending != nil {
		assistantMsg.Confirmation = model.AwaitConfirmation(*pending)
	}

	return p.appendAssistantReply(ctx, req.UserID, sess.ID, assistantMsg, pr, analysis, immediate), nil
}

func (p *TurnProcessor) appendAssistantReply(ctx context.Context, userID, sessionID string, msg model.ChatMessage, pr response.ProcessedResponse, analysis *analyzer.Analysis, immediate []dispatch.ImmediateResult) *TurnResult {
	if err := p.sessions.AppendMessage(ctx, userID, sessionID, msg); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to store assistant message")
	}

	result := &TurnResult{
		SessionID:            sessionID,
		Message:              msg,
		DisplayText:          response.Decorate(msg.Text),
		AwaitingConfirmation: msg.AwaitingConfirmation(),
		PendingAction:        msg.PendingAction(),
		Analysis:             analysis,
		Immediate:            immediate,
	}
	if response.ShouldNavigate(pr) {
		result.Navigate = true
		result.NavigationPayload = response.NavigationPayload(pr)
	}
	return result
}

// resolveSession finds the requested session, falls back to the active one,
// and creates a fresh session when neither exists.
func (p *TurnProcessor) resolveSession(ctx context.Context, req TurnRequest) (*model.ChatSession, error) {
	if req.SessionID != "" {
		sess, err := p.sessions.Get(ctx, req.UserID, req.SessionID)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
	}

	if sess, err := p.sessions.Active(ctx, req.UserID); err == nil {
		return sess, nil
	}
	return p.sessions.Create(ctx, req.UserID)
}

func assistantMessage(text string) model.ChatMessage {
	return model.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    model.SenderAssistant,
		Text:      text,
		Timestamp: time.Now(),
	}
}
