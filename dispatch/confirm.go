package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NextShop-AI/assistant-go/auth"
	"github.com/NextShop-AI/assistant-go/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrNoPendingAction is returned when a confirm targets a message that has
// nothing awaiting confirmation.
var ErrNoPendingAction = errors.New("message has no pending action")

// ConfirmOutcome tells the UI what the confirm call did.
type ConfirmOutcome struct {
	Executed      bool               `json:"executed"`
	AuthRequired  bool               `json:"authRequired"`
	FollowUp      *model.ChatMessage `json:"followUp,omitempty"`
	FailedProduct string             `json:"failedProduct,omitempty"`
}

// Confirm runs the user-accepts transition for a message's pending action.
// State moves inside the store's lock, so two racing confirms resolve to
// one execution: the loser finds the message already past
// awaiting_confirmation and gets ErrNoPendingAction.
//
// Unauthenticated: nothing executes. A sign-in prompt is appended, the
// action is stashed at session scope for replay after login, and the
// message's confirmation state is cleared.
//
// Authenticated: the action executes across every product in the pending
// set, outside the lock. Failures surface as a chat-visible error; either
// way the message leaves awaiting_confirmation.
func (d *Dispatcher) Confirm(ctx context.Context, userID, sessionID, messageID string, ident *auth.Identity, token string) (*ConfirmOutcome, error) {
	var action model.PendingAction
	var pending bool
	err := d.sessions.Update(ctx, userID, sessionID, func(sess *model.ChatSession) {
		msg := sess.Message(messageID)
		if msg == nil || !msg.AwaitingConfirmation() {
			return
		}
		action = *msg.Confirmation.Action
		pending = true

		if ident == nil {
			deferred := &model.DeferredAction{Type: action.Type}
			if len(action.Products) > 0 {
				first := action.Products[0]
				deferred.Product = &first
			}
			sess.Deferred = deferred
			msg.Confirmation = model.Resolve(model.ConfirmationIdle)
			return
		}
		msg.Confirmation = model.Confirmation{Status: model.ConfirmationExecuting, Action: &action}
	})
	if err != nil {
		return nil, err
	}
	if !pending {
		return nil, ErrNoPendingAction
	}

	if ident == nil {
		prompt := d.assistantMessage(
			fmt.Sprintf("You'll need to sign in before I can %s. Your request is saved and I'll finish it right after.", describeAction(action.Type)),
			model.Button{Label: "Sign in", Target: "/login"},
		)
		if err := d.sessions.AppendMessage(ctx, userID, sessionID, prompt); err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to append sign-in prompt")
		}

		log.Info().
			Str("session_id", sessionID).
			Str("action", string(action.Type)).
			Msg("Confirmed action deferred pending authentication")
		return &ConfirmOutcome{AuthRequired: true, FollowUp: &prompt}, nil
	}

	var followUp model.ChatMessage
	outcome := &ConfirmOutcome{}
	if failed, err := d.execute(ctx, token, action.Type, action.Products); err != nil {
		log.Error().
			Err(err).
			Str("session_id", sessionID).
			Str("action", string(action.Type)).
			Msg("Confirmed action failed to execute")
		d.setConfirmation(ctx, userID, sessionID, messageID, model.Resolve(model.ConfirmationIdle))
		followUp = d.assistantMessage(fmt.Sprintf("Sorry, I couldn't %s: %v", describeAction(action.Type), err))
		outcome.FailedProduct = failed
	} else {
		d.setConfirmation(ctx, userID, sessionID, messageID, model.Resolve(model.ConfirmationCompleted))
		followUp = d.assistantMessage(
			successText(action),
			model.Button{Label: viewLabel(action.Type), Target: viewTarget(action.Type)},
		)
		outcome.Executed = true
	}

	if err := d.sessions.AppendMessage(ctx, userID, sessionID, followUp); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to append confirmation follow-up")
	}
	outcome.FollowUp = &followUp
	return outcome, nil
}

// Cancel runs the user-declines transition. The message never stays in
// awaiting_confirmation after a cancel, whatever state it was in.
func (d *Dispatcher) Cancel(ctx context.Context, userID, sessionID, messageID string) (*model.ChatMessage, error) {
	var found bool
	err := d.sessions.Update(ctx, userID, sessionID, func(sess *model.ChatSession) {
		msg := sess.Message(messageID)
		if msg == nil {
			return
		}
		msg.Confirmation = model.Resolve(model.ConfirmationCancelled)
		found = true
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoPendingAction
	}

	ack := d.assistantMessage("No problem, I won't do that. Anything else I can help with?")
	if err := d.sessions.AppendMessage(ctx, userID, sessionID, ack); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to append cancel acknowledgement")
	}
	return &ack, nil
}

// ReplayDeferred executes the session's deferred action after sign-in
// completes. The deferral is consumed under the lock before execution so
// the action can never run twice, even if the user confirms again
// mid-replay.
func (d *Dispatcher) ReplayDeferred(ctx context.Context, userID, sessionID, token string) (*model.ChatMessage, bool) {
	var deferred model.DeferredAction
	var consumed bool
	err := d.sessions.Update(ctx, userID, sessionID, func(sess *model.ChatSession) {
		if sess.Deferred == nil {
			return
		}
		deferred = *sess.Deferred
		sess.Deferred = nil
		consumed = true
	})
	if err != nil || !consumed {
		return nil, false
	}

	var products []model.Product
	if deferred.Product != nil {
		products = []model.Product{*deferred.Product}
	}

	var followUp model.ChatMessage
	if _, err := d.execute(ctx, token, deferred.Type, products); err != nil {
		log.Error().
			Err(err).
			Str("session_id", sessionID).
			Str("action", string(deferred.Type)).
			Msg("Deferred action failed after sign-in")
		followUp = d.assistantMessage(fmt.Sprintf("You're signed in now, but I still couldn't %s: %v", describeAction(deferred.Type), err))
	} else {
		followUp = d.assistantMessage(
			"You're signed in. "+successText(model.PendingAction{Type: deferred.Type, Products: products}),
			model.Button{Label: viewLabel(deferred.Type), Target: viewTarget(deferred.Type)},
		)
	}

	if err := d.sessions.AppendMessage(ctx, userID, sessionID, followUp); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to append replay follow-up")
	}
	return &followUp, true
}

// setConfirmation moves a message's confirmation state through the store.
func (d *Dispatcher) setConfirmation(ctx context.Context, userID, sessionID, messageID string, state model.Confirmation) {
	err := d.sessions.Update(ctx, userID, sessionID, func(sess *model.ChatSession) {
		if msg := sess.Message(messageID); msg != nil {
			msg.Confirmation = state
		}
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to update confirmation state")
	}
}

// execute applies the mutation to every product in the set. It stops at the
// first failure and reports which product failed.
func (d *Dispatcher) execute(ctx context.Context, token string, handler model.HandlerType, products []model.Product) (string, error) {
	for _, product := range products {
		var err error
		switch handler {
		case model.HandlerCartAdd:
			err = d.shop.CartAdd(ctx, token, product.ID)
		case model.HandlerCartRemove:
			err = d.shop.CartRemove(ctx, token, product.ID)
		case model.HandlerWishlistAdd:
			err = d.shop.WishlistAdd(ctx, token, product.ID)
		case model.HandlerWishlistRemove:
			err = d.shop.WishlistRemove(ctx, token, product.ID)
		default:
			return "", fmt.Errorf("handler %s is not executable", handler)
		}
		if err != nil {
			return product.ID, fmt.Errorf("%s failed for %s: %w", handler, product.Name, err)
		}
	}
	return "", nil
}

func (d *Dispatcher) assistantMessage(text string, buttons ...model.Button) model.ChatMessage {
	return model.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    model.SenderAssistant,
		Text:      text,
		Timestamp: time.Now(),
		Buttons:   buttons,
	}
}

func describeAction(handler model.HandlerType) string {
	switch handler {
	case model.HandlerCartAdd:
		return "add that to your cart"
	case model.HandlerCartRemove:
		return "remove that from your cart"
	case model.HandlerWishlistAdd:
		return "save that to your wishlist"
	case model.HandlerWishlistRemove:
		return "remove that from your wishlist"
	default:
		return "do that"
	}
}

func successText(action model.PendingAction) string {
	count := len(action.Products)
	var noun string
	if count == 1 {
		noun = action.Products[0].Name
	} else {
		noun = fmt.Sprintf("%d items", count)
	}

	switch action.Type {
	case model.HandlerCartAdd:
		return fmt.Sprintf("Added %s to your cart.", noun)
	case model.HandlerCartRemove:
		return fmt.Sprintf("Removed %s from your cart.", noun)
	case model.HandlerWishlistAdd:
		return fmt.Sprintf("Saved %s to your wishlist.", noun)
	case model.HandlerWishlistRemove:
		return fmt.Sprintf("Removed %s from your wishlist.", noun)
	default:
		return "Done."
	}
}

func viewLabel(handler model.HandlerType) string {
	switch handler {
	case model.HandlerCartAdd, model.HandlerCartRemove:
		return "View cart"
	default:
		return "View wishlist"
	}
}

func viewTarget(handler model.HandlerType) string {
	switch handler {
	case model.HandlerCartAdd, model.HandlerCartRemove:
		return "/cart"
	default:
		return "/wishlist"
	}
}
