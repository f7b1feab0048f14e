// Package dispatch decides whether a backend-requested UI action needs user
// confirmation, tracks the pending action on the message, and executes or
// cancels it. Cart and wishlist mutations never run without an explicit
// confirm, and never without a signed-in user.
package dispatch

import (
	"context"

	"github.com/NextShop-AI/assistant-go/model"
	"github.com/NextShop-AI/assistant-go/shop"

	"github.com/rs/zerolog/log"
)

// ShopClient is the slice of the storefront API the dispatcher mutates
// and reads through.
type ShopClient interface {
	CartAdd(ctx context.Context, token, productID string) error
	CartRemove(ctx context.Context, token, productID string) error
	WishlistAdd(ctx context.Context, token, productID string) error
	WishlistRemove(ctx context.Context, token, productID string) error
	Cart(ctx context.Context, token string) ([]shop.CartItem, error)
	Wishlist(ctx context.Context, token string) ([]model.Product, error)
}

// SessionWriter is the slice of the session store the dispatcher works
// through. Update runs its callback against the live session under the
// store's lock; the dispatcher never holds a session reference of its own.
type SessionWriter interface {
	AppendMessage(ctx context.Context, userID, sessionID string, msg model.ChatMessage) error
	Update(ctx context.Context, userID, sessionID string, fn func(*model.ChatSession)) error
}

// Class is a handler's dispatch classification.
type Class int

const (
	// ClassUnknown handlers are ignored.
	ClassUnknown Class = iota
	// ClassConfirmable handlers mutate cart or wishlist state and are
	// routed through awaiting_confirmation.
	ClassConfirmable
	// ClassImmediate handlers are non-mutating navigational or session
	// actions, dispatched without confirmation.
	ClassImmediate
)

// Classify returns the dispatch class for a handler.
func Classify(handler model.HandlerType) Class {
	switch handler {
	case model.HandlerCartAdd, model.HandlerCartRemove,
		model.HandlerWishlistAdd, model.HandlerWishlistRemove:
		return ClassConfirmable
	case model.HandlerAuthLogin, model.HandlerAuthLogout,
		model.HandlerCartView, model.HandlerWishlistView, model.HandlerOrdersView:
		return ClassImmediate
	default:
		return ClassUnknown
	}
}

// ImmediateResult is the outcome of an immediate handler, handed straight
// back to the UI. Cart and wishlist views carry the fetched contents so
// the UI can render them without a second round trip.
type ImmediateResult struct {
	Handler    model.HandlerType `json:"handler"`
	NavigateTo string            `json:"navigateTo,omitempty"`
	CartItems  []shop.CartItem   `json:"cartItems,omitempty"`
	Products   []model.Product   `json:"products,omitempty"`
}

// Dispatcher runs the confirmation state machine against the storefront API
// and the session store.
type Dispatcher struct {
	shop     ShopClient
	sessions SessionWriter
}

// NewDispatcher creates a dispatcher over the given collaborators.
func NewDispatcher(shop ShopClient, sessions SessionWriter) *Dispatcher {
	return &Dispatcher{shop: shop, sessions: sessions}
}

// Inspect classifies a response's requested actions. The first confirmable
// action becomes the message's pending action; immediate handlers resolve to
// results for the UI. fallbackProducts backs actions whose payload names no
// products of its own.
func (d *Dispatcher) Inspect(actions []model.Action, fallbackProducts []model.Product) (*model.PendingAction, []ImmediateResult) {
	var pending *model.PendingAction
	var immediate []ImmediateResult

	for _, action := range actions {
		handler, ok := handlerFor(action)
		if !ok {
			continue
		}

		switch Classify(handler) {
		case ClassConfirmable:
			if pending != nil {
				continue
			}
			products := actionProducts(action)
			if products == nil {
				products = fallbackProducts
			}
			pending = &model.PendingAction{Type: handler, Products: products}
		case ClassImmediate:
			immediate = append(immediate, ImmediateResult{
				Handler:    handler,
				NavigateTo: navigationTarget(handler),
			})
		}
	}

	return pending, immediate
}

// FetchViews fills cart and wishlist view results with the list they open.
// Guests and fetch failures leave the result as pure navigation.
func (d *Dispatcher) FetchViews(ctx context.Context, token string, results []ImmediateResult) []ImmediateResult {
	if token == "" {
		return results
	}

	for i := range results {
		switch results[i].Handler {
		case model.HandlerCartView:
			items, err := d.shop.Cart(ctx, token)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to fetch cart contents for view")
				continue
			}
			results[i].CartItems = items
		case model.HandlerWishlistView:
			products, err := d.shop.Wishlist(ctx, token)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to fetch wishlist contents for view")
				continue
			}
			results[i].Products = products
		}
	}
	return results
}

// handlerFor resolves an action to a handler name. Direct action types map
// onto the handler vocabulary; ui_handler actions carry the name in their
// payload.
func handlerFor(action model.Action) (model.HandlerType, bool) {
	switch action.Type {
	case "add_to_cart":
		return model.HandlerCartAdd, true
	case "add_to_wishlist":
		return model.HandlerWishlistAdd, true
	case "ui_handler":
		if name, ok := action.Payload["handler"].(string); ok {
			handler := model.HandlerType(name)
			if Classify(handler) != ClassUnknown {
				return handler, true
			}
		}
	}
	return "", false
}

func actionProducts(action model.Action) []model.Product {
	raw, ok := action.Payload["products"].([]any)
	if !ok {
		return nil
	}
	return model.ProductsFromAny(raw)
}

func navigationTarget(handler model.HandlerType) string {
	switch handler {
	case model.HandlerCartView:
		return "/cart"
	case model.HandlerWishlistView:
		return "/wishlist"
	case model.HandlerOrdersView:
		return "/orders"
	case model.HandlerAuthLogin:
		return "/login"
	case model.HandlerAuthLogout:
		return "/"
	default:
		return ""
	}
}
