package model

// Action is a backend-requested UI operation attached to a response.
type Action struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// HandlerType names a UI handler the backend may request.
type HandlerType string

const (
	HandlerCartAdd        HandlerType = "cart.add"
	HandlerCartRemove     HandlerType = "cart.remove"
	HandlerWishlistAdd    HandlerType = "wishlist.add"
	HandlerWishlistRemove HandlerType = "wishlist.remove"
	HandlerAuthLogin      HandlerType = "auth.login"
	HandlerAuthLogout     HandlerType = "auth.logout"
	HandlerCartView       HandlerType = "cart.view"
	HandlerWishlistView   HandlerType = "wishlist.view"
	HandlerOrdersView     HandlerType = "orders.view"
)

// PendingAction is a mutating operation proposed by the backend but not yet
// executed. Products is empty for auth handlers.
type PendingAction struct {
	Type     HandlerType `json:"type"`
	Products []Product   `json:"products"`
}

// DeferredAction is a confirmed action blocked on authentication, stashed at
// session scope so it can be replayed once sign-in completes. Only the first
// product survives the deferral.
type DeferredAction struct {
	Type    HandlerType `json:"type"`
	Product *Product    `json:"product,omitempty"`
}

// ConfirmationStatus is the per-message confirmation state.
type ConfirmationStatus string

const (
	ConfirmationIdle      ConfirmationStatus = "idle"
	ConfirmationAwaiting  ConfirmationStatus = "awaiting_confirmation"
	ConfirmationExecuting ConfirmationStatus = "executing"
	ConfirmationCompleted ConfirmationStatus = "completed"
	ConfirmationCancelled ConfirmationStatus = "cancelled"
)

// Confirmation is the tagged confirmation state of a message. Action is set
// exactly when Status is ConfirmationAwaiting; the constructors below are the
// only intended way to move between states, which keeps that invariant out of
// callers' hands.
type Confirmation struct {
	Status ConfirmationStatus
	Action *PendingAction
}

// AwaitConfirmation builds the awaiting state carrying the given action.
func AwaitConfirmation(action PendingAction) Confirmation {
	return Confirmation{Status: ConfirmationAwaiting, Action: &action}
}

// Resolve returns a terminal (or idle) state with the action cleared.
func Resolve(status ConfirmationStatus) Confirmation {
	if status == ConfirmationAwaiting {
		status = ConfirmationIdle
	}
	return Confirmation{Status: status}
}

// Awaiting reports whether the state is awaiting confirmation.
func (c Confirmation) Awaiting() bool {
	return c.Status == ConfirmationAwaiting && c.Action != nil
}
