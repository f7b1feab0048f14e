package nex

import (
	"github.com/NextShop-AI/assistant-go/model"

	"github.com/invopop/jsonschema"
)

// HandlerContext advertises one UI handler to the reasoning server so it
// knows which operations it may request and with what payload shape.
type HandlerContext struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Confirm     bool               `json:"requiresConfirmation"`
	Payload     *jsonschema.Schema `json:"payloadSchema,omitempty"`
}

// MutationPayload is the payload shape for cart and wishlist handlers.
type MutationPayload struct {
	Handler  string          `json:"handler" jsonschema:"description=Handler name being requested"`
	Products []model.Product `json:"products" jsonschema:"description=Products the action applies to"`
}

// ViewPayload is the payload shape for the navigational view handlers.
type ViewPayload struct {
	Handler string `json:"handler"`
}

// HandlerContexts builds the full UI handler vocabulary sent with every
// conversation request.
func HandlerContexts() []HandlerContext {
	reflector := jsonschema.Reflector{DoNotReference: true}
	mutation := reflector.Reflect(&MutationPayload{})
	view := reflector.Reflect(&ViewPayload{})

	return []HandlerContext{
		{Name: string(model.HandlerCartAdd), Description: "Add products to the user's cart", Confirm: true, Payload: mutation},
		{Name: string(model.HandlerCartRemove), Description: "Remove products from the user's cart", Confirm: true, Payload: mutation},
		{Name: string(model.HandlerWishlistAdd), Description: "Save products to the user's wishlist", Confirm: true, Payload: mutation},
		{Name: string(model.HandlerWishlistRemove), Description: "Remove products from the user's wishlist", Confirm: true, Payload: mutation},
		{Name: string(model.HandlerCartView), Description: "Open the cart view", Payload: view},
		{Name: string(model.HandlerWishlistView), Description: "Open the wishlist view", Payload: view},
		{Name: string(model.HandlerOrdersView), Description: "Open the order history view", Payload: view},
		{Name: string(model.HandlerAuthLogin), Description: "Prompt the user to sign in", Payload: view},
		{Name: string(model.HandlerAuthLogout), Description: "Sign the user out", Payload: view},
	}
}
