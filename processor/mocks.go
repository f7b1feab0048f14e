package processor

import (
	"context"
	"encoding/json"

	"github.com/NextShop-AI/assistant-go/model"
	"github.com/NextShop-AI/assistant-go/nex"
	"github.com/NextShop-AI/assistant-go/session"
	"github.com/NextShop-AI/assistant-go/shop"
)

// MockNexClient implements NexClientInterface for tests and local runs. It
// returns the queued payloads in order, then the last one forever.
type MockNexClient struct {
	Payloads []json.RawMessage
	Err      error
	Requests []nex.Request
}

func (m *MockNexClient) Converse(ctx context.Context, req nex.Request) (json.RawMessage, error) {
	m.Requests = append(m.Requests, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Payloads) == 0 {
		return json.RawMessage(`{"message":"ok"}`), nil
	}
	payload := m.Payloads[0]
	if len(m.Payloads) > 1 {
		m.Payloads = m.Payloads[1:]
	}
	return payload, nil
}

// MockShopClient implements dispatch.ShopClient, recording every mutation
// and serving canned cart and wishlist contents.
type MockShopClient struct {
	Calls         []string
	Err           error
	CartItems     []shop.CartItem
	WishlistItems []model.Product
}

func (m *MockShopClient) record(op, productID string) error {
	m.Calls = append(m.Calls, op+":"+productID)
	return m.Err
}

func (m *MockShopClient) CartAdd(ctx context.Context, token, productID string) error {
	return m.record("cart.add", productID)
}

func (m *MockShopClient) CartRemove(ctx context.Context, token, productID string) error {
	return m.record("cart.remove", productID)
}

func (m *MockShopClient) WishlistAdd(ctx context.Context, token, productID string) error {
	return m.record("wishlist.add", productID)
}

func (m *MockShopClient) WishlistRemove(ctx context.Context, token, productID string) error {
	return m.record("wishlist.remove", productID)
}

func (m *MockShopClient) Cart(ctx context.Context, token string) ([]shop.CartItem, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.CartItems, nil
}

func (m *MockShopClient) Wishlist(ctx context.Context, token string) ([]model.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.WishlistItems, nil
}

// NewMemoryStore builds a real session store over the in-memory backend,
// which is what tests and local mode want.
func NewMemoryStore() *session.Store {
	return session.NewStore(session.NewMemoryBackend())
}

// lastAssistantMessage is a small test helper shared across suites.
func lastAssistantMessage(sess *model.ChatSession) *model.ChatMessage {
	for i := len(sess.Messages) - 1; i >= 0; i-- {
		if sess.Messages[i].Sender == model.SenderAssistant {
			return &sess.Messages[i]
		}
	}
	return nil
}
