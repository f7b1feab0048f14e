package dispatch

import (
	"context"
	"fmt"
	"testing"

	"github.com/NextShop-AI/assistant-go/model"
	"github.com/NextShop-AI/assistant-go/session"
	"github.com/NextShop-AI/assistant-go/shop"
)

// mockShop records mutation calls and fails them on demand. View reads
// serve canned cart and wishlist contents.
type mockShop struct {
	Calls            []string
	Err              error
	ViewErr          error
	CartContents     []shop.CartItem
	WishlistContents []model.Product
}

func (m *mockShop) record(op, productID string) error {
	m.Calls = append(m.Calls, fmt.Sprintf("%s:%s", op, productID))
	return m.Err
}

func (m *mockShop) CartAdd(ctx context.Context, token, productID string) error {
	return m.record("cart.add", productID)
}

func (m *mockShop) CartRemove(ctx context.Context, token, productID string) error {
	return m.record("cart.remove", productID)
}

func (m *mockShop) WishlistAdd(ctx context.Context, token, productID string) error {
	return m.record("wishlist.add", productID)
}

func (m *mockShop) WishlistRemove(ctx context.Context, token, productID string) error {
	return m.record("wishlist.remove", productID)
}

func (m *mockShop) Cart(ctx context.Context, token string) ([]shop.CartItem, error) {
	if m.ViewErr != nil {
		return nil, m.ViewErr
	}
	return m.CartContents, nil
}

func (m *mockShop) Wishlist(ctx context.Context, token string) ([]model.Product, error) {
	if m.ViewErr != nil {
		return nil, m.ViewErr
	}
	return m.WishlistContents, nil
}

// mockSessions holds sessions by id and collects appended follow-up
// messages. Update runs against the live session, like the real store.
type mockSessions struct {
	Sessions map[string]*model.ChatSession
	Appended []model.ChatMessage
}

func newMockSessions(sessions ...*model.ChatSession) *mockSessions {
	m := &mockSessions{Sessions: map[string]*model.ChatSession{}}
	for _, sess := range sessions {
		m.Sessions[sess.ID] = sess
	}
	return m
}

func (m *mockSessions) AppendMessage(ctx context.Context, userID, sessionID string, msg model.ChatMessage) error {
	m.Appended = append(m.Appended, msg)
	return nil
}

func (m *mockSessions) Update(ctx context.Context, userID, sessionID string, fn func(*model.ChatSession)) error {
	sess, ok := m.Sessions[sessionID]
	if !ok {
		return session.ErrNotFound
	}
	fn(sess)
	return nil
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		handler model.HandlerType
		want    Class
	}{
		{model.HandlerCartAdd, ClassConfirmable},
		{model.HandlerCartRemove, ClassConfirmable},
		{model.HandlerWishlistAdd, ClassConfirmable},
		{model.HandlerWishlistRemove, ClassConfirmable},
		{model.HandlerAuthLogin, ClassImmediate},
		{model.HandlerAuthLogout, ClassImmediate},
		{model.HandlerCartView, ClassImmediate},
		{model.HandlerWishlistView, ClassImmediate},
		{model.HandlerOrdersView, ClassImmediate},
		{model.HandlerType("bogus"), ClassUnknown},
	}

	for _, tc := range testCases {
		if got := Classify(tc.handler); got != tc.want {
			t.Errorf("Classify(%s) = %v, want %v", tc.handler, got, tc.want)
		}
	}
}

func TestInspect(t *testing.T) {
	d := NewDispatcher(&mockShop{}, &mockSessions{})
	fallback := []model.Product{{ID: "f1", Name: "Fallback Jacket"}}

	actions := []model.Action{
		{Type: "navigate", Payload: map[string]any{"path": "/products"}},
		{Type: "add_to_cart"},
		{Type: "add_to_wishlist"},
		{Type: "ui_handler", Payload: map[string]any{"handler": "cart.view"}},
		{Type: "ui_handler", Payload: map[string]any{"handler": "not.a.handler"}},
	}

	pending, immediate := d.Inspect(actions, fallback)

	if pending == nil {
		t.Fatal("Expected a pending action")
	}
	if pending.Type != model.HandlerCartAdd {
		t.Errorf("Expected first confirmable action to win, got %s", pending.Type)
	}
	if len(pending.Products) != 1 || pending.Products[0].ID != "f1" {
		t.Errorf("Expected fallback products on the pending action, got %v", pending.Products)
	}

	if len(immediate) != 1 {
		t.Fatalf("Expected 1 immediate result, got %d", len(immediate))
	}
	if immediate[0].Handler != model.HandlerCartView || immediate[0].NavigateTo != "/cart" {
		t.Errorf("Unexpected immediate result: %+v", immediate[0])
	}
}

func TestInspect_PayloadProductsBeatFallback(t *testing.T) {
	d := NewDispatcher(&mockShop{}, &mockSessions{})

	actions := []model.Action{
		{Type: "add_to_cart", Payload: map[string]any{
			"products": []any{map[string]any{"id": "own", "name": "Own Product"}},
		}},
	}

	pending, _ := d.Inspect(actions, []model.Product{{ID: "fallback"}})

	if pending == nil {
		t.Fatal("Expected a pending action")
	}
	if len(pending.Products) != 1 || pending.Products[0].ID != "own" {
		t.Errorf("Expected the payload's own products, got %v", pending.Products)
	}
}

func TestInspect_NoActions(t *testing.T) {
	d := NewDispatcher(&mockShop{}, &mockSessions{})

	pending, immediate := d.Inspect(nil, nil)
	if pending != nil || immediate != nil {
		t.Errorf("Expected nothing from empty actions, got %v, %v", pending, immediate)
	}
}

func TestFetchViews(t *testing.T) {
	shopMock := &mockShop{
		CartContents:     []shop.CartItem{{ProductID: "p1", Quantity: 2}},
		WishlistContents: []model.Product{{ID: "p2", Name: "Coat"}},
	}
	d := NewDispatcher(shopMock, &mockSessions{})

	results := []ImmediateResult{
		{Handler: model.HandlerCartView, NavigateTo: "/cart"},
		{Handler: model.HandlerWishlistView, NavigateTo: "/wishlist"},
		{Handler: model.HandlerOrdersView, NavigateTo: "/orders"},
	}

	enriched := d.FetchViews(context.Background(), "token", results)

	if len(enriched[0].CartItems) != 1 || enriched[0].CartItems[0].ProductID != "p1" {
		t.Errorf("Expected cart view enriched with cart contents, got %+v", enriched[0])
	}
	if len(enriched[1].Products) != 1 || enriched[1].Products[0].ID != "p2" {
		t.Errorf("Expected wishlist view enriched with wishlist contents, got %+v", enriched[1])
	}
	if enriched[2].CartItems != nil || enriched[2].Products != nil {
		t.Errorf("Expected orders view untouched, got %+v", enriched[2])
	}
}

func TestFetchViews_GuestSkipsFetch(t *testing.T) {
	shopMock := &mockShop{CartContents: []shop.CartItem{{ProductID: "p1"}}}
	d := NewDispatcher(shopMock, &mockSessions{})

	results := d.FetchViews(context.Background(), "", []ImmediateResult{
		{Handler: model.HandlerCartView, NavigateTo: "/cart"},
	})

	if results[0].CartItems != nil {
		t.Errorf("Expected no contents for a guest, got %+v", results[0].CartItems)
	}
}

func TestFetchViews_FetchFailureLeavesNavigation(t *testing.T) {
	shopMock := &mockShop{ViewErr: fmt.Errorf("storefront unavailable")}
	d := NewDispatcher(shopMock, &mockSessions{})

	results := d.FetchViews(context.Background(), "token", []ImmediateResult{
		{Handler: model.HandlerWishlistView, NavigateTo: "/wishlist"},
	})

	if results[0].Products != nil {
		t.Errorf("Expected pure navigation on fetch failure, got %+v", results[0])
	}
	if results[0].NavigateTo != "/wishlist" {
		t.Errorf("Expected navigation target kept, got '%s'", results[0].NavigateTo)
	}
}
