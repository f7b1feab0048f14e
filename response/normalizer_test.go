package response

import (
	"encoding/json"
	"testing"

	"github.com/NextShop-AI/assistant-go/model"
)

func TestNormalize_StringPayload(t *testing.T) {
	pr := Normalize("Here are your results")

	if pr.Message != "Here are your results" {
		t.Errorf("Expected message to pass through, got '%s'", pr.Message)
	}
	if pr.DisplayMode != model.DisplayChatOnly {
		t.Errorf("Expected chat_only display mode, got '%s'", pr.DisplayMode)
	}
	if pr.Products != nil {
		t.Errorf("Expected no products for string payload, got %d", len(pr.Products))
	}
}

func TestNormalize_WrappedSuccess(t *testing.T) {
	raw := []byte(`{
		"success": true,
		"result": {
			"message": "Found 2",
			"data": {
				"products": [
					{"id": "p1", "name": "Jacket", "category": "men's clothing", "price": 49.99},
					{"id": "p2", "name": "Coat", "category": "men's clothing", "price": 89.99}
				],
				"totalFound": 2
			}
		}
	}`)

	pr := NormalizeRaw(raw)

	if pr.Message != "Found 2" {
		t.Errorf("Expected message 'Found 2', got '%s'", pr.Message)
	}
	if len(pr.Products) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(pr.Products))
	}
	if pr.Products[0].ID != "p1" || pr.Products[1].ID != "p2" {
		t.Errorf("Expected products p1, p2, got %s, %s", pr.Products[0].ID, pr.Products[1].ID)
	}
	if pr.TotalFound != 2 {
		t.Errorf("Expected totalFound 2, got %d", pr.TotalFound)
	}
	if pr.DisplayMode != model.DisplayChatOnly {
		t.Errorf("Expected displayMode defaulted to chat_only, got '%s'", pr.DisplayMode)
	}
}

func TestNormalize_BareObjectVariants(t *testing.T) {
	testCases := []struct {
		name         string
		payload      string
		wantMessage  string
		wantProducts int
	}{
		{
			name:         "text field",
			payload:      `{"text": "hello"}`,
			wantMessage:  "hello",
			wantProducts: -1,
		},
		{
			name:         "content field",
			payload:      `{"content": "hi there"}`,
			wantMessage:  "hi there",
			wantProducts: -1,
		},
		{
			name:         "products on object",
			payload:      `{"message": "ok", "products": [{"id": "1"}]}`,
			wantMessage:  "ok",
			wantProducts: 1,
		},
		{
			name:         "results key",
			payload:      `{"message": "ok", "results": [{"id": "1"}, {"id": "2"}]}`,
			wantMessage:  "ok",
			wantProducts: 2,
		},
		{
			name:         "items key",
			payload:      `{"message": "ok", "items": [{"id": "1"}]}`,
			wantMessage:  "ok",
			wantProducts: 1,
		},
		{
			name:         "empty products array is kept",
			payload:      `{"message": "nothing matched", "products": []}`,
			wantMessage:  "nothing matched",
			wantProducts: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pr := NormalizeRaw([]byte(tc.payload))

			if pr.Message != tc.wantMessage {
				t.Errorf("Expected message '%s', got '%s'", tc.wantMessage, pr.Message)
			}
			if tc.wantProducts == -1 {
				if pr.Products != nil {
					t.Errorf("Expected nil products, got %v", pr.Products)
				}
			} else {
				if pr.Products == nil {
					t.Fatalf("Expected %d products, got nil", tc.wantProducts)
				}
				if len(pr.Products) != tc.wantProducts {
					t.Errorf("Expected %d products, got %d", tc.wantProducts, len(pr.Products))
				}
			}
		})
	}
}

func TestNormalize_EmptyVersusMissingProducts(t *testing.T) {
	withEmpty := NormalizeRaw([]byte(`{"message": "no hits", "products": []}`))
	if withEmpty.Products == nil || len(withEmpty.Products) != 0 {
		t.Errorf("Expected empty non-nil products, got %v", withEmpty.Products)
	}

	without := NormalizeRaw([]byte(`{"message": "just chat"}`))
	if without.Products != nil {
		t.Errorf("Expected nil products, got %v", without.Products)
	}
}

func TestNormalize_MalformedPayloads(t *testing.T) {
	testCases := []struct {
		name    string
		payload any
	}{
		{"nil", nil},
		{"number", 42.0},
		{"bool", true},
		{"empty object", map[string]any{}},
		{"unrelated object", map[string]any{"foo": "bar"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pr := Normalize(tc.payload)
			if pr.Message == "" {
				t.Error("Expected non-empty fallback message")
			}
			if pr.DisplayMode != model.DisplayChatOnly {
				t.Errorf("Expected chat_only on fallback, got '%s'", pr.DisplayMode)
			}
		})
	}
}

func TestNormalizeRaw_InvalidJSON(t *testing.T) {
	pr := NormalizeRaw([]byte(`{not json`))
	if pr.Message != FallbackMessage {
		t.Errorf("Expected fallback message, got '%s'", pr.Message)
	}
}

func TestNormalize_ActionsAndSteps(t *testing.T) {
	raw := []byte(`{
		"message": "done",
		"displayMode": "dual_view",
		"actions": [
			{"type": "navigate", "payload": {"path": "/products/jackets"}},
			{"type": "ui_handler", "payload": {"handler": "cart.add"}}
		],
		"steps": [
			{"step": 1, "description": "Parsed query", "status": "complete"},
			{"step": 2, "description": "Searched catalogue", "status": "complete"}
		]
	}`)

	pr := NormalizeRaw(raw)

	if pr.DisplayMode != model.DisplayDualView {
		t.Errorf("Expected dual_view, got '%s'", pr.DisplayMode)
	}
	if len(pr.Actions) != 2 {
		t.Fatalf("Expected 2 actions, got %d", len(pr.Actions))
	}
	if pr.Actions[0].Type != "navigate" {
		t.Errorf("Expected first action navigate, got '%s'", pr.Actions[0].Type)
	}
	if len(pr.Steps) != 2 || pr.Steps[1].Description != "Searched catalogue" {
		t.Errorf("Expected 2 steps with descriptions, got %v", pr.Steps)
	}
}

func TestShouldNavigate_Boundary(t *testing.T) {
	makeProducts := func(n int) []model.Product {
		products := make([]model.Product, n)
		return products
	}

	testCases := []struct {
		name string
		pr   ProcessedResponse
		want bool
	}{
		{"auto_navigate mode", ProcessedResponse{DisplayMode: model.DisplayAutoNavigate}, true},
		{"chat_only no products", ProcessedResponse{DisplayMode: model.DisplayChatOnly}, false},
		{"exactly 3 products", ProcessedResponse{DisplayMode: model.DisplayChatOnly, Products: makeProducts(3)}, false},
		{"4 products", ProcessedResponse{DisplayMode: model.DisplayChatOnly, Products: makeProducts(4)}, true},
		{"dual_view with 2 products", ProcessedResponse{DisplayMode: model.DisplayDualView, Products: makeProducts(2)}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldNavigate(tc.pr); got != tc.want {
				t.Errorf("ShouldNavigate() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNavigationPayload(t *testing.T) {
	pr := ProcessedResponse{
		Actions: []model.Action{
			{Type: "filter_products", Payload: map[string]any{"category": "jackets"}},
			{Type: "navigate", Payload: map[string]any{"path": "/products/jackets"}},
		},
	}

	payload := NavigationPayload(pr)
	if payload["path"] != "/products/jackets" {
		t.Errorf("Expected navigate action payload, got %v", payload)
	}

	fallback := NavigationPayload(ProcessedResponse{})
	if fallback["path"] != "/products" {
		t.Errorf("Expected generic listing fallback, got %v", fallback)
	}
}

func TestDecorate(t *testing.T) {
	testCases := []struct {
		message string
		prefix  string
	}{
		{"Found 5 products for you", "🔍"},
		{"Added to your cart", "🛒"},
		{"Saved to your wishlist", "💝"},
		{"Sorry, something went wrong", "⚠️"},
		{"I can help with that", "💡"},
		{"Just a plain reply", ""},
	}

	for _, tc := range testCases {
		decorated := Decorate(tc.message)
		if tc.prefix == "" {
			if decorated != tc.message {
				t.Errorf("Expected '%s' unchanged, got '%s'", tc.message, decorated)
			}
			continue
		}
		if decorated != tc.prefix+" "+tc.message {
			t.Errorf("Expected '%s' prefixed with %s, got '%s'", tc.message, tc.prefix, decorated)
		}
	}
}

func TestNormalize_BareProductArray(t *testing.T) {
	var payload any
	if err := json.Unmarshal([]byte(`[{"id": "a"}, {"id": "b"}]`), &payload); err != nil {
		t.Fatal(err)
	}

	pr := Normalize(payload)
	if len(pr.Products) != 2 {
		t.Errorf("Expected 2 products from bare array, got %d", len(pr.Products))
	}
	if pr.Message == "" {
		t.Error("Expected non-empty message for bare array payload")
	}
}
