package nex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestConverse_SendsHandlersAndCategories(t *testing.T) {
	var received Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/assistant/reason" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Write([]byte(`{"message": "ok"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, http.Client{}, []string{"electronics", "jewelery"})

	raw, err := client.Converse(context.Background(), Request{Query: "find a jacket", UserID: "u1"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(raw) != `{"message": "ok"}` {
		t.Errorf("Expected the raw payload passed through, got %s", raw)
	}

	if received.Query != "find a jacket" {
		t.Errorf("Expected the query forwarded, got '%s'", received.Query)
	}
	if len(received.AvailableCategories) != 2 {
		t.Errorf("Expected the configured categories advertised, got %v", received.AvailableCategories)
	}
	if len(received.UIHandlers) == 0 {
		t.Error("Expected the handler vocabulary advertised")
	}
}

func TestHealth_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"status": "ok"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, http.Client{}, nil)

	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestSend_ClientErrorsAreNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`bad request`))
	}))
	defer server.Close()

	client := NewClient(server.URL, http.Client{}, nil)

	err := client.Health(context.Background())
	if err == nil {
		t.Fatal("Expected an error for a 400 response")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Errorf("Expected the status in the error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected a single attempt for a client error, got %d", attempts)
	}
}

func TestConverse_CancelledContextSurfacesAsCanceled(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, http.Client{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.Converse(ctx, Request{Query: "find a jacket", UserID: "u1"})
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestHandlerContexts(t *testing.T) {
	contexts := HandlerContexts()

	if len(contexts) != 9 {
		t.Fatalf("Expected 9 handler contexts, got %d", len(contexts))
	}

	byName := map[string]HandlerContext{}
	for _, hc := range contexts {
		byName[hc.Name] = hc
	}

	for _, name := range []string{"cart.add", "cart.remove", "wishlist.add", "wishlist.remove"} {
		hc, ok := byName[name]
		if !ok {
			t.Errorf("Expected handler %s advertised", name)
			continue
		}
		if !hc.Confirm {
			t.Errorf("Expected mutating handler %s to require confirmation", name)
		}
		if hc.Payload == nil {
			t.Errorf("Expected a payload schema for %s", name)
		}
	}

	for _, name := range []string{"cart.view", "wishlist.view", "orders.view", "auth.login", "auth.logout"} {
		hc, ok := byName[name]
		if !ok {
			t.Errorf("Expected handler %s advertised", name)
			continue
		}
		if hc.Confirm {
			t.Errorf("Expected handler %s not to require confirmation", name)
		}
	}
}
