package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NextShop-AI/assistant-go/auth"
	"github.com/NextShop-AI/assistant-go/dispatch"
	"github.com/NextShop-AI/assistant-go/execution"
	"github.com/NextShop-AI/assistant-go/processor"
	"github.com/NextShop-AI/assistant-go/session"
)

func newTestServer() (*Server, *session.Store, *execution.Manager) {
	store := session.NewStore(session.NewMemoryBackend())
	dispatcher := dispatch.NewDispatcher(&processor.MockShopClient{}, store)
	runs := execution.NewManager()
	turns := processor.NewTurnProcessor(&processor.MockNexClient{}, store, dispatcher, runs)
	verifier := auth.NewVerifier("test-secret")
	health := func() map[string]string { return map[string]string{"status": "ok"} }

	return New(turns, store, dispatcher, verifier, runs, health), store, runs
}

func TestDeleteSession_CancelsInFlightRun(t *testing.T) {
	srv, store, runs := newTestServer()
	ctx := context.Background()

	sess, err := store.Create(ctx, "guest")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	runCtx := runs.Start(sess.ID)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/"+sess.ID, nil)
	resp, err := srv.app.Test(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", resp.StatusCode)
	}

	if runCtx.Err() != context.Canceled {
		t.Error("Expected the in-flight run cancelled when its session was deleted")
	}
	if _, err := store.Get(ctx, "guest", sess.ID); err != session.ErrNotFound {
		t.Errorf("Expected the session gone, got %v", err)
	}
}

func TestConfirm_UnknownSessionIs404(t *testing.T) {
	srv, _, _ := newTestServer()

	body := strings.NewReader(`{"sessionId":"missing","messageId":"m1"}`)
	req := httptest.NewRequest(http.MethodPost, "/assistant/confirm", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.app.Test(req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}
