// Package assistant wires the NextShop conversational shopping assistant:
// the turn processor, confirmation dispatcher, session store and HTTP
// server, over the Nex reasoning backend and the storefront API.
package assistant

import (
	"context"
	"net/http"
	"time"

	"github.com/NextShop-AI/assistant-go/auth"
	"github.com/NextShop-AI/assistant-go/config"
	"github.com/NextShop-AI/assistant-go/dispatch"
	"github.com/NextShop-AI/assistant-go/execution"
	"github.com/NextShop-AI/assistant-go/nex"
	"github.com/NextShop-AI/assistant-go/processor"
	"github.com/NextShop-AI/assistant-go/server"
	"github.com/NextShop-AI/assistant-go/session"
	"github.com/NextShop-AI/assistant-go/shop"
)

// Config holds the embedding application's knobs. Categories seeds the
// available-category hint advertised to the reasoning backend.
type Config struct {
	Categories []string
}

// DefaultCategories mirrors the storefront's top-level catalogue.
var DefaultCategories = []string{
	"men's clothing", "women's clothing", "electronics", "jewelery",
}

// Assistant is the assembled service.
type Assistant struct {
	config Config
	turns  *processor.TurnProcessor
	server *server.Server
}

// New builds an assistant from the environment configuration.
func New(cfg Config) *Assistant {
	appConfig := config.Load()
	httpClient := http.Client{}

	if cfg.Categories == nil {
		cfg.Categories = DefaultCategories
	}

	nexClient := nex.NewClient(appConfig.NexServerURL, httpClient, cfg.Categories)
	shopClient := shop.NewClient(appConfig.ShopAPIURL, httpClient)

	backend := session.NewRedisBackend(
		appConfig.RedisAddr,
		appConfig.RedisPassword,
		appConfig.RedisDB,
	)
	sessions := session.NewStore(backend)

	dispatcher := dispatch.NewDispatcher(&shopClient, sessions)
	runs := execution.NewManager()
	turns := processor.NewTurnProcessor(&nexClient, sessions, dispatcher, runs)

	verifier := auth.NewVerifier(appConfig.JWTSecret)

	health := func() map[string]string {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok", "redis": "ok", "nex": "ok"}
		if err := backend.Ping(ctx); err != nil {
			status["status"] = "degraded"
			status["redis"] = err.Error()
		}
		if err := nexClient.Health(ctx); err != nil {
			status["status"] = "degraded"
			status["nex"] = err.Error()
		}
		return status
	}

	srv := server.New(turns, sessions, dispatcher, verifier, runs, health)

	return &Assistant{
		config: cfg,
		turns:  turns,
		server: srv,
	}
}

// Start starts the assistant server.
func (a *Assistant) Start(port string) {
	if port == "" {
		port = "8080"
	}
	a.server.Start(port)
}
