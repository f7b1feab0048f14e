package server

import (
	"github.com/NextShop-AI/assistant-go/auth"
	"github.com/NextShop-AI/assistant-go/dispatch"
	"github.com/NextShop-AI/assistant-go/execution"
	"github.com/NextShop-AI/assistant-go/processor"
	"github.com/NextShop-AI/assistant-go/session"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/rs/zerolog/log"
)

type Server struct {
	app        *fiber.App
	turns      *processor.TurnProcessor
	sessions   *session.Store
	dispatcher *dispatch.Dispatcher
	verifier   *auth.Verifier
	runs       *execution.Manager
	health     func() map[string]string
}

func New(turns *processor.TurnProcessor, sessions *session.Store, dispatcher *dispatch.Dispatcher, verifier *auth.Verifier, runs *execution.Manager, health func() map[string]string) *Server {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Guest-ID"},
		AllowCredentials: true,
	}))

	server := &Server{
		app:        app,
		turns:      turns,
		sessions:   sessions,
		dispatcher: dispatcher,
		verifier:   verifier,
		runs:       runs,
		health:     health,
	}

	server.setupRoutes()

	return server
}

func (s *Server) Start(port string) {
	log.Info().Str("port", port).Msg("Starting assistant server")

	err := s.app.Listen(":"+port, fiber.ListenConfig{
		DisableStartupMessage: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
