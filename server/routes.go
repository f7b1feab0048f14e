package server

func (s *Server) setupRoutes() {
	s.app.Post("/assistant/message", s.messageHandler)
	s.app.Post("/assistant/confirm", s.confirmHandler)
	s.app.Post("/assistant/cancel", s.cancelHandler)
	s.app.Post("/assistant/replay", s.replayHandler)

	s.app.Get("/sessions", s.listSessionsHandler)
	s.app.Post("/sessions", s.createSessionHandler)
	s.app.Get("/sessions/search", s.searchSessionsHandler)
	s.app.Get("/sessions/:id", s.getSessionHandler)
	s.app.Delete("/sessions/:id", s.deleteSessionHandler)
	s.app.Put("/sessions/:id/activate", s.activateSessionHandler)
	s.app.Put("/sessions/:id/messages", s.replaceMessagesHandler)

	s.app.Get("/health", s.healthHandler)
}
