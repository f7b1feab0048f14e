package server

import (
	"errors"
	"strings"

	"github.com/NextShop-AI/assistant-go/auth"
	"github.com/NextShop-AI/assistant-go/dispatch"
	"github.com/NextShop-AI/assistant-go/processor"
	"github.com/NextShop-AI/assistant-go/session"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
)

// identity resolves the caller. A guest id keeps unauthenticated users'
// sessions apart without any token.
func (s *Server) identity(c fiber.Ctx) (*auth.Identity, string) {
	ident := s.verifier.FromHeader(c.Get("Authorization"))
	if ident != nil {
		return ident, ident.UserID
	}
	if guest := c.Get("X-Guest-ID"); guest != "" {
		return nil, "guest:" + guest
	}
	return nil, "guest"
}

func bearerToken(c fiber.Ctx) string {
	return strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
}

func (s *Server) messageHandler(c fiber.Ctx) error {
	var req MessageRequest
	if err := c.Bind().JSON(&req); err != nil {
		log.Error().Err(err).Msg("Error parsing message request")
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	_, userID := s.identity(c)

	result, err := s.turns.ProcessTurn(c.Context(), processor.TurnRequest{
		UserID:    userID,
		SessionID: req.SessionID,
		Text:      req.Text,
		Token:     bearerToken(c),
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Turn processing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to process message"})
	}

	return c.JSON(result)
}

func (s *Server) confirmHandler(c fiber.Ctx) error {
	var req ConfirmRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	ident, userID := s.identity(c)
	outcome, err := s.dispatcher.Confirm(c.Context(), userID, req.SessionID, req.MessageID, ident, bearerToken(c))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
		}
		if errors.Is(err, dispatch.ErrNoPendingAction) {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "nothing awaiting confirmation"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to confirm action"})
	}

	return c.JSON(outcome)
}

func (s *Server) cancelHandler(c fiber.Ctx) error {
	var req ConfirmRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	_, userID := s.identity(c)
	ack, err := s.dispatcher.Cancel(c.Context(), userID, req.SessionID, req.MessageID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
		}
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "message not found"})
	}
	return c.JSON(ack)
}

func (s *Server) replayHandler(c fiber.Ctx) error {
	var req ReplayRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	ident, userID := s.identity(c)
	if ident == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "sign in before replaying a deferred action"})
	}

	followUp, replayed := s.dispatcher.ReplayDeferred(c.Context(), userID, req.SessionID, bearerToken(c))
	return c.JSON(fiber.Map{
		"replayed": replayed,
		"followUp": followUp,
	})
}

func (s *Server) listSessionsHandler(c fiber.Ctx) error {
	_, userID := s.identity(c)

	if filter := c.Query("filter"); filter != "" {
		return c.JSON(summarize(s.sessions.Filter(c.Context(), userID, filter)))
	}
	return c.JSON(summarize(s.sessions.List(c.Context(), userID)))
}

func (s *Server) searchSessionsHandler(c fiber.Ctx) error {
	_, userID := s.identity(c)
	return c.JSON(summarize(s.sessions.Search(c.Context(), userID, c.Query("q"))))
}

func (s *Server) createSessionHandler(c fiber.Ctx) error {
	_, userID := s.identity(c)

	sess, err := s.sessions.Create(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to create session"})
	}
	return c.Status(fiber.StatusCreated).JSON(sess)
}

func (s *Server) getSessionHandler(c fiber.Ctx) error {
	_, userID := s.identity(c)

	sess, err := s.sessions.Get(c.Context(), userID, c.Params("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load session"})
	}
	return c.JSON(sess)
}

func (s *Server) deleteSessionHandler(c fiber.Ctx) error {
	_, userID := s.identity(c)

	// A deleted session should not keep a turn running against the backend.
	s.runs.Cancel(c.Params("id"))
	if err := s.sessions.Delete(c.Context(), userID, c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) replaceMessagesHandler(c fiber.Ctx) error {
	var req ReplaceMessagesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	_, userID := s.identity(c)
	if err := s.sessions.ReplaceMessages(c.Context(), userID, c.Params("id"), req.Messages); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
	}

	sess, err := s.sessions.Get(c.Context(), userID, c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load session"})
	}
	return c.JSON(sess)
}

func (s *Server) activateSessionHandler(c fiber.Ctx) error {
	_, userID := s.identity(c)

	if err := s.sessions.SetActive(c.Context(), userID, c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) healthHandler(c fiber.Ctx) error {
	return c.JSON(s.health())
}
