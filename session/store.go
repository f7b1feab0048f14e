// Package session is the durable, bounded, auto-titling repository of chat
// sessions. The backing storage is a single keyed blob per user behind the
// Backend interface, so quota exhaustion is testable deterministically.
// Concurrent writers on the same blob (e.g. two tabs) race last-write-wins;
// that is a known limitation, not something the store hides.
package session

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/NextShop-AI/assistant-go/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrQuotaExceeded is returned by a Backend when the write exceeds the
// storage budget.
var ErrQuotaExceeded = errors.New("session storage quota exceeded")

// ErrNotFound is returned when a session id is unknown for the user.
var ErrNotFound = errors.New("session not found")

// Backend loads and saves the whole session array for one user.
type Backend interface {
	Load(ctx context.Context, userID string) ([]model.ChatSession, error)
	Save(ctx context.Context, userID string, sessions []model.ChatSession) error
}

const (
	// MaxSessions is the hard cap enforced on every write, newest first.
	MaxSessions = 50
	// reducedSessions is the aggressively trimmed set used for the single
	// retry after a quota failure.
	reducedSessions = 20

	recentLimit       = 10
	favoriteThreshold = 5
)

const greetingText = "Hi! I'm your NextShop assistant. Ask me for products and I can manage your cart and wishlist too."

// Store keeps the per-user session lists in memory and writes them through
// to the backend. Transient fields (confirmation state, deferred actions)
// live only in the cached copies.
//
// Cached sessions are touched only under the mutex. Read methods hand out
// independent copies, and all mutation goes through AppendMessage,
// ReplaceMessages, SetActive, Delete or Update, so concurrent HTTP handlers
// never share a live session.
type Store struct {
	backend Backend

	mu     sync.Mutex
	cache  map[string][]*model.ChatSession
	loaded map[string]bool
}

// NewStore creates a session store over the given backend.
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		cache:   make(map[string][]*model.ChatSession),
		loaded:  make(map[string]bool),
	}
}

// Create starts a new session with the stock greeting and makes it the only
// active session for the user.
func (s *Store) Create(ctx context.Context, userID string) (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessionsLocked(ctx, userID)
	for _, existing := range sessions {
		existing.IsActive = false
	}

	now := time.Now()
	greeting := model.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    model.SenderAssistant,
		Text:      greetingText,
		Timestamp: now,
	}
	sess := &model.ChatSession{
		ID:        uuid.NewString(),
		Title:     model.DefaultSessionTitle,
		Messages:  []model.ChatMessage{greeting},
		CreatedAt: now,
		UpdatedAt: now,
		IsActive:  true,
		Preview:   previewFor(greeting),
	}

	s.cache[userID] = append([]*model.ChatSession{sess}, sessions...)
	s.persistLocked(ctx, userID)

	log.Info().Str("user_id", userID).Str("session_id", sess.ID).Msg("Session created")
	return cloneSession(sess), nil
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(ctx context.Context, userID, sessionID string) (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.findLocked(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return cloneSession(sess), nil
}

// Active returns a copy of the user's active session, or ErrNotFound if
// none is.
func (s *Store) Active(ctx context.Context, userID string) (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessionsLocked(ctx, userID) {
		if sess.IsActive {
			return cloneSession(sess), nil
		}
	}
	return nil, ErrNotFound
}

// List returns copies of all sessions, newest first by UpdatedAt.
func (s *Store) List(ctx context.Context, userID string) []*model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessionsLocked(ctx, userID)
	sorted := make([]*model.ChatSession, len(sessions))
	for i, sess := range sessions {
		sorted[i] = cloneSession(sess)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	return sorted
}

// Update runs fn against the live session under the store's lock and
// persists the result. This is the only way for callers to mutate a
// session in place (confirmation state, deferred actions).
func (s *Store) Update(ctx context.Context, userID, sessionID string, fn func(*model.ChatSession)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.findLocked(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	fn(sess)
	s.persistLocked(ctx, userID)
	return nil
}

// SetActive marks one session active and every other one inactive.
func (s *Store) SetActive(ctx context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.findLocked(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	for _, sess := range s.cache[userID] {
		sess.IsActive = false
	}
	target.IsActive = true
	s.persistLocked(ctx, userID)
	return nil
}

// Delete removes a session entirely.
func (s *Store) Delete(ctx context.Context, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessionsLocked(ctx, userID)
	for i, sess := range sessions {
		if sess.ID == sessionID {
			s.cache[userID] = append(sessions[:i], sessions[i+1:]...)
			s.persistLocked(ctx, userID)
			return nil
		}
	}
	return ErrNotFound
}

// AppendMessage adds a message, refreshes the preview and, on the session's
// first user message while the title is still the default, derives a title.
func (s *Store) AppendMessage(ctx context.Context, userID, sessionID string, msg model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.findLocked(ctx, userID, sessionID)
	if err != nil {
		return err
	}

	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = time.Now()
	sess.Preview = previewFor(msg)

	if msg.Sender == model.SenderUser && sess.Title == model.DefaultSessionTitle {
		sess.Title = deriveTitle(msg.Text)
	}

	s.persistLocked(ctx, userID)
	return nil
}

// ReplaceMessages swaps the whole message list and recomputes the preview
// and title from the new last and first messages.
func (s *Store) ReplaceMessages(ctx context.Context, userID, sessionID string, messages []model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.findLocked(ctx, userID, sessionID)
	if err != nil {
		return err
	}

	sess.Messages = messages
	sess.UpdatedAt = time.Now()

	sess.Preview = ""
	if last := sess.LastMessage(); last != nil {
		sess.Preview = previewFor(*last)
	}

	sess.Title = model.DefaultSessionTitle
	for _, m := range messages {
		if m.Sender == model.SenderUser {
			sess.Title = deriveTitle(m.Text)
			break
		}
	}

	s.persistLocked(ctx, userID)
	return nil
}

func (s *Store) findLocked(ctx context.Context, userID, sessionID string) (*model.ChatSession, error) {
	for _, sess := range s.sessionsLocked(ctx, userID) {
		if sess.ID == sessionID {
			return sess, nil
		}
	}
	return nil, ErrNotFound
}

// sessionsLocked returns the user's cached sessions, loading from the
// backend on first access. A failed load is retried on the next access
// instead of being cached as an empty history; sessions created in the
// meantime live in memory and are merged in front once a load succeeds.
func (s *Store) sessionsLocked(ctx context.Context, userID string) []*model.ChatSession {
	if s.loaded[userID] {
		return s.cache[userID]
	}

	stored, err := s.backend.Load(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load sessions, deferring writes until the backend recovers")
		return s.cache[userID]
	}

	sessions := s.cache[userID]
	for i := range stored {
		sess := stored[i]
		sessions = append(sessions, &sess)
	}
	s.cache[userID] = sessions
	s.loaded[userID] = true
	return sessions
}

// persistLocked enforces the session cap, writes the blob, and on a quota
// failure retries once with the reduced set. A second failure drops the
// write; losing history is preferred over breaking the conversation.
func (s *Store) persistLocked(ctx context.Context, userID string) {
	sessions := s.cache[userID]
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})

	if len(sessions) > MaxSessions {
		log.Info().
			Str("user_id", userID).
			Int("evicted", len(sessions)-MaxSessions).
			Msg("Evicting oldest sessions beyond cap")
		sessions = sessions[:MaxSessions]
	}
	s.cache[userID] = sessions

	// Never overwrite backend data that was never successfully read; the
	// cache keeps serving until a load succeeds.
	if !s.loaded[userID] {
		log.Warn().Str("user_id", userID).Msg("Dropping session write, backend state not loaded")
		return
	}

	err := s.backend.Save(ctx, userID, snapshot(sessions))
	if err == nil {
		return
	}
	if !errors.Is(err, ErrQuotaExceeded) {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to persist sessions")
		return
	}

	reduced := sessions
	if len(reduced) > reducedSessions {
		reduced = reduced[:reducedSessions]
	}
	s.cache[userID] = reduced

	if err := s.backend.Save(ctx, userID, snapshot(reduced)); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Dropping session write after quota retry failed")
	} else {
		log.Warn().
			Str("user_id", userID).
			Int("kept", len(reduced)).
			Msg("Persisted reduced session set after quota failure")
	}
}

// cloneSession copies a session deeply enough that the caller and the
// cache never share mutable state.
func cloneSession(sess *model.ChatSession) *model.ChatSession {
	out := *sess
	out.Messages = append([]model.ChatMessage(nil), sess.Messages...)
	if sess.Deferred != nil {
		deferred := *sess.Deferred
		out.Deferred = &deferred
	}
	return &out
}

func snapshot(sessions []*model.ChatSession) []model.ChatSession {
	out := make([]model.ChatSession, len(sessions))
	for i, sess := range sessions {
		out[i] = *sess
	}
	return out
}

// Filter returns sessions for one of the fixed query categories.
func (s *Store) Filter(ctx context.Context, userID, category string) []*model.ChatSession {
	sessions := s.List(ctx, userID)

	switch category {
	case "recent":
		if len(sessions) > recentLimit {
			sessions = sessions[:recentLimit]
		}
		return sessions
	case "products":
		return filterSessions(sessions, func(sess *model.ChatSession) bool {
			return titleHasProductKeyword(sess.Title)
		})
	case "budget":
		return filterSessions(sessions, func(sess *model.ChatSession) bool {
			lower := strings.ToLower(sess.Title)
			return strings.Contains(lower, "under") ||
				strings.Contains(lower, "below") ||
				strings.Contains(lower, "£")
		})
	case "favorites":
		return filterSessions(sessions, func(sess *model.ChatSession) bool {
			return len(sess.Messages) > favoriteThreshold
		})
	default:
		return sessions
	}
}

// Search matches free text against titles, previews and message bodies.
func (s *Store) Search(ctx context.Context, userID, query string) []*model.ChatSession {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return s.List(ctx, userID)
	}

	return filterSessions(s.List(ctx, userID), func(sess *model.ChatSession) bool {
		if strings.Contains(strings.ToLower(sess.Title), needle) ||
			strings.Contains(strings.ToLower(sess.Preview), needle) {
			return true
		}
		for _, msg := range sess.Messages {
			if strings.Contains(strings.ToLower(msg.Text), needle) {
				return true
			}
		}
		return false
	})
}

func filterSessions(sessions []*model.ChatSession, keep func(*model.ChatSession) bool) []*model.ChatSession {
	out := []*model.ChatSession{}
	for _, sess := range sessions {
		if keep(sess) {
			out = append(out, sess)
		}
	}
	return out
}
