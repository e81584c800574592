// Package session owns conversation session lifecycle: creation, sliding
// expiry, the bounded message log and preference persistence.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/pkg/logger"
	"yorkie-bakery-be/internal/repository/contract"
	"yorkie-bakery-be/internal/repository/specification"
	"yorkie-bakery-be/internal/repository/unitofwork"
	"yorkie-bakery-be/pkg/recommend/preference"

	"github.com/google/uuid"
)

const DefaultTTL = 24 * time.Hour

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrInvalidRole     = errors.New("message role must be user or assistant")
)

// createAttempts bounds retries when two requests race to create the
// same session id.
const createAttempts = 3

type Store struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	ttl        time.Duration
	now        func() time.Time
	newID      func() string
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

func NewStore(uowFactory unitofwork.RepositoryFactory, log logger.ILogger, opts ...Option) *Store {
	s := &Store{
		uowFactory: uowFactory,
		logger:     log,
		ttl:        DefaultTTL,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the live session named by sessionId and slides its
// expiry. An unknown or expired id yields a fresh session with that id; an
// empty id yields a fresh session with a generated id.
func (s *Store) GetOrCreate(ctx context.Context, sessionId string, userId *string) (*entity.ChatSession, error) {
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		sess, err := s.getOrCreateOnce(ctx, sessionId, userId)
		if !errors.Is(err, contract.ErrSessionConflict) {
			return sess, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("get or create session %s: %w", sessionId, lastErr)
}

func (s *Store) getOrCreateOnce(ctx context.Context, sessionId string, userId *string) (*entity.ChatSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.ChatSessionRepository()
	now := s.now()

	if sessionId != "" {
		existing, err := repo.FindOne(ctx, specification.BySessionID{SessionID: sessionId}, specification.ForUpdate{})
		if err != nil {
			return nil, fmt.Errorf("load session %s: %w", sessionId, err)
		}
		if existing != nil && !existing.IsExpired(now) {
			existing.ExpiresAt = now.Add(s.ttl)
			if existing.UserId == nil && userId != nil {
				existing.UserId = userId
			}
			if err := repo.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("extend session %s: %w", sessionId, err)
			}
			if err := uow.Commit(); err != nil {
				return nil, err
			}
			return existing, nil
		}
		if existing != nil {
			if err := repo.Delete(ctx, sessionId); err != nil {
				return nil, fmt.Errorf("drop expired session %s: %w", sessionId, err)
			}
			s.logger.Info("SESSION", "Expired session replaced", map[string]interface{}{
				"session_id": sessionId,
				"expired_at": existing.ExpiresAt,
			})
		}
	} else {
		sessionId = s.newID()
	}

	sess := &entity.ChatSession{
		SessionId:           sessionId,
		UserId:              userId,
		ConversationHistory: []entity.ChatMessage{},
		Preferences:         map[string]interface{}{},
		CreatedAt:           now,
		LastMessageAt:       now,
		ExpiresAt:           now.Add(s.ttl),
	}
	if err := repo.Create(ctx, sess); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return sess, nil
}

// AddMessage appends a message, keeping only the newest
// entity.MaxConversationHistory entries.
func (s *Store) AddMessage(ctx context.Context, sessionId, role, content string, metadata map[string]interface{}) (*entity.ChatSession, error) {
	if role != entity.ChatRoleUser && role != entity.ChatRoleAssistant {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return s.mutate(ctx, sessionId, func(sess *entity.ChatSession, now time.Time) {
		sess.AddMessage(entity.ChatMessage{
			Role:      role,
			Content:   content,
			Timestamp: now,
			Metadata:  metadata,
		})
	})
}

// UpdatePreferences merges prefs into the stored bag.
func (s *Store) UpdatePreferences(ctx context.Context, sessionId string, prefs preference.Bag) (*entity.ChatSession, error) {
	return s.mutate(ctx, sessionId, func(sess *entity.ChatSession, _ time.Time) {
		sess.Preferences = preference.Merge(preference.Bag(sess.Preferences), prefs)
	})
}

// mutate runs fn against a row-locked live session and persists it.
func (s *Store) mutate(ctx context.Context, sessionId string, fn func(*entity.ChatSession, time.Time)) (*entity.ChatSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.ChatSessionRepository()
	sess, err := repo.FindOne(ctx, specification.BySessionID{SessionID: sessionId}, specification.ForUpdate{})
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionId, err)
	}
	now := s.now()
	if sess == nil || sess.IsExpired(now) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionId)
	}

	fn(sess, now)

	if err := repo.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session %s: %w", sessionId, err)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetRecentMessages returns up to limit of the newest messages, oldest
// first. Unknown sessions and read errors yield an empty list.
func (s *Store) GetRecentMessages(ctx context.Context, sessionId string, limit int) []entity.ChatMessage {
	sess := s.peek(ctx, sessionId)
	if sess == nil {
		return []entity.ChatMessage{}
	}
	return sess.RecentMessages(limit)
}

// GetPreferences returns the stored bag, or an empty one for unknown
// sessions.
func (s *Store) GetPreferences(ctx context.Context, sessionId string) preference.Bag {
	sess := s.peek(ctx, sessionId)
	if sess == nil {
		return preference.Bag{}
	}
	return preference.Bag(sess.Preferences).Clone()
}

// peek reads a live session without sliding its expiry.
func (s *Store) peek(ctx context.Context, sessionId string) *entity.ChatSession {
	if sessionId == "" {
		return nil
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sess, err := uow.ChatSessionRepository().FindOne(ctx, specification.BySessionID{SessionID: sessionId})
	if err != nil {
		s.logger.Warn("SESSION", "Session read failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil
	}
	if sess == nil || sess.IsExpired(s.now()) {
		return nil
	}
	return sess
}

// PurgeExpired deletes every session already past expiry and returns how
// many were removed. Safe to run alongside live traffic.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	n, err := uow.ChatSessionRepository().DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return n, nil
}
