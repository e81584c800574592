// Package memory is an in-process persistence backend for development and
// tests. It implements the same unit-of-work and repository contracts as
// the Postgres backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/repository/contract"
	"yorkie-bakery-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Backend holds committed state. Transactions are serialized: Begin takes
// txMu and Commit or Rollback releases it, which gives the same isolation
// as a row lock held for the whole transaction.
type Backend struct {
	txMu     sync.Mutex
	mu       sync.RWMutex
	sessions *cache.Cache
	menu     map[uuid.UUID]*entity.MenuItem
}

func NewBackend() *Backend {
	return &Backend{
		// expiry is tracked on the session itself and purged explicitly
		sessions: cache.New(cache.NoExpiration, 0),
		menu:     make(map[uuid.UUID]*entity.MenuItem),
	}
}

// NewRepositoryFactory returns a factory whose units of work share b.
func (b *Backend) NewRepositoryFactory() unitofwork.RepositoryFactory {
	return &repositoryFactory{backend: b}
}

type repositoryFactory struct {
	backend *Backend
}

func (f *repositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{backend: f.backend}
}

// stagedWrites collects changes made inside a transaction.
type stagedWrites struct {
	sessions map[string]*entity.ChatSession // nil value marks a delete
	menu     map[uuid.UUID]*entity.MenuItem
}

type unitOfWork struct {
	backend *Backend
	staged  *stagedWrites
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.staged != nil {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.backend.txMu.Lock()
	u.staged = &stagedWrites{
		sessions: make(map[string]*entity.ChatSession),
		menu:     make(map[uuid.UUID]*entity.MenuItem),
	}
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.staged == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.backend.apply(u.staged)
	u.staged = nil
	u.backend.txMu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.staged == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	u.staged = nil
	u.backend.txMu.Unlock()
	return nil
}

func (u *unitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &chatSessionRepository{backend: u.backend, staged: u.staged}
}

func (u *unitOfWork) MenuItemRepository() contract.MenuItemRepository {
	return &menuItemRepository{backend: u.backend, staged: u.staged}
}

func (b *Backend) apply(s *stagedWrites) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sess := range s.sessions {
		if sess == nil {
			b.sessions.Delete(id)
			continue
		}
		b.sessions.Set(id, sess, cache.NoExpiration)
	}
	for id, item := range s.menu {
		b.menu[id] = item
	}
}

func (b *Backend) getSession(id string) (*entity.ChatSession, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if x, found := b.sessions.Get(id); found {
		return x.(*entity.ChatSession), true
	}
	return nil, false
}

func (b *Backend) sessionSnapshot() []*entity.ChatSession {
	b.mu.RLock()
	defer b.mu.RUnlock()
	items := b.sessions.Items()
	out := make([]*entity.ChatSession, 0, len(items))
	for _, it := range items {
		out = append(out, it.Object.(*entity.ChatSession))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionId < out[j].SessionId })
	return out
}

func cloneSession(s *entity.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	c := *s
	if s.UserId != nil {
		u := *s.UserId
		c.UserId = &u
	}
	c.ConversationHistory = make([]entity.ChatMessage, len(s.ConversationHistory))
	for i, m := range s.ConversationHistory {
		m.Metadata = cloneMap(m.Metadata)
		c.ConversationHistory[i] = m
	}
	c.Preferences = cloneMap(s.Preferences)
	return &c
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case []string:
			out[k] = append([]string(nil), t...)
		case []interface{}:
			out[k] = append([]interface{}(nil), t...)
		case map[string]interface{}:
			out[k] = cloneMap(t)
		default:
			out[k] = v
		}
	}
	return out
}

func cloneMenuItem(m *entity.MenuItem) *entity.MenuItem {
	if m == nil {
		return nil
	}
	c := *m
	c.Tags = append([]string(nil), m.Tags...)
	c.FlavorProfiles = append([]string(nil), m.FlavorProfiles...)
	c.DietaryFeatures = append([]string(nil), m.DietaryFeatures...)
	return &c
}
