package memory

import (
	"context"
	"fmt"
	"time"

	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/repository/contract"
	"yorkie-bakery-be/internal/repository/specification"
)

type chatSessionRepository struct {
	backend *Backend
	staged  *stagedWrites // nil outside a transaction
}

func (r *chatSessionRepository) lookup(id string) (*entity.ChatSession, bool) {
	if r.staged != nil {
		if s, ok := r.staged.sessions[id]; ok {
			return s, s != nil
		}
	}
	return r.backend.getSession(id)
}

func (r *chatSessionRepository) write(id string, s *entity.ChatSession) {
	if r.staged != nil {
		r.staged.sessions[id] = s
		return
	}
	r.backend.apply(&stagedWrites{sessions: map[string]*entity.ChatSession{id: s}})
}

func (r *chatSessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	if _, exists := r.lookup(session.SessionId); exists {
		return contract.ErrSessionConflict
	}
	r.write(session.SessionId, cloneSession(session))
	return nil
}

func (r *chatSessionRepository) Update(ctx context.Context, session *entity.ChatSession) error {
	r.write(session.SessionId, cloneSession(session))
	return nil
}

func (r *chatSessionRepository) Delete(ctx context.Context, sessionId string) error {
	r.write(sessionId, nil)
	return nil
}

func (r *chatSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, s := range r.all() {
		if s.IsExpired(now) {
			r.write(s.SessionId, nil)
			n++
		}
	}
	return n, nil
}

func (r *chatSessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	matches, err := r.find(specs)
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	return cloneSession(matches[0]), nil
}

func (r *chatSessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := r.find(specs)
	return int64(len(matches)), err
}

func (r *chatSessionRepository) all() []*entity.ChatSession {
	committed := r.backend.sessionSnapshot()
	if r.staged == nil {
		return committed
	}
	seen := make(map[string]bool, len(committed))
	out := make([]*entity.ChatSession, 0, len(committed))
	for _, s := range committed {
		seen[s.SessionId] = true
		if cur, ok := r.lookup(s.SessionId); ok {
			out = append(out, cur)
		}
	}
	for id, s := range r.staged.sessions {
		if !seen[id] && s != nil {
			out = append(out, s)
		}
	}
	return out
}

// find evaluates the subset of specifications this backend understands.
func (r *chatSessionRepository) find(specs []specification.Specification) ([]*entity.ChatSession, error) {
	var out []*entity.ChatSession
	for _, s := range r.all() {
		ok, err := matchSession(s, specs)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func matchSession(s *entity.ChatSession, specs []specification.Specification) (bool, error) {
	for _, spec := range specs {
		switch t := spec.(type) {
		case specification.BySessionID:
			if s.SessionId != t.SessionID {
				return false, nil
			}
		case specification.ByUserID:
			if s.UserId == nil || *s.UserId != t.UserID {
				return false, nil
			}
		case specification.ExpiredAt:
			if !s.IsExpired(t.Now) {
				return false, nil
			}
		case specification.ForUpdate:
			// transactions are already serialized
		default:
			return false, fmt.Errorf("memory backend: unsupported specification %T", spec)
		}
	}
	return true, nil
}
