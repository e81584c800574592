package contract

import (
	"context"
	"errors"
	"time"

	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/repository/specification"
)

// ErrSessionConflict is returned by Create when the session id is taken.
var ErrSessionConflict = errors.New("chat session already exists")

type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	Update(ctx context.Context, session *entity.ChatSession) error
	Delete(ctx context.Context, sessionId string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
