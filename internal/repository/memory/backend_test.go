package memory

import (
	"context"
	"testing"
	"time"

	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/repository/contract"
	"yorkie-bakery-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type rawOrder struct{}

func (rawOrder) Apply(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }

func newSession(id string, expires time.Time) *entity.ChatSession {
	return &entity.ChatSession{
		SessionId:   id,
		Preferences: map[string]interface{}{"flavors": []string{"sweet"}},
		ExpiresAt:   expires,
	}
}

func TestRollbackDiscardsStagedWrites(t *testing.T) {
	ctx := context.Background()
	factory := NewBackend().NewRepositoryFactory()

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.ChatSessionRepository().Create(ctx, newSession("s1", time.Now().Add(time.Hour))))

	found, err := uow.ChatSessionRepository().FindOne(ctx, specification.BySessionID{SessionID: "s1"})
	require.NoError(t, err)
	assert.NotNil(t, found, "visible inside the transaction")

	require.NoError(t, uow.Rollback())

	found, err = factory.NewUnitOfWork(ctx).ChatSessionRepository().FindOne(ctx, specification.BySessionID{SessionID: "s1"})
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCommitPublishesWrites(t *testing.T) {
	ctx := context.Background()
	factory := NewBackend().NewRepositoryFactory()

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.ChatSessionRepository().Create(ctx, newSession("s1", time.Now().Add(time.Hour))))
	require.NoError(t, uow.Commit())
	assert.Error(t, uow.Rollback(), "nothing left to roll back")

	repo := factory.NewUnitOfWork(ctx).ChatSessionRepository()
	found, err := repo.FindOne(ctx, specification.BySessionID{SessionID: "s1"})
	require.NoError(t, err)
	require.NotNil(t, found)

	found.Preferences["flavors"] = []string{"changed"}
	again, err := repo.FindOne(ctx, specification.BySessionID{SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sweet"}, again.Preferences["flavors"])
}

func TestCreateConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewBackend().NewRepositoryFactory().NewUnitOfWork(ctx).ChatSessionRepository()

	require.NoError(t, repo.Create(ctx, newSession("s1", time.Now())))
	assert.ErrorIs(t, repo.Create(ctx, newSession("s1", time.Now())), contract.ErrSessionConflict)
}

func TestDeleteExpiredAndCount(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	repo := NewBackend().NewRepositoryFactory().NewUnitOfWork(ctx).ChatSessionRepository()

	require.NoError(t, repo.Create(ctx, newSession("old", now.Add(-time.Minute))))
	require.NoError(t, repo.Create(ctx, newSession("edge", now)))
	require.NoError(t, repo.Create(ctx, newSession("live", now.Add(time.Minute))))

	expired, err := repo.Count(ctx, specification.ExpiredAt{Now: now})
	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestUnsupportedSpecification(t *testing.T) {
	ctx := context.Background()
	repo := NewBackend().NewRepositoryFactory().NewUnitOfWork(ctx).ChatSessionRepository()
	require.NoError(t, repo.Create(ctx, newSession("s1", time.Now())))

	_, err := repo.FindOne(ctx, rawOrder{})
	assert.Error(t, err)
}

func TestMenuItems(t *testing.T) {
	ctx := context.Background()
	repo := NewBackend().NewRepositoryFactory().NewUnitOfWork(ctx).MenuItemRepository()

	croissant := &entity.MenuItem{Title: "Croissant", IsAvailable: true}
	require.NoError(t, repo.Upsert(ctx, croissant))
	require.NotEqual(t, uuid.Nil, croissant.Id)
	require.NoError(t, repo.Upsert(ctx, &entity.MenuItem{Title: "Apple Pie", IsAvailable: false}))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Apple Pie", all[0].Title)

	available, err := repo.FindAll(ctx, specification.AvailableOnly{})
	require.NoError(t, err)
	require.Len(t, available, 1)

	found, err := repo.FindById(ctx, croissant.Id)
	require.NoError(t, err)
	assert.Equal(t, "Croissant", found.Title)

	missing, err := repo.FindById(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
