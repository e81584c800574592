package contract

import (
	"context"

	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MenuItemRepository interface {
	FindById(ctx context.Context, id uuid.UUID) (*entity.MenuItem, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MenuItem, error)
	// Upsert is used by the development seeder only.
	Upsert(ctx context.Context, item *entity.MenuItem) error
}
