package unitofwork

import (
	"context"

	"yorkie-bakery-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	MenuItemRepository() contract.MenuItemRepository
}
