package implementation

import (
	"context"
	"errors"

	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/mapper"
	"yorkie-bakery-be/internal/model"
	"yorkie-bakery-be/internal/repository/contract"
	"yorkie-bakery-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MenuItemRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MenuItemMapper
}

func NewMenuItemRepository(db *gorm.DB) contract.MenuItemRepository {
	return &MenuItemRepositoryImpl{
		db:     db,
		mapper: mapper.NewMenuItemMapper(),
	}
}

func (r *MenuItemRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MenuItemRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.MenuItem, error) {
	var m model.MenuItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MenuItemRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MenuItem, error) {
	var models []*model.MenuItem
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("title ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.MenuItem, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *MenuItemRepositoryImpl) Upsert(ctx context.Context, item *entity.MenuItem) error {
	if item.Id == uuid.Nil {
		item.Id = uuid.New()
	}
	m := r.mapper.ToModel(item)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(m).Error
	if err != nil {
		return err
	}
	*item = *r.mapper.ToEntity(m)
	return nil
}
