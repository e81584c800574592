package memory

import (
	"context"
	"fmt"
	"sort"

	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/repository/specification"

	"github.com/google/uuid"
)

type menuItemRepository struct {
	backend *Backend
	staged  *stagedWrites
}

func (r *menuItemRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.MenuItem, error) {
	if r.staged != nil {
		if m, ok := r.staged.menu[id]; ok {
			return cloneMenuItem(m), nil
		}
	}
	r.backend.mu.RLock()
	defer r.backend.mu.RUnlock()
	return cloneMenuItem(r.backend.menu[id]), nil
}

func (r *menuItemRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MenuItem, error) {
	availableOnly := false
	for _, spec := range specs {
		switch spec.(type) {
		case specification.AvailableOnly:
			availableOnly = true
		default:
			return nil, fmt.Errorf("memory backend: unsupported specification %T", spec)
		}
	}

	r.backend.mu.RLock()
	merged := make(map[uuid.UUID]*entity.MenuItem, len(r.backend.menu))
	for id, m := range r.backend.menu {
		merged[id] = m
	}
	r.backend.mu.RUnlock()
	if r.staged != nil {
		for id, m := range r.staged.menu {
			merged[id] = m
		}
	}

	out := make([]*entity.MenuItem, 0, len(merged))
	for _, m := range merged {
		if availableOnly && !m.IsAvailable {
			continue
		}
		out = append(out, cloneMenuItem(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *menuItemRepository) Upsert(ctx context.Context, item *entity.MenuItem) error {
	if item.Id == uuid.Nil {
		item.Id = uuid.New()
	}
	c := cloneMenuItem(item)
	if r.staged != nil {
		r.staged.menu[item.Id] = c
		return nil
	}
	r.backend.apply(&stagedWrites{menu: map[uuid.UUID]*entity.MenuItem{item.Id: c}})
	return nil
}
