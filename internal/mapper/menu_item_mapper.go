package mapper

import (
	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/model"
	"yorkie-bakery-be/pkg/recommend/catalog"

	"gorm.io/datatypes"
)

type MenuItemMapper struct{}

func NewMenuItemMapper() *MenuItemMapper {
	return &MenuItemMapper{}
}

func (m *MenuItemMapper) ToEntity(mi *model.MenuItem) *entity.MenuItem {
	if mi == nil {
		return nil
	}
	return &entity.MenuItem{
		Id:              mi.Id,
		Title:           mi.Title,
		Description:     mi.Description,
		ImageUrl:        mi.ImageUrl,
		Origin:          mi.Origin,
		Category:        mi.Category,
		Tags:            []string(mi.Tags),
		FlavorProfiles:  []string(mi.FlavorProfiles),
		DietaryFeatures: []string(mi.DietaryFeatures),
		Price:           mi.Price,
		IsAvailable:     mi.IsAvailable,
		UpdatedAt:       mi.UpdatedAt,
	}
}

func (m *MenuItemMapper) ToModel(e *entity.MenuItem) *model.MenuItem {
	if e == nil {
		return nil
	}
	return &model.MenuItem{
		Id:              e.Id,
		Title:           e.Title,
		Description:     e.Description,
		ImageUrl:        e.ImageUrl,
		Origin:          e.Origin,
		Category:        e.Category,
		Tags:            datatypes.JSONSlice[string](e.Tags),
		FlavorProfiles:  datatypes.JSONSlice[string](e.FlavorProfiles),
		DietaryFeatures: datatypes.JSONSlice[string](e.DietaryFeatures),
		Price:           e.Price,
		IsAvailable:     e.IsAvailable,
		UpdatedAt:       e.UpdatedAt,
	}
}

// ToCatalogItem projects a menu row onto the read-only catalog view.
func (m *MenuItemMapper) ToCatalogItem(e *entity.MenuItem) catalog.Item {
	return catalog.Item{
		ID:              e.Id.String(),
		Title:           e.Title,
		Origin:          e.Origin,
		Category:        e.Category,
		Price:           e.Price,
		Tags:            catalog.SplitList(e.Tags),
		FlavorProfiles:  catalog.SplitList(e.FlavorProfiles),
		DietaryFeatures: catalog.SplitList(e.DietaryFeatures),
	}
}
