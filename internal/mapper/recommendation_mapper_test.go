package mapper

import (
	"testing"

	"yorkie-bakery-be/internal/dto"
	"yorkie-bakery-be/pkg/recommend/catalog"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestFiltersFromDTODropsBlanks(t *testing.T) {
	f := FiltersFromDTO(&dto.FiltersDTO{
		Origin:         ptr("  french "),
		Category:       ptr("   "),
		FlavorProfiles: []string{"sweet", " ", "nutty"},
		PriceMax:       ptr(0.0),
	})

	assert.Equal(t, "french", *f.Origin)
	assert.Nil(t, f.Category)
	assert.Equal(t, []string{"sweet", "nutty"}, f.FlavorProfiles)
	assert.Nil(t, f.DietaryFeatures)
	assert.Equal(t, 0.0, *f.PriceMax)
	assert.False(t, f.IsEmpty())
}

func TestFiltersFromNilDTO(t *testing.T) {
	assert.True(t, FiltersFromDTO(nil).IsEmpty())
}

func TestFormatCandidates(t *testing.T) {
	items := []catalog.RankedItem{
		{Item: catalog.Item{Title: "Croissant", Origin: "french", Category: "pastry", Price: ptr(3.5), FlavorProfiles: []string{"buttery"}}},
		{Item: catalog.Item{Title: "Mystery Bun"}},
	}

	assert.Equal(t,
		"- Croissant ($3.50) [origin=french, category=pastry, flavors=buttery, diet=]\n"+
			"- Mystery Bun ($N/A) [origin=-, category=-, flavors=, diet=]",
		FormatCandidates(items))
	assert.Equal(t, "", FormatCandidates(nil))
}

func TestRankedItemToDTONeverNullLists(t *testing.T) {
	res := RankedItemToDTO(catalog.RankedItem{Item: catalog.Item{ID: "a", Title: "Tart"}, Distance: 0.2})
	assert.Equal(t, []string{}, res.Tags)
	assert.Equal(t, []string{}, res.FlavorProfiles)
	assert.Equal(t, []string{}, res.DietaryFeatures)
	assert.Equal(t, 0.2, res.Distance)
}
