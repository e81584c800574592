package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{name: "nil", value: nil, want: []string{}},
		{name: "csv string", value: "sweet, nutty ,,creamy", want: []string{"sweet", "nutty", "creamy"}},
		{name: "empty string", value: "", want: []string{}},
		{name: "native list", value: []string{"vegan", " "}, want: []string{"vegan"}},
		{name: "decoded json list", value: []any{"a", 1, "b"}, want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.value))
		})
	}
}

func TestFromMetadata(t *testing.T) {
	t.Run("reads csv lists and price", func(t *testing.T) {
		item := FromMetadata("42", map[string]any{
			"title":            "Golden Bun",
			"origin":           "japanese",
			"price":            3.5,
			"tags":             "bun,sweet",
			"flavor_profiles":  "sweet",
			"dietary_features": []any{"vegetarian"},
		})

		assert.Equal(t, "42", item.ID)
		assert.Equal(t, "Golden Bun", item.Title)
		require.NotNil(t, item.Price)
		assert.Equal(t, 3.5, *item.Price)
		assert.Equal(t, []string{"bun", "sweet"}, item.Tags)
		assert.Equal(t, []string{"vegetarian"}, item.DietaryFeatures)
	})

	t.Run("absent fields become empty lists", func(t *testing.T) {
		item := FromMetadata("", map[string]any{"id": "7", "title": "Plain"})

		assert.Equal(t, "7", item.ID)
		assert.Nil(t, item.Price)
		assert.NotNil(t, item.Tags)
		assert.Empty(t, item.FlavorProfiles)
		assert.Empty(t, item.DietaryFeatures)
	})

	t.Run("legacy keys", func(t *testing.T) {
		item := FromMetadata("1", map[string]any{
			"flavor_profile":       "nutty,sweet",
			"dietary_restrictions": "vegan",
		})

		assert.Equal(t, []string{"nutty", "sweet"}, item.FlavorProfiles)
		assert.Equal(t, []string{"vegan"}, item.DietaryFeatures)
	})
}

func TestToMetadataRoundTrip(t *testing.T) {
	price := 4.25
	item := Item{
		ID:             "9",
		Title:          "Matcha Tart",
		Price:          &price,
		Tags:           []string{"tart", "green"},
		FlavorProfiles: []string{"matcha"},
	}

	back := FromMetadata("9", ToMetadata(item))

	assert.Equal(t, item.Title, back.Title)
	assert.Equal(t, item.Tags, back.Tags)
	assert.Equal(t, item.FlavorProfiles, back.FlavorProfiles)
	require.NotNil(t, back.Price)
	assert.Equal(t, price, *back.Price)
}
