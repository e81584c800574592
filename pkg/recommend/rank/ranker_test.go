package rank

import (
	"testing"

	"yorkie-bakery-be/pkg/recommend/catalog"
	"yorkie-bakery-be/pkg/recommend/filter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func item(id, title string, price *float64, distance float64) catalog.RankedItem {
	return catalog.RankedItem{
		Item:     catalog.Item{ID: id, Title: title, Origin: "french", Price: price},
		Distance: distance,
	}
}

func ids(items []catalog.RankedItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestFilterAndRankPriceMax(t *testing.T) {
	items := []catalog.RankedItem{
		item("A", "Almond Croissant", ptr(3.0), 0.3),
		item("B", "Opera Cake", ptr(10.0), 0.2),
	}

	got := New().FilterAndRank(items, filter.Filters{PriceMax: ptr(5.0)}, "")

	assert.Equal(t, []string{"A"}, ids(got))
}

func TestFilterAndRankNullPricePolicy(t *testing.T) {
	items := []catalog.RankedItem{
		item("priced", "Madeleine", ptr(4.0), 0.1),
		item("unpriced", "Seasonal Special", nil, 0.2),
		item("expensive", "Croquembouche", ptr(40.0), 0.3),
	}
	f := filter.Filters{PriceMin: ptr(1.0), PriceMax: ptr(5.0)}

	tests := []struct {
		name   string
		ranker *Ranker
		want   []string
	}{
		{name: "default passes", ranker: New(), want: []string{"priced", "unpriced"}},
		{name: "explicit pass", ranker: New(WithNullPricePolicy(NullPricePasses)), want: []string{"priced", "unpriced"}},
		{name: "fail", ranker: New(WithNullPricePolicy(NullPriceFails)), want: []string{"priced"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ranker.FilterAndRank(items, f, "")
			assert.Equal(t, tt.want, ids(got))
			for _, it := range got {
				if it.Price != nil {
					assert.GreaterOrEqual(t, *it.Price, *f.PriceMin)
					assert.LessOrEqual(t, *it.Price, *f.PriceMax)
				}
			}
		})
	}
}

func TestFilterAndRankNullPriceWithoutBounds(t *testing.T) {
	items := []catalog.RankedItem{item("unpriced", "Seasonal Special", nil, 0.2)}

	got := New(WithNullPricePolicy(NullPriceFails)).FilterAndRank(items, filter.Filters{}, "")

	assert.Len(t, got, 1)
}

func TestFilterAndRankExactAndListFields(t *testing.T) {
	items := []catalog.RankedItem{
		{Item: catalog.Item{ID: "1", Origin: "Japanese", Category: "dessert", FlavorProfiles: []string{"sweet", "matcha"}, DietaryFeatures: []string{"Gluten-Free"}}, Distance: 0.1},
		{Item: catalog.Item{ID: "2", Origin: "japanese", Category: "drink", FlavorProfiles: []string{"matcha"}}, Distance: 0.2},
		{Item: catalog.Item{ID: "3", Origin: "french", Category: "dessert", FlavorProfiles: []string{"sweet, matcha"}}, Distance: 0.3},
	}

	tests := []struct {
		name    string
		filters filter.Filters
		want    []string
	}{
		{name: "origin case insensitive", filters: filter.Filters{Origin: ptr("japanese")}, want: []string{"1", "2"}},
		{name: "category", filters: filter.Filters{Category: ptr("dessert")}, want: []string{"1", "3"}},
		{name: "flavor needs every value", filters: filter.Filters{FlavorProfiles: []string{"sweet", "matcha"}}, want: []string{"1", "3"}},
		{name: "dietary separators", filters: filter.Filters{DietaryFeatures: []string{"gluten_free"}}, want: []string{"1"}},
		{name: "combined", filters: filter.Filters{Origin: ptr("japanese"), FlavorProfiles: []string{"matcha"}, Category: ptr("drink")}, want: []string{"2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(New().FilterAndRank(items, tt.filters, "")))
		})
	}
}

func TestFilterAndRankBoostsTitleMatch(t *testing.T) {
	items := []catalog.RankedItem{
		item("tart", "Chocolate Tart", nil, 0.4),
		item("bun", "Golden Bun", nil, 0.4),
	}

	got := New().FilterAndRank(items, filter.Filters{}, "a round golden bun")

	require.Len(t, got, 2)
	assert.Equal(t, "bun", got[0].ID)
	assert.InDelta(t, 0.2, got[0].Distance, 1e-9)
	assert.InDelta(t, 0.4, got[1].Distance, 1e-9)
	assert.InDelta(t, 0.4, items[1].Distance, 1e-9)
}

func TestFilterAndRankStableTies(t *testing.T) {
	items := []catalog.RankedItem{
		item("first", "Plain Scone", nil, 0.5),
		item("second", "Plain Muffin", nil, 0.5),
		item("third", "Matcha Roll", nil, 0.3),
	}

	got := New().FilterAndRank(items, filter.Filters{}, "")

	assert.Equal(t, []string{"third", "first", "second"}, ids(got))
}

func TestFilterAndRankBoostFactor(t *testing.T) {
	items := []catalog.RankedItem{item("bun", "Golden Bun", nil, 0.4)}

	got := New(WithBoostFactor(0.25)).FilterAndRank(items, filter.Filters{}, "golden")
	assert.InDelta(t, 0.1, got[0].Distance, 1e-9)

	got = New(WithBoostFactor(3)).FilterAndRank(items, filter.Filters{}, "golden")
	assert.InDelta(t, 0.2, got[0].Distance, 1e-9)
}

func TestParseNullPricePolicy(t *testing.T) {
	assert.Equal(t, NullPriceFails, ParseNullPricePolicy("FAIL"))
	assert.Equal(t, NullPricePasses, ParseNullPricePolicy("pass"))
	assert.Equal(t, NullPricePasses, ParseNullPricePolicy(""))
}
