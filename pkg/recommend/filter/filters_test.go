package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpretOriginAndPriceMax(t *testing.T) {
	f, ok := Interpret([]byte(`{"origin":"french","price_max":5}`))

	require.True(t, ok)
	require.NotNil(t, f.Origin)
	require.NotNil(t, f.PriceMax)
	assert.Equal(t, "french", *f.Origin)
	assert.Equal(t, 5.0, *f.PriceMax)
	assert.Nil(t, f.Category)
	assert.Nil(t, f.PriceMin)
	assert.Empty(t, f.FlavorProfiles)
	assert.Empty(t, f.DietaryFeatures)
}

func TestInterpretIsIdempotent(t *testing.T) {
	raw := []byte(`{"origin":"japanese","category":"dessert","flavor_profiles":["sweet"],"dietary_features":"vegan","price_min":2,"price_max":"$9.50"}`)

	first, ok1 := Interpret(raw)
	second, ok2 := Interpret(raw)

	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestInterpretMalformedIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "not json", raw: "sure! here are your filters"},
		{name: "truncated", raw: `{"origin":"fre`},
		{name: "array", raw: `["origin"]`},
		{name: "null", raw: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := Interpret([]byte(tt.raw))
			assert.False(t, ok)
			assert.True(t, f.IsEmpty())
		})
	}
}

func TestInterpretNormalizesFields(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, f Filters)
	}{
		{
			name: "scalar flavor becomes single element list",
			raw:  `{"flavor_profiles":"nutty"}`,
			check: func(t *testing.T, f Filters) {
				assert.Equal(t, []string{"nutty"}, f.FlavorProfiles)
			},
		},
		{
			name: "scalar dietary becomes single element list",
			raw:  `{"dietary_features":"gluten_free"}`,
			check: func(t *testing.T, f Filters) {
				assert.Equal(t, []string{"gluten_free"}, f.DietaryFeatures)
			},
		},
		{
			name: "nulls stay absent",
			raw:  `{"origin":null,"category":null,"flavor_profiles":null,"price_max":null}`,
			check: func(t *testing.T, f Filters) {
				assert.True(t, f.IsEmpty())
			},
		},
		{
			name: "blank strings stay absent",
			raw:  `{"origin":"  ","flavor_profiles":[""]}`,
			check: func(t *testing.T, f Filters) {
				assert.True(t, f.IsEmpty())
			},
		},
		{
			name: "zero price max is still set",
			raw:  `{"price_max":0}`,
			check: func(t *testing.T, f Filters) {
				require.NotNil(t, f.PriceMax)
				assert.Equal(t, 0.0, *f.PriceMax)
				assert.False(t, f.IsEmpty())
			},
		},
		{
			name: "fenced payload",
			raw:  "```json\n{\"category\":\"pastry\"}\n```",
			check: func(t *testing.T, f Filters) {
				require.NotNil(t, f.Category)
				assert.Equal(t, "pastry", *f.Category)
			},
		},
		{
			name: "unparseable price is dropped",
			raw:  `{"price_max":"cheap"}`,
			check: func(t *testing.T, f Filters) {
				assert.Nil(t, f.PriceMax)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := Interpret([]byte(tt.raw))
			assert.True(t, ok)
			tt.check(t, f)
		})
	}
}

func TestOverrideReplacesSetFieldsOnly(t *testing.T) {
	french := "french"
	thai := "thai"
	five := 5.0

	base := Filters{Origin: &french, FlavorProfiles: []string{"sweet"}}
	got := base.Override(Filters{Origin: &thai, PriceMax: &five})

	require.NotNil(t, got.Origin)
	assert.Equal(t, "thai", *got.Origin)
	assert.Equal(t, []string{"sweet"}, got.FlavorProfiles)
	assert.Equal(t, &five, got.PriceMax)
	assert.Equal(t, "french", *base.Origin)
}
