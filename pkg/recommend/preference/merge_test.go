package preference

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeListUnion(t *testing.T) {
	got := Merge(Bag{KeyFlavors: []string{"sweet"}}, Bag{KeyFlavors: []string{"sweet", "nutty"}})

	assert.Equal(t, Bag{KeyFlavors: []string{"sweet", "nutty"}}, got)
}

func TestMergeScalarOverwrites(t *testing.T) {
	got := Merge(Bag{KeyName: "Ana", KeyFlavors: []string{"sweet"}}, Bag{KeyName: "Bo"})

	assert.Equal(t, "Bo", got.String(KeyName))
	assert.Equal(t, []string{"sweet"}, got.List(KeyFlavors))
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	existing := Bag{KeyFlavors: []string{"sweet"}}
	incoming := Bag{KeyFlavors: []string{"nutty"}}

	_ = Merge(existing, incoming)

	assert.Equal(t, []string{"sweet"}, existing[KeyFlavors])
	assert.Equal(t, []string{"nutty"}, incoming[KeyFlavors])
}

func TestMergeAcceptsDecodedJSONLists(t *testing.T) {
	existing := Bag{KeyAvoid: []any{"nuts", "nuts", "dairy"}}

	got := Merge(existing, Bag{KeyAvoid: []any{"eggs", "nuts"}})

	assert.Equal(t, []string{"nuts", "dairy", "eggs"}, got.List(KeyAvoid))
}

func TestMergeScalarForListKeyIsPromoted(t *testing.T) {
	got := Merge(Bag{}, Bag{KeyCategories: "cake"})

	assert.Equal(t, []string{"cake"}, got.List(KeyCategories))
}

func TestMergeIsIdempotent(t *testing.T) {
	cases := []struct {
		name string
		a    Bag
		b    Bag
	}{
		{
			name: "flavors",
			a:    Bag{KeyFlavors: []string{"sweet", "citrus"}},
			b:    Bag{KeyFlavors: []string{"nutty", "sweet"}, KeyName: "Ana"},
		},
		{
			name: "last viewed overflow from existing",
			a:    Bag{KeyLastViewed: titles(1, 10)},
			b:    Bag{KeyLastViewed: []string{"item-4", "item-11", "item-12"}},
		},
		{
			name: "last viewed overflow from incoming",
			a:    Bag{KeyLastViewed: titles(1, 3)},
			b:    Bag{KeyLastViewed: titles(20, 33)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			once := Merge(tc.a, tc.b)
			twice := Merge(once, tc.b)
			assert.Equal(t, once, twice)
		})
	}
}

func TestMergeLastViewedEvictsOldest(t *testing.T) {
	got := Merge(Bag{KeyLastViewed: titles(1, 10)}, Bag{KeyLastViewed: []string{"item-11"}})

	assert.Equal(t, titles(2, 11), got.List(KeyLastViewed))
}

func TestMergeLastViewedBounded(t *testing.T) {
	bag := Bag{}
	for i := 0; i < 30; i++ {
		bag = Merge(bag, Bag{KeyLastViewed: []string{fmt.Sprintf("item-%d", i%13), fmt.Sprintf("item-%d", i%7)}})

		viewed := bag.List(KeyLastViewed)
		require.LessOrEqual(t, len(viewed), MaxLastViewed)
		assert.ElementsMatch(t, viewed, dedupe(viewed))
	}
}

func TestMergeLastViewedKeepsRevisitedItems(t *testing.T) {
	got := Merge(Bag{KeyLastViewed: titles(1, 10)}, Bag{KeyLastViewed: []string{"item-1", "item-11"}})

	viewed := got.List(KeyLastViewed)
	assert.Len(t, viewed, MaxLastViewed)
	assert.Contains(t, viewed, "item-1")
	assert.Contains(t, viewed, "item-11")
	assert.NotContains(t, viewed, "item-2")
	assert.Equal(t, "item-1", viewed[0])
}

func titles(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, fmt.Sprintf("item-%d", i))
	}
	return out
}
