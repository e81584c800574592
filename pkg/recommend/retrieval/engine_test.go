package retrieval

import (
	"context"
	"errors"
	"testing"

	"yorkie-bakery-be/internal/pkg/logger"
	"yorkie-bakery-be/pkg/embedding"
	"yorkie-bakery-be/pkg/recommend/catalog"
	"yorkie-bakery-be/pkg/recommend/filter"
	"yorkie-bakery-be/pkg/recommend/rank"
	"yorkie-bakery-be/pkg/vectorstore"
	"yorkie-bakery-be/pkg/vectorstore/memory"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps known words to fixed axes.
type fakeEmbedder struct {
	calls []string
	err   error
}

func (f *fakeEmbedder) Generate(ctx context.Context, text, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0}}}, nil
}

type recordingStore struct {
	vectorstore.Store
	requests []vectorstore.QueryRequest
}

func (r *recordingStore) Query(ctx context.Context, req vectorstore.QueryRequest) (*vectorstore.QueryResult, error) {
	r.requests = append(r.requests, req)
	return r.Store.Query(ctx, req)
}

func ptr[T any](v T) *T { return &v }

func seededStore(t *testing.T, opts ...memory.Option) *memory.Storage {
	t.Helper()
	s := memory.NewStorage(opts...)
	require.NoError(t, s.Upsert(context.Background(), []vectorstore.Record{
		{ID: "1", Embedding: []float32{1, 0}, Metadata: catalog.ToMetadata(catalog.Item{ID: "1", Title: "Almond Croissant", Origin: "french", Category: "pastry", Price: ptr(3.0), FlavorProfiles: []string{"nutty", "buttery"}})},
		{ID: "2", Embedding: []float32{0.6, 0.8}, Metadata: map[string]any{"title": "Matcha Roll", "origin": "japanese", "flavor_profile": "sweet,matcha", "dietary_restrictions": "vegetarian"}},
		{ID: "3", Embedding: []float32{0, 1}, Metadata: map[string]any{"title": "Thai Tea", "origin": "thai", "category": "drink"}},
	}))
	return s
}

func TestRetrieveFlattensBatch(t *testing.T) {
	emb := &fakeEmbedder{}
	e := NewEngine(emb, seededStore(t), logger.NewNopLogger())

	items, err := e.Retrieve(context.Background(), "  Sweet BUN, please! ", filter.Filters{}, 2)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []string{"sweet buns please"}, emb.calls)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, []string{"nutty", "buttery"}, items[0].FlavorProfiles)
	assert.Equal(t, "2", items[1].ID)
	assert.Equal(t, []string{"sweet", "matcha"}, items[1].FlavorProfiles)
	assert.Equal(t, []string{"vegetarian"}, items[1].DietaryFeatures)
	assert.Equal(t, []string{}, items[1].Tags)
	assert.InDelta(t, 0.4, items[1].Distance, 1e-6)
}

func TestRetrieveBlankQuery(t *testing.T) {
	emb := &fakeEmbedder{}
	e := NewEngine(emb, seededStore(t), logger.NewNopLogger())

	items, err := e.Retrieve(context.Background(), " ?! ", filter.Filters{}, 5)

	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, emb.calls)
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	e := NewEngine(&fakeEmbedder{err: errors.New("timeout")}, seededStore(t), logger.NewNopLogger())

	_, err := e.Retrieve(context.Background(), "croissant", filter.Filters{}, 5)

	assert.Error(t, err)
}

func TestRetrievePushesDownFilters(t *testing.T) {
	store := &recordingStore{Store: seededStore(t)}
	e := NewEngine(&fakeEmbedder{}, store, logger.NewNopLogger())

	items, err := e.Retrieve(context.Background(), "something to drink", filter.Filters{
		Origin:   ptr("Thai"),
		Category: ptr("drink"),
		PriceMax: ptr(1.0),
	}, 5)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Thai Tea", items[0].Title)
	assert.Nil(t, items[0].Price)

	require.Len(t, store.requests, 1)
	want := vectorstore.And{
		vectorstore.Exact{Field: "origin", Value: "Thai"},
		vectorstore.Exact{Field: "category", Value: "drink"},
	}
	if diff := cmp.Diff(vectorstore.Predicate(want), store.requests[0].Where); diff != "" {
		t.Errorf("predicate mismatch (-want +got):\n%s", diff)
	}
}

func TestRetrieveRetriesWithSafeFields(t *testing.T) {
	store := &recordingStore{Store: seededStore(t, memory.WithSupportedFields(vectorstore.SafeFields...))}
	e := NewEngine(&fakeEmbedder{}, store, logger.NewNopLogger())

	items, err := e.Retrieve(context.Background(), "croissant", filter.Filters{}, 3)

	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "1", items[0].ID, "id falls back to metadata")
	assert.Equal(t, "", items[1].ID)
	require.Len(t, store.requests, 2)
	assert.Equal(t, vectorstore.SafeFields, store.requests[1].Include)
}

func TestRetrieveMatchesLegacyKeys(t *testing.T) {
	e := NewEngine(&fakeEmbedder{}, seededStore(t), logger.NewNopLogger())

	for name, f := range map[string]filter.Filters{
		"flavor":  {FlavorProfiles: []string{"matcha"}},
		"dietary": {DietaryFeatures: []string{"Vegetarian"}},
	} {
		t.Run(name, func(t *testing.T) {
			items, err := e.Retrieve(context.Background(), "roll", f, 5)

			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "Matcha Roll", items[0].Title)
			assert.Len(t, rank.New().FilterAndRank(items, f, ""), 1)
		})
	}
}

func TestRetrieveFoldsTagSeparators(t *testing.T) {
	s := memory.NewStorage()
	require.NoError(t, s.Upsert(context.Background(), []vectorstore.Record{
		{ID: "1", Embedding: []float32{1, 0}, Metadata: catalog.ToMetadata(catalog.Item{ID: "1", Title: "Flourless Brownie", DietaryFeatures: []string{"Gluten-Free"}})},
		{ID: "2", Embedding: []float32{0, 1}, Metadata: catalog.ToMetadata(catalog.Item{ID: "2", Title: "Rye Bread", DietaryFeatures: []string{"vegan"}})},
	}))
	e := NewEngine(&fakeEmbedder{}, s, logger.NewNopLogger())
	f := filter.Filters{DietaryFeatures: []string{"gluten_free"}}

	items, err := e.Retrieve(context.Background(), "brownie", f, 5)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Flourless Brownie", items[0].Title)
	kept := rank.New().FilterAndRank(items, f, "")
	require.Len(t, kept, 1)
	assert.Equal(t, "1", kept[0].ID)
}

func TestPredicate(t *testing.T) {
	assert.Nil(t, Predicate(filter.Filters{PriceMin: ptr(1.0)}))
	assert.Equal(t, vectorstore.Exact{Field: "category", Value: "drink"}, Predicate(filter.Filters{Category: ptr("drink")}))

	got := Predicate(filter.Filters{FlavorProfiles: []string{"matcha"}, DietaryFeatures: []string{"vegan"}})
	want := vectorstore.And{
		vectorstore.Or{
			vectorstore.Contains{Field: "flavor_profiles", Value: "matcha"},
			vectorstore.Contains{Field: "flavor_profile", Value: "matcha"},
		},
		vectorstore.Or{
			vectorstore.Contains{Field: "dietary_features", Value: "vegan"},
			vectorstore.Contains{Field: "dietary_restrictions", Value: "vegan"},
		},
	}
	if diff := cmp.Diff(vectorstore.Predicate(want), got); diff != "" {
		t.Errorf("predicate mismatch (-want +got):\n%s", diff)
	}
}
