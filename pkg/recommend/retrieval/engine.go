// Package retrieval turns a query and filters into candidate catalog items
// by embedding the query and searching the similarity store.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yorkie-bakery-be/internal/pkg/logger"
	"yorkie-bakery-be/pkg/embedding"
	"yorkie-bakery-be/pkg/recommend/catalog"
	"yorkie-bakery-be/pkg/recommend/filter"
	"yorkie-bakery-be/pkg/recommend/textnorm"
	"yorkie-bakery-be/pkg/vectorstore"
)

type Engine struct {
	embedder     embedding.EmbeddingProvider
	store        vectorstore.Store
	logger       logger.ILogger
	embedTimeout time.Duration
	queryTimeout time.Duration
}

type Option func(*Engine)

func WithTimeouts(embed, query time.Duration) Option {
	return func(e *Engine) {
		e.embedTimeout = embed
		e.queryTimeout = query
	}
}

func NewEngine(embedder embedding.EmbeddingProvider, store vectorstore.Store, log logger.ILogger, opts ...Option) *Engine {
	e := &Engine{
		embedder: embedder,
		store:    store,
		logger:   log,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Retrieve embeds queryText and returns up to topK candidates matching the
// store-expressible filters. Blank text yields no candidates.
func (e *Engine) Retrieve(ctx context.Context, queryText string, filters filter.Filters, topK int) ([]catalog.RankedItem, error) {
	vec, err := e.EmbedQuery(ctx, queryText)
	if err != nil {
		return nil, err
	}
	return e.Search(ctx, vec, filters, topK)
}

// EmbedQuery canonicalizes the text and embeds it. A nil vector with no
// error means there was nothing to embed.
func (e *Engine) EmbedQuery(ctx context.Context, queryText string) ([]float32, error) {
	text := textnorm.Canonicalize(queryText)
	if text == "" {
		return nil, nil
	}

	ctx, cancel := withOptionalTimeout(ctx, e.embedTimeout)
	defer cancel()

	vec, err := embedding.Embed(ctx, e.embedder, text, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return vec, nil
}

// Search queries the store with a precomputed embedding. A nil vector
// yields no candidates.
func (e *Engine) Search(ctx context.Context, vec []float32, filters filter.Filters, topK int) ([]catalog.RankedItem, error) {
	if len(vec) == 0 {
		return []catalog.RankedItem{}, nil
	}
	if topK <= 0 {
		topK = 5
	}

	req := vectorstore.QueryRequest{
		Embeddings: [][]float32{vec},
		TopK:       topK,
		Where:      Predicate(filters),
		Include:    vectorstore.DefaultFields,
	}

	res, err := e.query(ctx, req)
	if errors.Is(err, vectorstore.ErrUnsupportedField) {
		e.logger.Warn("RETRIEVAL", "Store rejected result fields, retrying with safe set", map[string]interface{}{
			"error":     err.Error(),
			"requested": req.Include,
		})
		req.Include = vectorstore.SafeFields
		res, err = e.query(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}

	return flatten(res), nil
}

func (e *Engine) query(ctx context.Context, req vectorstore.QueryRequest) (*vectorstore.QueryResult, error) {
	ctx, cancel := withOptionalTimeout(ctx, e.queryTimeout)
	defer cancel()
	return e.store.Query(ctx, req)
}

// Predicate builds the store-side filter. Price bounds are left to the
// ranker since stores here have no range query.
func Predicate(f filter.Filters) vectorstore.Predicate {
	var clauses vectorstore.And
	if f.Origin != nil {
		clauses = append(clauses, vectorstore.Exact{Field: catalog.KeyOrigin, Value: *f.Origin})
	}
	if f.Category != nil {
		clauses = append(clauses, vectorstore.Exact{Field: catalog.KeyCategory, Value: *f.Category})
	}
	for _, v := range f.FlavorProfiles {
		clauses = append(clauses, containsAny(catalog.KeyFlavorProfiles, v))
	}
	for _, v := range f.DietaryFeatures {
		clauses = append(clauses, containsAny(catalog.KeyDietaryFeatures, v))
	}

	switch len(clauses) {
	case 0:
		return nil
	case 1:
		return clauses[0]
	}
	return clauses
}

// containsAny matches value under key or any of its legacy names.
func containsAny(key, value string) vectorstore.Predicate {
	keys := catalog.FieldKeys(key)
	if len(keys) == 1 {
		return vectorstore.Contains{Field: key, Value: value}
	}
	or := make(vectorstore.Or, 0, len(keys))
	for _, k := range keys {
		or = append(or, vectorstore.Contains{Field: k, Value: value})
	}
	return or
}

// flatten unwraps the single query batch into items. Missing parallel
// arrays leave ids empty and distances zero.
func flatten(res *vectorstore.QueryResult) []catalog.RankedItem {
	items := []catalog.RankedItem{}
	if res == nil || len(res.Metadatas) == 0 {
		return items
	}

	metas := res.Metadatas[0]
	var ids []string
	if len(res.IDs) > 0 {
		ids = res.IDs[0]
	}
	var dists []float64
	if len(res.Distances) > 0 {
		dists = res.Distances[0]
	}

	for i, meta := range metas {
		var id string
		if i < len(ids) {
			id = ids[i]
		}
		item := catalog.RankedItem{Item: catalog.FromMetadata(id, meta)}
		if i < len(dists) {
			item.Distance = dists[i]
		}
		items = append(items, item)
	}
	return items
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
