// Package pgvector implements vectorstore.Store on PostgreSQL with the
// pgvector extension.
package pgvector

import (
	"context"
	"fmt"
	"strings"

	"yorkie-bakery-be/internal/model"
	"yorkie-bakery-be/pkg/recommend/catalog"
	"yorkie-bakery-be/pkg/vectorstore"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

var _ vectorstore.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type scoredRow struct {
	model.CatalogEmbedding
	Distance float64
}

func (s *Store) Query(ctx context.Context, req vectorstore.QueryRequest) (*vectorstore.QueryResult, error) {
	for _, f := range req.Include {
		switch f {
		case vectorstore.FieldIDs, vectorstore.FieldMetadatas, vectorstore.FieldDistances,
			vectorstore.FieldDocuments, vectorstore.FieldEmbeddings:
		default:
			return nil, vectorstore.UnsupportedFieldError(f)
		}
	}

	topK := req.TopK
	if topK <= 0 {
		topK = 5
	}

	res := &vectorstore.QueryResult{}
	for _, embedding := range req.Embeddings {
		queryVector := pgvector.NewVector(embedding)

		// Cosine distance in pgvector: embedding_value <=> query_vector
		var rows []scoredRow
		err := s.db.WithContext(ctx).
			Table(model.CatalogEmbedding{}.TableName()).
			Select("catalog_embeddings.*, embedding_value <=> ? AS distance", queryVector).
			Scopes(WherePredicate(req.Where)).
			Order("distance ASC").
			Limit(topK).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("catalog similarity query: %w", err)
		}

		appendBatch(res, rows, req.Include)
	}
	return res, nil
}

func appendBatch(res *vectorstore.QueryResult, rows []scoredRow, include []vectorstore.Field) {
	ids := make([]string, len(rows))
	metas := make([]map[string]any, len(rows))
	dists := make([]float64, len(rows))
	docs := make([]string, len(rows))
	embs := make([][]float32, len(rows))
	for i, r := range rows {
		ids[i] = r.Id
		metas[i] = map[string]any(r.Metadata)
		dists[i] = r.Distance
		docs[i] = r.Document
		embs[i] = r.EmbeddingValue.Slice()
	}

	if vectorstore.Includes(include, vectorstore.FieldIDs) {
		res.IDs = append(res.IDs, ids)
	}
	if vectorstore.Includes(include, vectorstore.FieldMetadatas) {
		res.Metadatas = append(res.Metadatas, metas)
	}
	if vectorstore.Includes(include, vectorstore.FieldDistances) {
		res.Distances = append(res.Distances, dists)
	}
	if vectorstore.Includes(include, vectorstore.FieldDocuments) {
		res.Documents = append(res.Documents, docs)
	}
	if vectorstore.Includes(include, vectorstore.FieldEmbeddings) {
		res.Embeddings = append(res.Embeddings, embs)
	}
}

func (s *Store) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]*model.CatalogEmbedding, len(records))
	for i, r := range records {
		models[i] = &model.CatalogEmbedding{
			Id:             r.ID,
			Document:       r.Document,
			EmbeddingValue: pgvector.NewVector(r.Embedding),
			Metadata:       r.Metadata,
		}
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"document", "embedding_value", "metadata", "updated_at"}),
		}).
		Create(&models).Error
}

// Delete removes catalog entries by id.
func (s *Store) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.CatalogEmbedding{}).Error
}

// WherePredicate translates a predicate into jsonb conditions on the
// metadata column.
func WherePredicate(p vectorstore.Predicate) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		sql, args := predicateSQL(p)
		if sql == "" {
			return db
		}
		return db.Where(sql, args...)
	}
}

func predicateSQL(p vectorstore.Predicate) (string, []interface{}) {
	switch t := p.(type) {
	case vectorstore.Exact:
		return "lower(metadata->>?) = lower(?)", []interface{}{t.Field, t.Value}
	case vectorstore.Contains:
		return foldedField + " LIKE ?", []interface{}{t.Field, "%" + escapeLike(catalog.TagKey(t.Value)) + "%"}
	case vectorstore.And:
		return joinSQL([]vectorstore.Predicate(t), " AND ")
	case vectorstore.Or:
		if len(t) == 0 {
			return "FALSE", nil
		}
		return joinSQL([]vectorstore.Predicate(t), " OR ")
	}
	return "", nil
}

// foldedField mirrors catalog.TagKey on the stored value.
const foldedField = "replace(replace(lower(metadata->>?), '_', '-'), ' ', '-')"

func joinSQL(clauses []vectorstore.Predicate, sep string) (string, []interface{}) {
	var parts []string
	var args []interface{}
	for _, c := range clauses {
		sql, a := predicateSQL(c)
		if sql == "" {
			continue
		}
		parts = append(parts, "("+sql+")")
		args = append(args, a...)
	}
	return strings.Join(parts, sep), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
