package memory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"yorkie-bakery-be/pkg/recommend/catalog"
	"yorkie-bakery-be/pkg/vectorstore"
)

// Storage is a simple in-memory vector store using brute-force cosine distance.
type Storage struct {
	mu        sync.RWMutex
	records   []vectorstore.Record
	index     map[string]int
	supported map[vectorstore.Field]bool
}

type Option func(*Storage)

// WithSupportedFields restricts the result fields the store accepts.
// Requests for anything else fail with ErrUnsupportedField.
func WithSupportedFields(fields ...vectorstore.Field) Option {
	return func(s *Storage) {
		s.supported = make(map[vectorstore.Field]bool, len(fields))
		for _, f := range fields {
			s.supported[f] = true
		}
	}
}

func NewStorage(opts ...Option) *Storage {
	s := &Storage{
		index: make(map[string]int),
		supported: map[vectorstore.Field]bool{
			vectorstore.FieldIDs:        true,
			vectorstore.FieldMetadatas:  true,
			vectorstore.FieldDistances:  true,
			vectorstore.FieldDocuments:  true,
			vectorstore.FieldEmbeddings: true,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) Upsert(ctx context.Context, records []vectorstore.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if r.ID == "" {
			return errors.New("record id is required")
		}
		if len(r.Embedding) == 0 {
			return fmt.Errorf("record %s has no embedding", r.ID)
		}
		r.Embedding = append([]float32(nil), r.Embedding...)
		if i, ok := s.index[r.ID]; ok {
			s.records[i] = r
			continue
		}
		s.index[r.ID] = len(s.records)
		s.records = append(s.records, r)
	}
	return nil
}

func (s *Storage) Query(ctx context.Context, req vectorstore.QueryRequest) (*vectorstore.QueryResult, error) {
	for _, f := range req.Include {
		if !s.supported[f] {
			return nil, vectorstore.UnsupportedFieldError(f)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	topK := req.TopK
	if topK <= 0 {
		topK = 5
	}

	res := &vectorstore.QueryResult{}
	for _, query := range req.Embeddings {
		type hit struct {
			idx      int
			distance float64
		}
		var hits []hit
		for i, r := range s.records {
			if !matches(req.Where, r.Metadata) {
				continue
			}
			hits = append(hits, hit{idx: i, distance: cosineDistance(query, r.Embedding)})
		}
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })
		if len(hits) > topK {
			hits = hits[:topK]
		}

		ids := make([]string, 0, len(hits))
		metas := make([]map[string]any, 0, len(hits))
		dists := make([]float64, 0, len(hits))
		docs := make([]string, 0, len(hits))
		embs := make([][]float32, 0, len(hits))
		for _, h := range hits {
			r := s.records[h.idx]
			ids = append(ids, r.ID)
			metas = append(metas, copyMeta(r.Metadata))
			dists = append(dists, h.distance)
			docs = append(docs, r.Document)
			embs = append(embs, append([]float32(nil), r.Embedding...))
		}

		if vectorstore.Includes(req.Include, vectorstore.FieldIDs) {
			res.IDs = append(res.IDs, ids)
		}
		if vectorstore.Includes(req.Include, vectorstore.FieldMetadatas) {
			res.Metadatas = append(res.Metadatas, metas)
		}
		if vectorstore.Includes(req.Include, vectorstore.FieldDistances) {
			res.Distances = append(res.Distances, dists)
		}
		if vectorstore.Includes(req.Include, vectorstore.FieldDocuments) {
			res.Documents = append(res.Documents, docs)
		}
		if vectorstore.Includes(req.Include, vectorstore.FieldEmbeddings) {
			res.Embeddings = append(res.Embeddings, embs)
		}
	}
	return res, nil
}

func (s *Storage) Delete(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := s.records[:0]
	for _, r := range s.records {
		if !drop[r.ID] {
			kept = append(kept, r)
		}
	}
	s.records = kept
	s.index = make(map[string]int, len(kept))
	for i, r := range kept {
		s.index[r.ID] = i
	}
	return nil
}

// Len returns the number of indexed records.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func matches(p vectorstore.Predicate, meta map[string]any) bool {
	switch t := p.(type) {
	case nil:
		return true
	case vectorstore.Exact:
		v, ok := meta[t.Field]
		if !ok || v == nil {
			return false
		}
		return strings.EqualFold(fmt.Sprint(v), t.Value)
	case vectorstore.Contains:
		want := catalog.TagKey(t.Value)
		switch v := meta[t.Field].(type) {
		case string:
			return strings.Contains(catalog.TagKey(v), want)
		default:
			for _, e := range catalog.SplitList(v) {
				if catalog.TagKey(e) == want {
					return true
				}
			}
			return false
		}
	case vectorstore.And:
		for _, c := range t {
			if !matches(c, meta) {
				return false
			}
		}
		return true
	case vectorstore.Or:
		for _, c := range t {
			if matches(c, meta) {
				return true
			}
		}
		return false
	}
	return false
}

func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func copyMeta(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
