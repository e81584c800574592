package pgvector

import (
	"testing"

	"yorkie-bakery-be/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
)

func TestPredicateSQL(t *testing.T) {
	tests := []struct {
		name     string
		pred     vectorstore.Predicate
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "nil",
			pred:     nil,
			wantSQL:  "",
			wantArgs: nil,
		},
		{
			name:     "exact",
			pred:     vectorstore.Exact{Field: "origin", Value: "french"},
			wantSQL:  "lower(metadata->>?) = lower(?)",
			wantArgs: []interface{}{"origin", "french"},
		},
		{
			name:     "contains folds separators",
			pred:     vectorstore.Contains{Field: "dietary_features", Value: "Gluten_Free"},
			wantSQL:  "replace(replace(lower(metadata->>?), '_', '-'), ' ', '-') LIKE ?",
			wantArgs: []interface{}{"dietary_features", "%gluten-free%"},
		},
		{
			name:     "contains escapes wildcards",
			pred:     vectorstore.Contains{Field: "notes", Value: "50%"},
			wantSQL:  "replace(replace(lower(metadata->>?), '_', '-'), ' ', '-') LIKE ?",
			wantArgs: []interface{}{"notes", `%50\%%`},
		},
		{
			name: "and",
			pred: vectorstore.And{
				vectorstore.Exact{Field: "category", Value: "dessert"},
				vectorstore.Contains{Field: "flavor_profiles", Value: "sweet"},
			},
			wantSQL:  "(lower(metadata->>?) = lower(?)) AND (replace(replace(lower(metadata->>?), '_', '-'), ' ', '-') LIKE ?)",
			wantArgs: []interface{}{"category", "dessert", "flavor_profiles", "%sweet%"},
		},
		{
			name: "or",
			pred: vectorstore.Or{
				vectorstore.Contains{Field: "flavor_profiles", Value: "matcha"},
				vectorstore.Contains{Field: "flavor_profile", Value: "matcha"},
			},
			wantSQL:  "(replace(replace(lower(metadata->>?), '_', '-'), ' ', '-') LIKE ?) OR (replace(replace(lower(metadata->>?), '_', '-'), ' ', '-') LIKE ?)",
			wantArgs: []interface{}{"flavor_profiles", "%matcha%", "flavor_profile", "%matcha%"},
		},
		{
			name:     "empty or",
			pred:     vectorstore.Or{},
			wantSQL:  "FALSE",
			wantArgs: nil,
		},
		{
			name:     "empty and",
			pred:     vectorstore.And{},
			wantSQL:  "",
			wantArgs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := predicateSQL(tt.pred)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
