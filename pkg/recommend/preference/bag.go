// Package preference holds the per-session preference bag and the rules
// for merging new observations into it.
package preference

import (
	"fmt"
)

const (
	KeyName       = "name"
	KeyFlavors    = "flavors"
	KeyDietary    = "dietary"
	KeyAvoid      = "avoid"
	KeyCategories = "categories"
	KeyLastViewed = "last_viewed"

	MaxLastViewed = 10
)

// listKeys are always stored as lists, even when an update carries a
// single scalar value for them.
var listKeys = map[string]bool{
	KeyFlavors:    true,
	KeyDietary:    true,
	KeyAvoid:      true,
	KeyCategories: true,
	KeyLastViewed: true,
}

// Bag maps a preference key to either a scalar or a []string.
type Bag map[string]any

// List returns the list stored under key, or nil.
func (b Bag) List(key string) []string {
	l, _ := asList(b[key])
	return l
}

// String returns the scalar stored under key formatted as text.
func (b Bag) String(key string) string {
	v, ok := b[key]
	if !ok || v == nil {
		return ""
	}
	if _, isList := asList(v); isList {
		return ""
	}
	return scalarText(v)
}

func scalarText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone returns a deep copy with every list normalized to []string.
func (b Bag) Clone() Bag {
	out := make(Bag, len(b))
	for k, v := range b {
		if l, ok := asList(v); ok {
			out[k] = dedupe(l)
			continue
		}
		out[k] = v
	}
	return out
}

// asList reports whether v is list-valued and returns its elements as
// strings. Decoded JSON arrives as []any.
func asList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if e == nil {
				continue
			}
			if s, ok := e.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprint(e))
		}
		return out, true
	}
	return nil, false
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
