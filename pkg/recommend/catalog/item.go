package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Item is a read-only menu entry as known to the catalog index.
type Item struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Origin          string   `json:"origin,omitempty"`
	Category        string   `json:"category,omitempty"`
	Price           *float64 `json:"price"`
	Tags            []string `json:"tags"`
	FlavorProfiles  []string `json:"flavor_profiles"`
	DietaryFeatures []string `json:"dietary_features"`
}

// RankedItem is an Item scored by the similarity store. Lower distance is
// more similar.
type RankedItem struct {
	Item
	Distance float64 `json:"distance"`
}

// Metadata keys written by the indexer and read back by the retrieval engine.
const (
	KeyID              = "id"
	KeyTitle           = "title"
	KeyOrigin          = "origin"
	KeyCategory        = "category"
	KeyPrice           = "price"
	KeyTags            = "tags"
	KeyFlavorProfiles  = "flavor_profiles"
	KeyDietaryFeatures = "dietary_features"
)

// legacy index keys
var aliases = map[string][]string{
	KeyFlavorProfiles:  {"flavor_profile"},
	KeyDietaryFeatures: {"dietary_restrictions"},
}

// FieldKeys returns key followed by the legacy names it may be stored
// under.
func FieldKeys(key string) []string {
	return append([]string{key}, aliases[key]...)
}

var tagSeparators = strings.NewReplacer("_", "-", " ", "-")

// TagKey folds case and treats '_', '-' and ' ' as the same separator, so
// "Gluten Free", "gluten_free" and "gluten-free" compare equal.
func TagKey(s string) string {
	return tagSeparators.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// SplitList turns a metadata value into a list. Values may be stored as a
// native list or as a comma-joined string. Blank entries are dropped and an
// absent value yields an empty, non-nil list.
func SplitList(value any) []string {
	out := []string{}
	switch v := value.(type) {
	case nil:
	case string:
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	case []string:
		for _, part := range v {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	case []any:
		for _, part := range v {
			if s, ok := part.(string); ok {
				if p := strings.TrimSpace(s); p != "" {
					out = append(out, p)
				}
			}
		}
	}
	return out
}

// JoinList is the inverse of SplitList used when writing metadata.
func JoinList(values []string) string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, ",")
}

// FromMetadata builds an Item from a flat metadata map. id is the
// store-level identifier and wins over an "id" metadata field when set.
func FromMetadata(id string, meta map[string]any) Item {
	item := Item{
		ID:              id,
		Title:           stringField(meta, KeyTitle),
		Origin:          stringField(meta, KeyOrigin),
		Category:        stringField(meta, KeyCategory),
		Price:           priceField(meta),
		Tags:            SplitList(meta[KeyTags]),
		FlavorProfiles:  SplitList(lookup(meta, KeyFlavorProfiles)),
		DietaryFeatures: SplitList(lookup(meta, KeyDietaryFeatures)),
	}
	if item.ID == "" {
		item.ID = stringField(meta, KeyID)
	}
	return item
}

// ToMetadata renders an Item as the flat map stored next to its vector.
func ToMetadata(item Item) map[string]any {
	meta := map[string]any{
		KeyID:              item.ID,
		KeyTitle:           item.Title,
		KeyOrigin:          item.Origin,
		KeyCategory:        item.Category,
		KeyTags:            JoinList(item.Tags),
		KeyFlavorProfiles:  JoinList(item.FlavorProfiles),
		KeyDietaryFeatures: JoinList(item.DietaryFeatures),
	}
	if item.Price != nil {
		meta[KeyPrice] = *item.Price
	} else {
		meta[KeyPrice] = nil
	}
	return meta
}

func lookup(meta map[string]any, key string) any {
	if v, ok := meta[key]; ok && v != nil {
		return v
	}
	for _, alias := range aliases[key] {
		if v, ok := meta[alias]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringField(meta map[string]any, key string) string {
	if s, ok := meta[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func priceField(meta map[string]any) *float64 {
	var p float64
	switch v := meta[KeyPrice].(type) {
	case float64:
		p = v
	case float32:
		p = float64(v)
	case int:
		p = float64(v)
	case int64:
		p = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		p = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		p = f
	default:
		return nil
	}
	return &p
}
