// Package filter turns the structured-filter payload produced by the
// completion service into typed Filters.
package filter

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Filters constrains a recommendation. A nil or empty field means no
// constraint on that field.
type Filters struct {
	Origin          *string  `json:"origin,omitempty"`
	Category        *string  `json:"category,omitempty"`
	FlavorProfiles  []string `json:"flavor_profiles,omitempty"`
	DietaryFeatures []string `json:"dietary_features,omitempty"`
	PriceMin        *float64 `json:"price_min,omitempty"`
	PriceMax        *float64 `json:"price_max,omitempty"`
}

// IsEmpty reports whether no field carries a constraint. A price bound
// counts as set even when it is zero.
func (f Filters) IsEmpty() bool {
	return f.Origin == nil &&
		f.Category == nil &&
		len(f.FlavorProfiles) == 0 &&
		len(f.DietaryFeatures) == 0 &&
		f.PriceMin == nil &&
		f.PriceMax == nil
}

// Override returns f with every field set in o replacing the one in f.
func (f Filters) Override(o Filters) Filters {
	if o.Origin != nil {
		f.Origin = o.Origin
	}
	if o.Category != nil {
		f.Category = o.Category
	}
	if len(o.FlavorProfiles) > 0 {
		f.FlavorProfiles = o.FlavorProfiles
	}
	if len(o.DietaryFeatures) > 0 {
		f.DietaryFeatures = o.DietaryFeatures
	}
	if o.PriceMin != nil {
		f.PriceMin = o.PriceMin
	}
	if o.PriceMax != nil {
		f.PriceMax = o.PriceMax
	}
	return f
}

// AsMap renders the set fields for logging and message metadata.
func (f Filters) AsMap() map[string]interface{} {
	m := make(map[string]interface{})
	if f.Origin != nil {
		m["origin"] = *f.Origin
	}
	if f.Category != nil {
		m["category"] = *f.Category
	}
	if len(f.FlavorProfiles) > 0 {
		m["flavor_profiles"] = f.FlavorProfiles
	}
	if len(f.DietaryFeatures) > 0 {
		m["dietary_features"] = f.DietaryFeatures
	}
	if f.PriceMin != nil {
		m["price_min"] = *f.PriceMin
	}
	if f.PriceMax != nil {
		m["price_max"] = *f.PriceMax
	}
	return m
}

// Interpret parses a raw filter payload. It never fails: malformed input
// yields empty Filters and ok=false so callers can tell a degraded result
// from a payload that simply carried no constraints.
func Interpret(raw []byte) (f Filters, ok bool) {
	raw = bytes.TrimSpace(stripCodeFence(raw))
	if len(raw) == 0 {
		return Filters{}, false
	}

	var payload map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil || payload == nil {
		return Filters{}, false
	}

	f.Origin = stringValue(payload["origin"])
	f.Category = stringValue(payload["category"])
	f.FlavorProfiles = listValue(payload["flavor_profiles"])
	f.DietaryFeatures = listValue(payload["dietary_features"])
	f.PriceMin = numberValue(payload["price_min"])
	f.PriceMax = numberValue(payload["price_max"])
	return f, true
}

// models sometimes wrap JSON in a markdown fence
func stripCodeFence(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(s)
}

func decodeAny(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func stringValue(raw json.RawMessage) *string {
	s, ok := decodeAny(raw).(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func listValue(raw json.RawMessage) []string {
	var out []string
	switch v := decodeAny(raw).(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			out = []string{s}
		}
	case []interface{}:
		for _, e := range v {
			if s, ok := e.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func numberValue(raw json.RawMessage) *float64 {
	var text string
	switch v := decodeAny(raw).(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimPrefix(strings.TrimSpace(v), "$")
	default:
		return nil
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &n
}
