// Package rank applies the filters the similarity store cannot express and
// re-orders candidates with a title keyword boost.
package rank

import (
	"sort"
	"strings"

	"yorkie-bakery-be/pkg/recommend/catalog"
	"yorkie-bakery-be/pkg/recommend/filter"
	"yorkie-bakery-be/pkg/recommend/textnorm"
)

// NullPricePolicy decides how an item without a recorded price fares
// against a price bound.
type NullPricePolicy int

const (
	NullPricePasses NullPricePolicy = iota
	NullPriceFails
)

const (
	DefaultNullPricePolicy = NullPricePasses
	DefaultBoostFactor     = 0.5
)

// ParseNullPricePolicy maps "pass" or "fail" to a policy. Anything else
// yields the default.
func ParseNullPricePolicy(s string) NullPricePolicy {
	if strings.EqualFold(strings.TrimSpace(s), "fail") {
		return NullPriceFails
	}
	return DefaultNullPricePolicy
}

func (p NullPricePolicy) String() string {
	if p == NullPriceFails {
		return "fail"
	}
	return "pass"
}

type Option func(*Ranker)

func WithNullPricePolicy(p NullPricePolicy) Option {
	return func(r *Ranker) {
		r.nullPrice = p
	}
}

// WithBoostFactor sets the distance multiplier for title matches. Values
// outside (0, 1] are ignored.
func WithBoostFactor(f float64) Option {
	return func(r *Ranker) {
		if f > 0 && f <= 1 {
			r.boost = f
		}
	}
}

type Ranker struct {
	nullPrice NullPricePolicy
	boost     float64
}

func New(opts ...Option) *Ranker {
	r := &Ranker{
		nullPrice: DefaultNullPricePolicy,
		boost:     DefaultBoostFactor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FilterAndRank drops items failing filters, boosts items whose title
// shares a token with rerankContext and sorts by ascending distance. Ties
// keep their input order. The input slice is not modified.
func (r *Ranker) FilterAndRank(items []catalog.RankedItem, filters filter.Filters, rerankContext string) []catalog.RankedItem {
	tokens := textnorm.Tokens(rerankContext)

	out := make([]catalog.RankedItem, 0, len(items))
	for _, item := range items {
		if !r.Keep(item.Item, filters) {
			continue
		}
		if titleMatches(item.Title, tokens) {
			item.Distance *= r.boost
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}

// Keep reports whether item satisfies every set filter.
func (r *Ranker) Keep(item catalog.Item, f filter.Filters) bool {
	if !r.priceInRange(item.Price, f.PriceMin, f.PriceMax) {
		return false
	}
	if f.Origin != nil && !strings.EqualFold(item.Origin, *f.Origin) {
		return false
	}
	if f.Category != nil && !strings.EqualFold(item.Category, *f.Category) {
		return false
	}
	if !containsAll(item.FlavorProfiles, f.FlavorProfiles) {
		return false
	}
	if !containsAll(item.DietaryFeatures, f.DietaryFeatures) {
		return false
	}
	return true
}

func (r *Ranker) priceInRange(price, min, max *float64) bool {
	if min == nil && max == nil {
		return true
	}
	if price == nil {
		return r.nullPrice == NullPricePasses
	}
	if min != nil && *price < *min {
		return false
	}
	if max != nil && *price > *max {
		return false
	}
	return true
}

// containsAll matches case-insensitively and treats "_", "-" and spaces as
// the same separator, so "gluten_free" finds "Gluten-Free".
func containsAll(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, entry := range have {
		for _, h := range catalog.SplitList(entry) {
			set[catalog.TagKey(h)] = struct{}{}
		}
	}
	for _, w := range want {
		if _, ok := set[catalog.TagKey(w)]; !ok {
			return false
		}
	}
	return true
}

func titleMatches(title string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	lower := strings.ToLower(title)
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
