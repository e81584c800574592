// Package textnorm prepares free text for embedding and keyword matching.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxQueryLength bounds the text sent to the embedding service, in runes.
const MaxQueryLength = 2048

// catalog nouns are indexed in plural form
var plurals = map[string]string{
	"bun":       "buns",
	"tart":      "tarts",
	"cake":      "cakes",
	"cookie":    "cookies",
	"pastry":    "pastries",
	"croissant": "croissants",
	"macaron":   "macarons",
	"muffin":    "muffins",
	"donut":     "donuts",
	"doughnut":  "donuts",
	"doughnuts": "donuts",
	"scone":     "scones",
	"brownie":   "brownies",
	"cupcake":   "cupcakes",
	"drink":     "drinks",
	"dessert":   "desserts",
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
	"with": true, "for": true, "to": true, "in": true, "on": true, "is": true,
	"it": true, "its": true, "this": true, "that": true, "like": true,
	"some": true, "very": true, "has": true, "looks": true, "similar": true,
}

// Normalize lowercases s, turns punctuation into whitespace and collapses
// runs of whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Canonicalize is Normalize plus domain canonicalization and truncation to
// MaxQueryLength. It is the exact text handed to the embedding service.
func Canonicalize(s string) string {
	words := strings.Fields(Normalize(s))
	for i, w := range words {
		if p, ok := plurals[w]; ok {
			words[i] = p
		}
	}
	return truncate(strings.Join(words, " "), MaxQueryLength)
}

// Tokens returns the meaningful words of s for title matching. Short words
// and stop words are dropped, duplicates removed.
func Tokens(s string) []string {
	seen := make(map[string]bool)
	tokens := make([]string, 0)
	for _, w := range strings.Fields(Normalize(s)) {
		if utf8.RuneCountInString(w) < 3 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}
