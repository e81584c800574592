package preference

import (
	"context"
	"regexp"
	"strings"
)

// Extractor pulls incidental preferences out of a user message. It is
// best effort: callers treat an error as "nothing extracted".
type Extractor interface {
	Extract(ctx context.Context, message string) (Bag, error)
}

type keywordGroup struct {
	value    string
	keywords []string
}

var flavorKeywords = []keywordGroup{
	{"fruity", []string{"fruity", "fruit", "fresh fruit", "tropical"}},
	{"sweet", []string{"sweet", "sugary", "candy"}},
	{"savory", []string{"savory", "salty"}},
	{"creamy", []string{"creamy", "cream", "rich"}},
	{"light", []string{"light", "airy", "fluffy"}},
	{"chocolate", []string{"chocolate", "chocolatey", "cocoa"}},
	{"nutty", []string{"nutty", "almond", "hazelnut", "pistachio"}},
	{"citrus", []string{"citrus", "lemon", "orange", "lime"}},
	{"berry", []string{"berry", "strawberry", "blueberry", "raspberry"}},
	{"matcha", []string{"matcha", "green tea"}},
	{"coffee", []string{"coffee", "espresso", "mocha"}},
	{"vanilla", []string{"vanilla"}},
	{"caramel", []string{"caramel", "toffee"}},
}

var dietaryKeywords = []keywordGroup{
	{"vegetarian", []string{"vegetarian", "veggie"}},
	{"vegan", []string{"vegan", "plant-based"}},
	{"gluten-free", []string{"gluten-free", "gluten free", "no gluten"}},
	{"dairy-free", []string{"dairy-free", "dairy free", "no dairy", "lactose free"}},
	{"nut-free", []string{"nut-free", "nut free", "no nuts"}},
	{"low-sugar", []string{"low sugar", "less sugar", "sugar-free"}},
}

var avoidKeywords = []keywordGroup{
	{"nuts", []string{"no nuts", "avoid nuts", "without nuts", "nut allergy"}},
	{"dairy", []string{"no dairy", "avoid dairy", "without dairy", "lactose intolerant"}},
	{"gluten", []string{"no gluten", "avoid gluten", "without gluten"}},
	{"eggs", []string{"no eggs", "avoid eggs", "without eggs"}},
	{"sugar", []string{"no sugar", "avoid sugar", "less sweet"}},
}

var categoryKeywords = []keywordGroup{
	{"pastry", []string{"pastry", "pastries", "baked goods"}},
	{"drink", []string{"drink", "drinks", "beverage", "beverages"}},
	{"cake", []string{"cake", "cakes"}},
	{"cookie", []string{"cookie", "cookies"}},
	{"dessert", []string{"dessert", "desserts"}},
}

var namePattern = regexp.MustCompile(`(?i)\b(?:my name is|call me)\s+([\p{L}][\p{L}'\-]*)`)

// KeywordExtractor matches the message against fixed keyword tables.
type KeywordExtractor struct{}

func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

func (e *KeywordExtractor) Extract(ctx context.Context, message string) (Bag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lower := strings.ToLower(message)
	bag := Bag{}

	for key, groups := range map[string][]keywordGroup{
		KeyFlavors:    flavorKeywords,
		KeyDietary:    dietaryKeywords,
		KeyAvoid:      avoidKeywords,
		KeyCategories: categoryKeywords,
	} {
		if found := matchGroups(lower, groups); len(found) > 0 {
			bag[key] = found
		}
	}

	if m := namePattern.FindStringSubmatch(message); m != nil {
		bag[KeyName] = m[1]
	}

	return bag, nil
}

func matchGroups(lower string, groups []keywordGroup) []string {
	var found []string
	for _, g := range groups {
		for _, k := range g.keywords {
			if strings.Contains(lower, k) {
				found = append(found, g.value)
				break
			}
		}
	}
	return found
}
