package preference

import (
	"strings"
)

const recentlyViewedInContext = 3

// FormatForContext renders the bag as short lines for a completion prompt.
func FormatForContext(b Bag) string {
	if len(b) == 0 {
		return ""
	}

	var lines []string
	if name := b.String(KeyName); name != "" {
		lines = append(lines, "Customer name: "+name)
	}

	for _, f := range []struct {
		key   string
		label string
	}{
		{KeyFlavors, "Prefers flavors"},
		{KeyDietary, "Dietary needs"},
		{KeyAvoid, "Avoids"},
		{KeyCategories, "Interested in"},
	} {
		if l := b.List(f.key); len(l) > 0 {
			lines = append(lines, f.label+": "+strings.Join(l, ", "))
		}
	}

	if viewed := b.List(KeyLastViewed); len(viewed) > 0 {
		if len(viewed) > recentlyViewedInContext {
			viewed = viewed[len(viewed)-recentlyViewedInContext:]
		}
		lines = append(lines, "Recently viewed: "+strings.Join(viewed, ", "))
	}

	return strings.Join(lines, "\n")
}
