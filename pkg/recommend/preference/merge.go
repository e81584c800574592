package preference

// Merge folds incoming into a copy of existing. Scalars overwrite. Lists
// keep the existing order and append unseen incoming values in incoming
// order, so repeating the same update is a no-op. Neither argument is
// modified.
func Merge(existing, incoming Bag) Bag {
	merged := existing.Clone()

	for key, value := range incoming {
		list, isList := asList(value)
		if !isList && listKeys[key] && value != nil {
			list, isList = []string{scalarText(value)}, true
		}
		if !isList {
			merged[key] = value
			continue
		}

		current := merged.List(key)
		union := appendUnique(current, list)
		if key == KeyLastViewed {
			union = capRecent(union, current, list, MaxLastViewed)
		}
		merged[key] = union
	}

	return merged
}

func appendUnique(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	seen := make(map[string]struct{}, len(out))
	for _, s := range out {
		seen[s] = struct{}{}
	}
	for _, s := range extra {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// capRecent trims union to limit entries. Incoming values are the most
// recent and are kept first (the last limit of them when there are more).
// Remaining slots go to the newest existing values. The survivors keep
// their position in union.
func capRecent(union, existing, incoming []string, limit int) []string {
	if len(union) <= limit {
		return union
	}

	fresh := dedupe(incoming)
	if len(fresh) > limit {
		fresh = fresh[len(fresh)-limit:]
	}

	keep := make(map[string]struct{}, limit)
	for _, s := range fresh {
		keep[s] = struct{}{}
	}
	for i := len(existing) - 1; i >= 0 && len(keep) < limit; i-- {
		keep[existing[i]] = struct{}{}
	}

	out := make([]string, 0, limit)
	for _, s := range union {
		if _, ok := keep[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
