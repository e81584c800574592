package mapper

import (
	"fmt"
	"strings"

	"yorkie-bakery-be/internal/dto"
	"yorkie-bakery-be/pkg/recommend/catalog"
	"yorkie-bakery-be/pkg/recommend/filter"
)

func FiltersFromDTO(d *dto.FiltersDTO) filter.Filters {
	if d == nil {
		return filter.Filters{}
	}
	f := filter.Filters{
		Origin:          trimmedOrNil(d.Origin),
		Category:        trimmedOrNil(d.Category),
		FlavorProfiles:  nonBlank(d.FlavorProfiles),
		DietaryFeatures: nonBlank(d.DietaryFeatures),
		PriceMin:        d.PriceMin,
		PriceMax:        d.PriceMax,
	}
	return f
}

func FiltersToDTO(f filter.Filters) dto.FiltersDTO {
	return dto.FiltersDTO{
		Origin:          f.Origin,
		Category:        f.Category,
		FlavorProfiles:  f.FlavorProfiles,
		DietaryFeatures: f.DietaryFeatures,
		PriceMin:        f.PriceMin,
		PriceMax:        f.PriceMax,
	}
}

func RankedItemToDTO(it catalog.RankedItem) dto.RankedItemResponse {
	return dto.RankedItemResponse{
		Id:              it.ID,
		Title:           it.Title,
		Origin:          it.Origin,
		Category:        it.Category,
		Price:           it.Price,
		Tags:            nonNil(it.Tags),
		FlavorProfiles:  nonNil(it.FlavorProfiles),
		DietaryFeatures: nonNil(it.DietaryFeatures),
		Distance:        it.Distance,
	}
}

func RankedItemsToDTO(items []catalog.RankedItem) []dto.RankedItemResponse {
	res := make([]dto.RankedItemResponse, 0, len(items))
	for _, it := range items {
		res = append(res, RankedItemToDTO(it))
	}
	return res
}

// FormatCandidates renders items one per line for the reply prompt.
func FormatCandidates(items []catalog.RankedItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		price := "N/A"
		if it.Price != nil {
			price = fmt.Sprintf("%.2f", *it.Price)
		}
		lines = append(lines, fmt.Sprintf("- %s ($%s) [origin=%s, category=%s, flavors=%s, diet=%s]",
			it.Title,
			price,
			orDash(it.Origin),
			orDash(it.Category),
			strings.Join(it.FlavorProfiles, ","),
			strings.Join(it.DietaryFeatures, ","),
		))
	}
	return strings.Join(lines, "\n")
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if v := strings.TrimSpace(s); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
