package core

import "math"

// defaultRatios is the built-in allocation table used when the user has not
// set any ratios. Keys are category names; values are percentages. Whatever
// share the matched defaults leave over is split evenly across the remaining
// categories.
var defaultRatios = map[string]float64{
	"Food":      30,
	"Transport": 15,
	"Shopping":  10,
}

// Distribute allocates a total budget across categories by percentage.
//
// ratios maps category ID to a percentage. When the ratios sum to more than
// 100 every allocation is scaled down proportionally; when they sum to less,
// the gap stays unallocated and categories without an explicit ratio get 0.
// When no ratios are set at all, the built-in default table applies by
// category name, with the leftover share split evenly across the categories
// the table does not mention.
//
// Each allocation is rounded independently, so the allocations are not
// guaranteed to sum back to the input total.
func Distribute(total int64, categories []Category, ratios map[string]float64) map[string]int64 {
	alloc := make(map[string]int64, len(categories))
	for _, cat := range categories {
		alloc[cat.ID] = 0
	}
	if total <= 0 {
		return alloc
	}

	var sum float64
	for _, pct := range ratios {
		if pct > 0 {
			sum += pct
		}
	}

	if sum == 0 {
		distributeDefaults(total, categories, alloc)
		return alloc
	}

	scale := 1.0
	if sum > 100 {
		scale = 100 / sum
	}
	for _, cat := range categories {
		pct := ratios[cat.ID]
		if pct <= 0 {
			continue
		}
		alloc[cat.ID] = int64(math.Round(float64(total) * pct / 100 * scale))
	}
	return alloc
}

func distributeDefaults(total int64, categories []Category, alloc map[string]int64) {
	remaining := 100.0
	var rest []Category
	for _, cat := range categories {
		pct, ok := defaultRatios[cat.Name]
		if !ok {
			rest = append(rest, cat)
			continue
		}
		alloc[cat.ID] = int64(math.Round(float64(total) * pct / 100))
		remaining -= pct
	}
	if len(rest) == 0 || remaining <= 0 {
		return
	}
	share := remaining / float64(len(rest))
	for _, cat := range rest {
		alloc[cat.ID] = int64(math.Round(float64(total) * share / 100))
	}
}

// RatioSum totals the user-entered percentages, for the "sums to 100%"
// feedback in the ratio form.
func RatioSum(ratios map[string]float64) float64 {
	var sum float64
	for _, pct := range ratios {
		sum += pct
	}
	return sum
}
