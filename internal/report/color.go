package report

import (
	"ledger/internal/core"

	"github.com/lucasb-eyer/go-colorful"
)

// topColorCategories is how many categories contribute to the blended color.
const topColorCategories = 3

// ColorFunc maps a category to a hex color like "#AABBCC". Returning a value
// that does not parse drops that category's contribution.
type ColorFunc func(category string) string

// WeightedCategoryColor blends the colors of the top 3 categories by total
// amount, each weighted by its share of overall spending, and averages
// channel-wise in RGB space.
//
// The result is normalized by the sum of the 3 weights actually used, not by
// 1: when the top 3 do not cover all spending the weights do not sum to 1,
// and the blend stays vivid instead of darkening toward black.
func WeightedCategoryColor(records []core.Record, colorOf ColorFunc, fallback string) string {
	if len(records) == 0 {
		return fallback
	}

	overall := TotalAmount(records)
	if !overall.IsPositive() {
		return fallback
	}

	top := TopCategories(records, topColorCategories)

	var r, g, b, totalWeight float64
	for _, ca := range top {
		c, err := colorful.Hex(colorOf(ca.Category))
		if err != nil {
			continue
		}
		weight, _ := ca.Amount.Div(overall).Float64()
		r += c.R * weight
		g += c.G * weight
		b += c.B * weight
		totalWeight += weight
	}
	if totalWeight == 0 {
		return fallback
	}

	blended := colorful.Color{R: r / totalWeight, G: g / totalWeight, B: b / totalWeight}
	return blended.Clamped().Hex()
}
