package filters

import (
	"math"
	"strconv"
	"strings"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
)

type priceBand struct {
	min float64
	max float64
}

// parsePriceBand parses "min-max" or "min-" (open above). Anything else means the
// filter places no constraint.
func parsePriceBand(raw string) (priceBand, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return priceBand{}, false
	}

	lo, hi, found := strings.Cut(raw, "-")
	if !found {
		return priceBand{}, false
	}

	min, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil || min < 0 || math.IsNaN(min) || math.IsInf(min, 0) {
		return priceBand{}, false
	}

	max := math.Inf(1)
	if hi = strings.TrimSpace(hi); hi != "" {
		max, err = strconv.ParseFloat(hi, 64)
		if err != nil || math.IsNaN(max) || max < min {
			return priceBand{}, false
		}
	}

	return priceBand{min: min, max: max}, true
}

// contains reports whether the listing's own band lies inside the filter band.
func (b priceBand) contains(p *model.PriceRange) bool {
	if !p.Bounded() {
		return false
	}
	return *p.Min >= b.min && *p.Max <= b.max
}
