// Package filters decides which listings satisfy a brand's search criteria.
package filters

import (
	"strings"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
)

type Filterable interface {
	Fields() model.ListingFields
}

// Apply returns the items matching every active criterion, in input order. With no
// active criteria the input slice is returned as is.
func Apply[T Filterable](items []T, c Criteria) []T {
	m := newMatcher(c)
	if m.empty() {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if m.match(item.Fields()) {
			out = append(out, item)
		}
	}
	return out
}

// Match reports whether a single listing satisfies the criteria.
func Match(item Filterable, c Criteria) bool {
	return newMatcher(c).match(item.Fields())
}

type matcher struct {
	categoryID string
	adType     string
	price      priceBand
	hasPrice   bool
	location   string
	text       string
}

func newMatcher(c Criteria) matcher {
	c = c.normalized()
	band, ok := parsePriceBand(c.PriceRange)
	return matcher{
		categoryID: strings.ToLower(c.CategoryID),
		adType:     strings.ToLower(c.AdType),
		price:      band,
		hasPrice:   ok,
		location:   strings.ToLower(c.Location),
		text:       strings.ToLower(c.Text),
	}
}

func (m matcher) empty() bool {
	return m.categoryID == "" && m.adType == "" && !m.hasPrice && m.location == "" && m.text == ""
}

func (m matcher) match(f model.ListingFields) bool {
	if m.categoryID != "" && strings.ToLower(f.CategoryID.String()) != m.categoryID {
		return false
	}
	if m.adType != "" && strings.ToLower(strings.TrimSpace(f.AdType)) != m.adType {
		return false
	}
	if m.hasPrice && !m.price.contains(f.Price) {
		return false
	}
	if m.location != "" && !strings.Contains(strings.ToLower(f.Location), m.location) {
		return false
	}
	if m.text != "" && !anyContains(f.Text, m.text) {
		return false
	}
	return true
}

func anyContains(fields []string, needle string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
