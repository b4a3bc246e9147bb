package filters

import (
	"net/url"
	"strings"
)

// Criteria is the set of search filters a brand applies to the marketplace. Empty
// fields are inactive.
type Criteria struct {
	CategoryID string `json:"category,omitempty"`
	AdType     string `json:"type,omitempty"`
	PriceRange string `json:"price,omitempty"`
	Location   string `json:"location,omitempty"`
	Text       string `json:"q,omitempty"`
}

// Reset returns criteria with every filter cleared.
func Reset() Criteria {
	return Criteria{}
}

func (c Criteria) IsEmpty() bool {
	return c.normalized() == Criteria{}
}

func (c Criteria) normalized() Criteria {
	return Criteria{
		CategoryID: strings.TrimSpace(c.CategoryID),
		AdType:     strings.TrimSpace(c.AdType),
		PriceRange: strings.TrimSpace(c.PriceRange),
		Location:   strings.TrimSpace(c.Location),
		Text:       strings.TrimSpace(c.Text),
	}
}

// FromQuery reads criteria from request query parameters. "city" is the older name
// of the location filter; both feed the same criterion.
func FromQuery(q url.Values) Criteria {
	location := q.Get("location")
	if strings.TrimSpace(location) == "" {
		location = q.Get("city")
	}

	return Criteria{
		CategoryID: q.Get("category"),
		AdType:     q.Get("type"),
		PriceRange: q.Get("price"),
		Location:   location,
		Text:       q.Get("q"),
	}.normalized()
}
