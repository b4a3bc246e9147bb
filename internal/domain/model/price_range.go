package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidPriceRange = errors.New("invalid price range")

// PriceRange is the sponsorship price band of a listing. Either bound may be absent.
type PriceRange struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func NewPriceRange(min, max float64) *PriceRange {
	return &PriceRange{Min: &min, Max: &max}
}

func (p PriceRange) Validate() error {
	if p.Min != nil && *p.Min < 0 {
		return fmt.Errorf("%w: min is negative", ErrInvalidPriceRange)
	}
	if p.Max != nil && *p.Max < 0 {
		return fmt.Errorf("%w: max is negative", ErrInvalidPriceRange)
	}
	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		return fmt.Errorf("%w: min is greater than max", ErrInvalidPriceRange)
	}
	return nil
}

// Bounded reports whether both bounds are present.
func (p *PriceRange) Bounded() bool {
	return p != nil && p.Min != nil && p.Max != nil
}

// DecodePriceRange decodes the JSON column stored by the backend. A null or empty
// column is a missing range, anything that is not an object of numbers is rejected.
func DecodePriceRange(raw []byte) (*PriceRange, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPriceRange, err)
	}
	for key := range fields {
		if key != "min" && key != "max" {
			return nil, fmt.Errorf("%w: unexpected field %q", ErrInvalidPriceRange, key)
		}
	}

	var out PriceRange
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPriceRange, err)
	}
	if out.Min == nil && out.Max == nil {
		return nil, nil
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func EncodePriceRange(p *PriceRange) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}
