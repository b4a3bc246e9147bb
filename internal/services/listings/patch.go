package listings

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/pkg/validate"
)

const maxMediaItems = 10

// Patch is a partial edit of a listing. Nil fields are left untouched; a price
// range with no bounds clears the price.
type Patch struct {
	Title       *string           `json:"title" validate:"omitempty,max=200"`
	Description *string           `json:"description" validate:"omitempty,max=5000"`
	Location    *string           `json:"location" validate:"omitempty,max=200"`
	AdType      *string           `json:"ad_type" validate:"omitempty,max=64"`
	Price       *model.PriceRange `json:"price_range"`
	Media       []string          `json:"media" validate:"omitempty,max=10"`
	CategoryID  *uuid.UUID        `json:"category_id"`
	Hashtags    *string           `json:"hashtags" validate:"omitempty,max=500"`
	Reach       *int64            `json:"reach" validate:"omitempty,min=0"`
}

func (p Patch) normalize() (Patch, error) {
	p.Title = trimmed(p.Title)
	p.Description = trimmed(p.Description)
	p.Location = trimmed(p.Location)
	p.AdType = trimmed(p.AdType)
	p.Hashtags = trimmed(p.Hashtags)

	if p.Title != nil && *p.Title == "" {
		return Patch{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if err := validate.Struct(p); err != nil {
		return Patch{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if p.Price != nil {
		if err := p.Price.Validate(); err != nil {
			return Patch{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if p.Media != nil {
		if len(p.Media) > maxMediaItems {
			return Patch{}, fmt.Errorf("%w: at most %d media items", ErrValidation, maxMediaItems)
		}
		media := make([]string, 0, len(p.Media))
		for _, item := range p.Media {
			media = append(media, strings.TrimSpace(item))
		}
		if err := model.ValidateMedia(media); err != nil {
			return Patch{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		p.Media = media
	}
	if p.CategoryID != nil && *p.CategoryID == uuid.Nil {
		return Patch{}, fmt.Errorf("%w: category_id is invalid", ErrValidation)
	}
	return p, nil
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Location == nil && p.AdType == nil &&
		p.Price == nil && p.Media == nil && p.CategoryID == nil && p.Hashtags == nil && p.Reach == nil
}

// editable points at the fields of one listing record that a patch may touch.
type editable struct {
	title        *string
	description  *string
	location     *string
	adType       *string
	price        **model.PriceRange
	media        *[]string
	categoryID   *uuid.UUID
	hashtags     *string
	reach        *int64
	verification *enums.VerificationStatus
	reason       **string
}

// apply writes the patch and reports whether any content changed. A content change
// sends the listing back to moderation.
func (p Patch) apply(e editable) bool {
	changed := false
	setString := func(dst *string, v *string) {
		if v != nil && dst != nil && *dst != *v {
			*dst = *v
			changed = true
		}
	}

	setString(e.title, p.Title)
	setString(e.description, p.Description)
	setString(e.location, p.Location)
	setString(e.adType, p.AdType)
	setString(e.hashtags, p.Hashtags)

	if p.Price != nil {
		var next *model.PriceRange
		if p.Price.Min != nil || p.Price.Max != nil {
			price := *p.Price
			next = &price
		}
		if !samePrice(*e.price, next) {
			*e.price = next
			changed = true
		}
	}
	if p.Media != nil && !sameStrings(*e.media, p.Media) {
		*e.media = append([]string{}, p.Media...)
		changed = true
	}
	if p.CategoryID != nil && *e.categoryID != *p.CategoryID {
		*e.categoryID = *p.CategoryID
		changed = true
	}
	if p.Reach != nil && e.reach != nil && *e.reach != *p.Reach {
		*e.reach = *p.Reach
		changed = true
	}

	if changed {
		*e.verification = enums.VerificationStatusPending
		*e.reason = nil
	}
	return changed
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	return &out
}

func samePrice(a, b *model.PriceRange) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return sameBound(a.Min, b.Min) && sameBound(a.Max, b.Max)
}

func sameBound(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
