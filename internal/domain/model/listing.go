package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
)

// ListingRef points at an opportunity or an influencer post.
type ListingRef struct {
	Kind enums.ListingKind `json:"kind"`
	ID   uuid.UUID         `json:"id"`
}

// ListingFields is the projection of a listing that search filters look at.
type ListingFields struct {
	CategoryID uuid.UUID
	AdType     string
	Price      *PriceRange
	Location   string
	Text       []string
}

type Opportunity struct {
	ID                 uuid.UUID                `json:"id"`
	OwnerID            uuid.UUID                `json:"owner_id"`
	Title              string                   `json:"title"`
	Description        string                   `json:"description"`
	Location           string                   `json:"location"`
	AdType             string                   `json:"ad_type"`
	Price              *PriceRange              `json:"price_range,omitempty"`
	Media              []string                 `json:"media"`
	CategoryID         uuid.UUID                `json:"category_id"`
	Status             enums.ListingStatus      `json:"status"`
	VerificationStatus enums.VerificationStatus `json:"verification_status"`
	RejectionReason    *string                  `json:"rejection_reason,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

func (o Opportunity) Ref() ListingRef {
	return ListingRef{Kind: enums.ListingKindOpportunity, ID: o.ID}
}

func (o Opportunity) Fields() ListingFields {
	return ListingFields{
		CategoryID: o.CategoryID,
		AdType:     o.AdType,
		Price:      o.Price,
		Location:   o.Location,
		Text:       []string{o.Title, o.Description},
	}
}

// Post is the influencer-side analogue of an opportunity.
type Post struct {
	ID                 uuid.UUID                `json:"id"`
	OwnerID            uuid.UUID                `json:"owner_id"`
	Title              string                   `json:"title"`
	Description        string                   `json:"description"`
	Location           string                   `json:"location"`
	AdType             string                   `json:"ad_type"`
	Price              *PriceRange              `json:"price_range,omitempty"`
	Media              []string                 `json:"media"`
	Hashtags           string                   `json:"hashtags"`
	Reach              int64                    `json:"reach"`
	CategoryID         uuid.UUID                `json:"category_id"`
	Status             enums.ListingStatus      `json:"status"`
	VerificationStatus enums.VerificationStatus `json:"verification_status"`
	RejectionReason    *string                  `json:"rejection_reason,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

func (p Post) Ref() ListingRef {
	return ListingRef{Kind: enums.ListingKindPost, ID: p.ID}
}

func (p Post) Fields() ListingFields {
	return ListingFields{
		CategoryID: p.CategoryID,
		AdType:     p.AdType,
		Price:      p.Price,
		Location:   p.Location,
		Text:       []string{p.Title, p.Description, p.Hashtags},
	}
}

// Listing is the common header of opportunities and posts used by match and
// notification flows that do not care about the kind.
type Listing struct {
	Ref                ListingRef
	OwnerID            uuid.UUID
	Title              string
	Status             enums.ListingStatus
	VerificationStatus enums.VerificationStatus
	RejectionReason    *string
}

func (o Opportunity) Header() Listing {
	return Listing{
		Ref:                o.Ref(),
		OwnerID:            o.OwnerID,
		Title:              o.Title,
		Status:             o.Status,
		VerificationStatus: o.VerificationStatus,
		RejectionReason:    o.RejectionReason,
	}
}

func (p Post) Header() Listing {
	return Listing{
		Ref:                p.Ref(),
		OwnerID:            p.OwnerID,
		Title:              p.Title,
		Status:             p.Status,
		VerificationStatus: p.VerificationStatus,
		RejectionReason:    p.RejectionReason,
	}
}

// Visible reports whether brands can see the listing in the marketplace.
func (l Listing) Visible() bool {
	return l.Status == enums.ListingStatusActive && l.VerificationStatus == enums.VerificationStatusApproved
}

// ListingQuery is the store-side prefilter for listing lists. The full search
// predicate set is applied afterwards by the filters package.
type ListingQuery struct {
	OwnerID     *uuid.UUID
	CategoryID  *uuid.UUID
	VisibleOnly bool
	Limit       int
	Offset      int
}
