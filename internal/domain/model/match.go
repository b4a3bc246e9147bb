package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
)

// Match is a brand's expression of interest in a listing. Meeting fields are only set
// once the match is accepted.
type Match struct {
	ID           uuid.UUID         `json:"id"`
	Listing      ListingRef        `json:"listing"`
	ListingTitle string            `json:"listing_title,omitempty"`
	BrandID      uuid.UUID         `json:"brand_id"`
	OwnerID      uuid.UUID         `json:"owner_id"`
	Status       enums.MatchStatus `json:"status"`
	MeetingAt    *time.Time        `json:"meeting_at,omitempty"`
	MeetingLink  *string           `json:"meeting_link,omitempty"`
	Notes        *string           `json:"notes,omitempty"`
	Brand        *Profile          `json:"brand,omitempty"`
	Owner        *Profile          `json:"owner,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// StatusChange is a conditional status update: it only applies while the match is
// still in From.
type StatusChange struct {
	MatchID     uuid.UUID
	From        enums.MatchStatus
	To          enums.MatchStatus
	MeetingAt   *time.Time
	MeetingLink *string
	Notes       *string
}
