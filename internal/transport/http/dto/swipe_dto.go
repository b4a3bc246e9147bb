package dto

import (
	"github.com/google/uuid"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
)

type SwipeRequest struct {
	ListingKind string    `json:"listing_kind"`
	ListingID   uuid.UUID `json:"listing_id"`
	Offset      float64   `json:"offset"`
}

type SwipeResponse struct {
	Action    string       `json:"action"`
	Match     *model.Match `json:"match,omitempty"`
	Duplicate bool         `json:"duplicate"`
}
