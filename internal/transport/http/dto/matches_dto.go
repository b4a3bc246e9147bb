package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
)

type InterestRequest struct {
	ListingKind string    `json:"listing_kind"`
	ListingID   uuid.UUID `json:"listing_id"`
}

type InterestResponse struct {
	Match     model.Match `json:"match"`
	Duplicate bool        `json:"duplicate"`
}

type DecisionRequest struct {
	Outcome     string     `json:"outcome"`
	MeetingAt   *time.Time `json:"meeting_at"`
	MeetingLink *string    `json:"meeting_link"`
	Notes       *string    `json:"notes"`
}

// MatchesPartitionResponse groups a dashboard's matches by status.
type MatchesPartitionResponse struct {
	Pending   []model.Match `json:"pending"`
	Accepted  []model.Match `json:"accepted"`
	Rejected  []model.Match `json:"rejected"`
	Completed []model.Match `json:"completed"`
}
