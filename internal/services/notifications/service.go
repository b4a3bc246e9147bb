package notifications

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/storeerr"
)

var ErrValidation = errors.New("validation error")

type MatchStore interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Match, error)
	ListByBrand(ctx context.Context, brandID uuid.UUID) ([]model.Match, error)
}

type ListingStore interface {
	ListOpportunities(ctx context.Context, q model.ListingQuery) ([]model.Opportunity, error)
	ListPosts(ctx context.Context, q model.ListingQuery) ([]model.Post, error)
}

type Service struct {
	matches  MatchStore
	listings ListingStore
	now      func() time.Time
}

type Meeting struct {
	MatchID      uuid.UUID        `json:"match_id"`
	Listing      model.ListingRef `json:"listing"`
	ListingTitle string           `json:"listing_title"`
	MeetingAt    time.Time        `json:"meeting_at"`
	MeetingLink  *string          `json:"meeting_link,omitempty"`
}

type Verification struct {
	Listing         model.ListingRef         `json:"listing"`
	Title           string                   `json:"title"`
	Status          enums.VerificationStatus `json:"status"`
	RejectionReason *string                  `json:"rejection_reason,omitempty"`
}

// Summary feeds the dashboard banners of one account.
type Summary struct {
	PendingIncoming  int            `json:"pending_incoming"`
	UpcomingMeetings []Meeting      `json:"upcoming_meetings"`
	Verifications    []Verification `json:"verifications"`
}

func NewService(matches MatchStore, listings ListingStore) *Service {
	return &Service{
		matches:  matches,
		listings: listings,
		now:      time.Now,
	}
}

func (s *Service) Summary(ctx context.Context, accountID uuid.UUID) (Summary, error) {
	if accountID == uuid.Nil {
		return Summary{}, ErrValidation
	}
	if s.matches == nil || s.listings == nil {
		return Summary{}, fmt.Errorf("notifications dependencies are not configured")
	}

	incoming, err := storeerr.Value(ctx, "list owner matches", func(ctx context.Context) ([]model.Match, error) {
		return s.matches.ListByOwner(ctx, accountID)
	})
	if err != nil {
		return Summary{}, err
	}
	outgoing, err := storeerr.Value(ctx, "list brand matches", func(ctx context.Context) ([]model.Match, error) {
		return s.matches.ListByBrand(ctx, accountID)
	})
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		UpcomingMeetings: make([]Meeting, 0),
		Verifications:    make([]Verification, 0),
	}
	for _, m := range incoming {
		if m.Status == enums.MatchStatusPending {
			out.PendingIncoming++
		}
	}

	now := s.now().UTC()
	for _, m := range outgoing {
		if m.Status != enums.MatchStatusAccepted || m.MeetingAt == nil || !m.MeetingAt.After(now) {
			continue
		}
		out.UpcomingMeetings = append(out.UpcomingMeetings, Meeting{
			MatchID:      m.ID,
			Listing:      m.Listing,
			ListingTitle: m.ListingTitle,
			MeetingAt:    m.MeetingAt.UTC(),
			MeetingLink:  m.MeetingLink,
		})
	}
	sort.SliceStable(out.UpcomingMeetings, func(i, j int) bool {
		return out.UpcomingMeetings[i].MeetingAt.Before(out.UpcomingMeetings[j].MeetingAt)
	})

	query := model.ListingQuery{OwnerID: &accountID}
	opportunities, err := storeerr.Value(ctx, "list own opportunities", func(ctx context.Context) ([]model.Opportunity, error) {
		return s.listings.ListOpportunities(ctx, query)
	})
	if err != nil {
		return Summary{}, err
	}
	posts, err := storeerr.Value(ctx, "list own posts", func(ctx context.Context) ([]model.Post, error) {
		return s.listings.ListPosts(ctx, query)
	})
	if err != nil {
		return Summary{}, err
	}

	for _, o := range opportunities {
		out.Verifications = appendVerification(out.Verifications, o.Header())
	}
	for _, p := range posts {
		out.Verifications = appendVerification(out.Verifications, p.Header())
	}

	return out, nil
}

func appendVerification(items []Verification, h model.Listing) []Verification {
	if h.VerificationStatus == enums.VerificationStatusApproved {
		return items
	}
	v := Verification{
		Listing: h.Ref,
		Title:   h.Title,
		Status:  h.VerificationStatus,
	}
	if h.VerificationStatus == enums.VerificationStatusRejected {
		v.RejectionReason = h.RejectionReason
	}
	return append(items, v)
}
