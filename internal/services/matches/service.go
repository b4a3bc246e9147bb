package matches

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/pkg/validate"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/storeerr"
)

type ListingStore interface {
	GetListing(ctx context.Context, ref model.ListingRef) (model.Listing, error)
}

type MatchStore interface {
	// CreatePending inserts the match unless one already exists for the same brand
	// and listing, in which case the existing row is returned with created=false.
	CreatePending(ctx context.Context, m model.Match) (model.Match, bool, error)
	GetMatch(ctx context.Context, id uuid.UUID) (model.Match, error)
	// UpdateStatus applies the change only while the match is in change.From and
	// returns a storeerr conflict otherwise.
	UpdateStatus(ctx context.Context, change model.StatusChange) (model.Match, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Match, error)
	ListByBrand(ctx context.Context, brandID uuid.UUID) ([]model.Match, error)
}

type RateLimiter interface {
	AllowInterest(ctx context.Context, brandID uuid.UUID) (int64, bool, error)
}

type Dependencies struct {
	Listings    ListingStore
	Matches     MatchStore
	RateLimiter RateLimiter
	InFlight    InFlight
	Logger      *zap.Logger
}

type Service struct {
	listings    ListingStore
	matches     MatchStore
	rateLimiter RateLimiter
	inFlight    InFlight
	logger      *zap.Logger
}

type InterestResult struct {
	Match     model.Match
	Duplicate bool
}

// Decision is the owner's answer to a pending match. Meeting fields are only
// accepted together with an accepted outcome.
type Decision struct {
	Outcome     enums.MatchStatus `json:"outcome" validate:"required,oneof=accepted rejected"`
	MeetingAt   *time.Time        `json:"meeting_at"`
	MeetingLink *string           `json:"meeting_link" validate:"omitempty,max=2048"`
	Notes       *string           `json:"notes" validate:"omitempty,max=2000"`
}

func NewService(deps Dependencies) *Service {
	inFlight := deps.InFlight
	if inFlight == nil {
		inFlight = NewLocalInFlight()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		listings:    deps.Listings,
		matches:     deps.Matches,
		rateLimiter: deps.RateLimiter,
		inFlight:    inFlight,
		logger:      logger,
	}
}

func (s *Service) RequestInterest(ctx context.Context, brandID uuid.UUID, ref model.ListingRef) (InterestResult, error) {
	if brandID == uuid.Nil || ref.ID == uuid.Nil {
		return InterestResult{}, ErrValidation
	}
	if _, ok := enums.ParseListingKind(string(ref.Kind)); !ok {
		return InterestResult{}, ErrValidation
	}
	if s.listings == nil || s.matches == nil {
		return InterestResult{}, errDependencyNotWired
	}

	if err := s.checkRate(ctx, brandID); err != nil {
		return InterestResult{}, err
	}

	listing, err := storeerr.Value(ctx, "get listing", func(ctx context.Context) (model.Listing, error) {
		return s.listings.GetListing(ctx, ref)
	})
	if err != nil {
		return InterestResult{}, err
	}
	if listing.OwnerID == brandID {
		return InterestResult{}, ErrOwnListing
	}
	if !listing.Visible() {
		return InterestResult{}, ErrListingUnavailable
	}

	candidate := model.Match{
		ID:           uuid.New(),
		Listing:      ref,
		ListingTitle: listing.Title,
		BrandID:      brandID,
		OwnerID:      listing.OwnerID,
		Status:       enums.MatchStatusPending,
	}

	var (
		stored  model.Match
		created bool
	)
	if err := storeerr.Do(ctx, "create pending match", func(ctx context.Context) error {
		m, ok, err := s.matches.CreatePending(ctx, candidate)
		if err != nil {
			return err
		}
		stored, created = m, ok
		return nil
	}); err != nil {
		return InterestResult{}, err
	}

	if created {
		s.logger.Info("match interest created",
			zap.String("match_id", stored.ID.String()),
			zap.String("brand_id", brandID.String()),
			zap.String("listing_kind", string(ref.Kind)),
			zap.String("listing_id", ref.ID.String()),
		)
	}

	return InterestResult{Match: stored, Duplicate: !created}, nil
}

func (s *Service) Decide(ctx context.Context, actorID, matchID uuid.UUID, decision Decision) (model.Match, error) {
	if actorID == uuid.Nil || matchID == uuid.Nil {
		return model.Match{}, ErrValidation
	}
	decision, err := normalizeDecision(decision)
	if err != nil {
		return model.Match{}, err
	}
	if s.matches == nil {
		return model.Match{}, errDependencyNotWired
	}

	release, ok, err := s.inFlight.Acquire(ctx, matchID)
	if err != nil {
		return model.Match{}, fmt.Errorf("acquire decision guard: %w", err)
	}
	if !ok {
		return model.Match{}, ErrDecisionInFlight
	}
	defer release()

	current, err := s.getMatch(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	if current.OwnerID != actorID {
		return model.Match{}, storeerr.PermissionDenied("decide match")
	}
	if current.Status != enums.MatchStatusPending {
		return model.Match{}, InvalidTransitionError{MatchID: matchID, From: current.Status, To: decision.Outcome}
	}

	change := model.StatusChange{
		MatchID:     matchID,
		From:        enums.MatchStatusPending,
		To:          decision.Outcome,
		MeetingAt:   decision.MeetingAt,
		MeetingLink: decision.MeetingLink,
		Notes:       decision.Notes,
	}
	updated, err := storeerr.Value(ctx, "update match status", func(ctx context.Context) (model.Match, error) {
		return s.matches.UpdateStatus(ctx, change)
	})
	if err != nil {
		if errors.Is(err, storeerr.ErrConflict) {
			return model.Match{}, s.lostRace(ctx, matchID, decision.Outcome, err)
		}
		return model.Match{}, err
	}

	s.logger.Info("match decided",
		zap.String("match_id", matchID.String()),
		zap.String("status", string(updated.Status)),
		zap.Bool("meeting_scheduled", updated.MeetingAt != nil),
	)
	return updated, nil
}

// ListIncoming returns the matches on listings the owner published, grouped by status.
func (s *Service) ListIncoming(ctx context.Context, ownerID uuid.UUID) (Partition, error) {
	if ownerID == uuid.Nil {
		return Partition{}, ErrValidation
	}
	if s.matches == nil {
		return Partition{}, errDependencyNotWired
	}

	items, err := storeerr.Value(ctx, "list owner matches", func(ctx context.Context) ([]model.Match, error) {
		return s.matches.ListByOwner(ctx, ownerID)
	})
	if err != nil {
		return Partition{}, err
	}
	return PartitionMatches(items), nil
}

// ListOutgoing returns the matches the brand created, grouped by status.
func (s *Service) ListOutgoing(ctx context.Context, brandID uuid.UUID) (Partition, error) {
	if brandID == uuid.Nil {
		return Partition{}, ErrValidation
	}
	if s.matches == nil {
		return Partition{}, errDependencyNotWired
	}

	items, err := storeerr.Value(ctx, "list brand matches", func(ctx context.Context) ([]model.Match, error) {
		return s.matches.ListByBrand(ctx, brandID)
	})
	if err != nil {
		return Partition{}, err
	}
	return PartitionMatches(items), nil
}

func (s *Service) getMatch(ctx context.Context, matchID uuid.UUID) (model.Match, error) {
	return storeerr.Value(ctx, "get match", func(ctx context.Context) (model.Match, error) {
		return s.matches.GetMatch(ctx, matchID)
	})
}

// lostRace re-reads a match whose conditional update was rejected so the caller
// learns the status another actor wrote.
func (s *Service) lostRace(ctx context.Context, matchID uuid.UUID, to enums.MatchStatus, cause error) error {
	fresh, err := s.getMatch(ctx, matchID)
	if err != nil {
		return err
	}
	s.logger.Info("match decision lost race",
		zap.String("match_id", matchID.String()),
		zap.String("observed_status", string(fresh.Status)),
	)
	return InvalidTransitionError{MatchID: matchID, From: fresh.Status, To: to, Err: cause}
}

func (s *Service) checkRate(ctx context.Context, brandID uuid.UUID) error {
	if s.rateLimiter == nil {
		return nil
	}
	retryAfter, allowed, err := s.rateLimiter.AllowInterest(ctx, brandID)
	if err != nil {
		s.logger.Warn("interest rate limiter unavailable", zap.Error(err))
		return nil
	}
	if !allowed {
		return TooManyRequestsError{RetryAfterSec: retryAfter}
	}
	return nil
}

func normalizeDecision(d Decision) (Decision, error) {
	status, ok := enums.ParseMatchStatus(string(d.Outcome))
	if !ok {
		return Decision{}, ErrValidation
	}
	d.Outcome = status
	d.MeetingLink = trimmedOrNil(d.MeetingLink)
	d.Notes = trimmedOrNil(d.Notes)

	if err := validate.Struct(d); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if d.Outcome != enums.MatchStatusAccepted && (d.MeetingAt != nil || d.MeetingLink != nil) {
		return Decision{}, fmt.Errorf("%w: meeting details require an accepted outcome", ErrValidation)
	}
	if d.MeetingLink != nil && !webURL(*d.MeetingLink) {
		return Decision{}, fmt.Errorf("%w: meeting_link must be an absolute http(s) url", ErrValidation)
	}
	if d.MeetingAt != nil {
		at := d.MeetingAt.UTC()
		d.MeetingAt = &at
	}
	return d, nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func webURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
