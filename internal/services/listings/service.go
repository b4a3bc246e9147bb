package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/filters"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/storeerr"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrListingClosed = errors.New("listing is completed")
)

const (
	defaultBrowseLimit = 200
	defaultMineLimit   = 500
	defaultCategoryTTL = 10 * time.Minute
)

type Store interface {
	ListOpportunities(ctx context.Context, q model.ListingQuery) ([]model.Opportunity, error)
	ListPosts(ctx context.Context, q model.ListingQuery) ([]model.Post, error)
	GetOpportunity(ctx context.Context, id uuid.UUID) (model.Opportunity, error)
	GetPost(ctx context.Context, id uuid.UUID) (model.Post, error)
	// SaveOpportunity and SavePost overwrite the editable fields of a row owned by
	// the record's OwnerID.
	SaveOpportunity(ctx context.Context, o model.Opportunity) (model.Opportunity, error)
	SavePost(ctx context.Context, p model.Post) (model.Post, error)
	CreateOpportunity(ctx context.Context, o model.Opportunity) (model.Opportunity, error)
	CreatePost(ctx context.Context, p model.Post) (model.Post, error)
	DeleteListing(ctx context.Context, ownerID uuid.UUID, ref model.ListingRef) error
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type CategoryCache interface {
	GetCategories(ctx context.Context) ([]model.Category, bool, error)
	SetCategories(ctx context.Context, items []model.Category, ttl time.Duration) error
}

type Config struct {
	BrowseLimit int
	CategoryTTL time.Duration
}

type Dependencies struct {
	Store      Store
	Categories CategoryStore
	Cache      CategoryCache
	Logger     *zap.Logger
}

type Service struct {
	store      Store
	categories CategoryStore
	cache      CategoryCache
	cfg        Config
	logger     *zap.Logger
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.BrowseLimit <= 0 {
		cfg.BrowseLimit = defaultBrowseLimit
	}
	if cfg.CategoryTTL <= 0 {
		cfg.CategoryTTL = defaultCategoryTTL
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:      deps.Store,
		categories: deps.Categories,
		cache:      deps.Cache,
		cfg:        cfg,
		logger:     logger,
	}
}

// BrowseOpportunities lists the marketplace: visible listings only, narrowed by the
// store on category and then by the full filter set. At most BrowseLimit matches
// are returned, newest first.
func (s *Service) BrowseOpportunities(ctx context.Context, c filters.Criteria) ([]model.Opportunity, error) {
	if s.store == nil {
		return nil, fmt.Errorf("listings dependencies are not configured")
	}
	return browse(ctx, "list opportunities", s.store.ListOpportunities, s.browseQuery(c), c)
}

func (s *Service) BrowsePosts(ctx context.Context, c filters.Criteria) ([]model.Post, error) {
	if s.store == nil {
		return nil, fmt.Errorf("listings dependencies are not configured")
	}
	return browse(ctx, "list posts", s.store.ListPosts, s.browseQuery(c), c)
}

// MineOpportunities is the creator dashboard: every listing of the owner whatever
// its status or verification.
func (s *Service) MineOpportunities(ctx context.Context, ownerID uuid.UUID) ([]model.Opportunity, error) {
	if ownerID == uuid.Nil {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("listings dependencies are not configured")
	}
	return storeerr.Value(ctx, "list own opportunities", func(ctx context.Context) ([]model.Opportunity, error) {
		return s.store.ListOpportunities(ctx, model.ListingQuery{OwnerID: &ownerID, Limit: defaultMineLimit})
	})
}

func (s *Service) MinePosts(ctx context.Context, ownerID uuid.UUID) ([]model.Post, error) {
	if ownerID == uuid.Nil {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("listings dependencies are not configured")
	}
	return storeerr.Value(ctx, "list own posts", func(ctx context.Context) ([]model.Post, error) {
		return s.store.ListPosts(ctx, model.ListingQuery{OwnerID: &ownerID, Limit: defaultMineLimit})
	})
}

// GetOpportunity hides listings that are not visible from everyone but the owner.
func (s *Service) GetOpportunity(ctx context.Context, viewerID, id uuid.UUID) (model.Opportunity, error) {
	o, err := s.loadOpportunity(ctx, id)
	if err != nil {
		return model.Opportunity{}, err
	}
	if o.OwnerID != viewerID && !o.Header().Visible() {
		return model.Opportunity{}, storeerr.NotFound("get opportunity")
	}
	return o, nil
}

func (s *Service) GetPost(ctx context.Context, viewerID, id uuid.UUID) (model.Post, error) {
	p, err := s.loadPost(ctx, id)
	if err != nil {
		return model.Post{}, err
	}
	if p.OwnerID != viewerID && !p.Header().Visible() {
		return model.Post{}, storeerr.NotFound("get post")
	}
	return p, nil
}

// CreateOpportunity publishes a new listing of the owner. It starts active and waits
// for verification before brands can see it.
func (s *Service) CreateOpportunity(ctx context.Context, ownerID uuid.UUID, draft Patch) (model.Opportunity, error) {
	if draft.Hashtags != nil || draft.Reach != nil {
		return model.Opportunity{}, fmt.Errorf("%w: hashtags and reach apply to posts only", ErrValidation)
	}
	draft, err := s.prepareDraft(ctx, ownerID, draft)
	if err != nil {
		return model.Opportunity{}, err
	}

	o := model.Opportunity{ID: uuid.New(), OwnerID: ownerID, Media: []string{}}
	draft.apply(editable{
		title:        &o.Title,
		description:  &o.Description,
		location:     &o.Location,
		adType:       &o.AdType,
		price:        &o.Price,
		media:        &o.Media,
		categoryID:   &o.CategoryID,
		verification: &o.VerificationStatus,
		reason:       &o.RejectionReason,
	})
	o.Status = enums.ListingStatusActive
	o.VerificationStatus = enums.VerificationStatusPending

	saved, err := storeerr.Value(ctx, "create opportunity", func(ctx context.Context) (model.Opportunity, error) {
		return s.store.CreateOpportunity(ctx, o)
	})
	if err != nil {
		return model.Opportunity{}, err
	}
	s.logger.Info("listing created", zap.String("kind", string(enums.ListingKindOpportunity)), zap.String("listing_id", saved.ID.String()))
	return saved, nil
}

func (s *Service) CreatePost(ctx context.Context, ownerID uuid.UUID, draft Patch) (model.Post, error) {
	draft, err := s.prepareDraft(ctx, ownerID, draft)
	if err != nil {
		return model.Post{}, err
	}

	p := model.Post{ID: uuid.New(), OwnerID: ownerID, Media: []string{}}
	draft.apply(editable{
		title:        &p.Title,
		description:  &p.Description,
		location:     &p.Location,
		adType:       &p.AdType,
		price:        &p.Price,
		media:        &p.Media,
		categoryID:   &p.CategoryID,
		hashtags:     &p.Hashtags,
		reach:        &p.Reach,
		verification: &p.VerificationStatus,
		reason:       &p.RejectionReason,
	})
	p.Status = enums.ListingStatusActive
	p.VerificationStatus = enums.VerificationStatusPending

	saved, err := storeerr.Value(ctx, "create post", func(ctx context.Context) (model.Post, error) {
		return s.store.CreatePost(ctx, p)
	})
	if err != nil {
		return model.Post{}, err
	}
	s.logger.Info("listing created", zap.String("kind", string(enums.ListingKindPost)), zap.String("listing_id", saved.ID.String()))
	return saved, nil
}

func (s *Service) UpdateOpportunity(ctx context.Context, ownerID, id uuid.UUID, patch Patch) (model.Opportunity, error) {
	if patch.Hashtags != nil || patch.Reach != nil {
		return model.Opportunity{}, fmt.Errorf("%w: hashtags and reach apply to posts only", ErrValidation)
	}
	patch, err := s.preparePatch(ctx, ownerID, patch)
	if err != nil {
		return model.Opportunity{}, err
	}

	o, err := s.ownedOpportunity(ctx, ownerID, id)
	if err != nil {
		return model.Opportunity{}, err
	}
	if o.Status == enums.ListingStatusCompleted {
		return model.Opportunity{}, ErrListingClosed
	}
	if !patch.apply(editable{
		title:        &o.Title,
		description:  &o.Description,
		location:     &o.Location,
		adType:       &o.AdType,
		price:        &o.Price,
		media:        &o.Media,
		categoryID:   &o.CategoryID,
		verification: &o.VerificationStatus,
		reason:       &o.RejectionReason,
	}) {
		return o, nil
	}

	saved, err := storeerr.Value(ctx, "save opportunity", func(ctx context.Context) (model.Opportunity, error) {
		return s.store.SaveOpportunity(ctx, o)
	})
	if err != nil {
		return model.Opportunity{}, err
	}
	s.logger.Info("listing updated", zap.String("kind", string(enums.ListingKindOpportunity)), zap.String("listing_id", id.String()))
	return saved, nil
}

func (s *Service) UpdatePost(ctx context.Context, ownerID, id uuid.UUID, patch Patch) (model.Post, error) {
	patch, err := s.preparePatch(ctx, ownerID, patch)
	if err != nil {
		return model.Post{}, err
	}

	p, err := s.ownedPost(ctx, ownerID, id)
	if err != nil {
		return model.Post{}, err
	}
	if p.Status == enums.ListingStatusCompleted {
		return model.Post{}, ErrListingClosed
	}
	if !patch.apply(editable{
		title:        &p.Title,
		description:  &p.Description,
		location:     &p.Location,
		adType:       &p.AdType,
		price:        &p.Price,
		media:        &p.Media,
		categoryID:   &p.CategoryID,
		hashtags:     &p.Hashtags,
		reach:        &p.Reach,
		verification: &p.VerificationStatus,
		reason:       &p.RejectionReason,
	}) {
		return p, nil
	}

	saved, err := storeerr.Value(ctx, "save post", func(ctx context.Context) (model.Post, error) {
		return s.store.SavePost(ctx, p)
	})
	if err != nil {
		return model.Post{}, err
	}
	s.logger.Info("listing updated", zap.String("kind", string(enums.ListingKindPost)), zap.String("listing_id", id.String()))
	return saved, nil
}

// SetOpportunityStatus pauses, resumes or completes a listing. Status changes keep
// the verification state.
func (s *Service) SetOpportunityStatus(ctx context.Context, ownerID, id uuid.UUID, to enums.ListingStatus) (model.Opportunity, error) {
	if !to.Valid() {
		return model.Opportunity{}, ErrValidation
	}
	o, err := s.ownedOpportunity(ctx, ownerID, id)
	if err != nil {
		return model.Opportunity{}, err
	}
	if o.Status == to {
		return o, nil
	}
	if !CanTransition(o.Status, to) {
		return model.Opportunity{}, StatusTransitionError{From: o.Status, To: to}
	}
	o.Status = to

	saved, err := storeerr.Value(ctx, "save opportunity", func(ctx context.Context) (model.Opportunity, error) {
		return s.store.SaveOpportunity(ctx, o)
	})
	if err != nil {
		return model.Opportunity{}, err
	}
	s.logStatus(o.Ref(), to)
	return saved, nil
}

func (s *Service) SetPostStatus(ctx context.Context, ownerID, id uuid.UUID, to enums.ListingStatus) (model.Post, error) {
	if !to.Valid() {
		return model.Post{}, ErrValidation
	}
	p, err := s.ownedPost(ctx, ownerID, id)
	if err != nil {
		return model.Post{}, err
	}
	if p.Status == to {
		return p, nil
	}
	if !CanTransition(p.Status, to) {
		return model.Post{}, StatusTransitionError{From: p.Status, To: to}
	}
	p.Status = to

	saved, err := storeerr.Value(ctx, "save post", func(ctx context.Context) (model.Post, error) {
		return s.store.SavePost(ctx, p)
	})
	if err != nil {
		return model.Post{}, err
	}
	s.logStatus(p.Ref(), to)
	return saved, nil
}

func (s *Service) Delete(ctx context.Context, ownerID uuid.UUID, ref model.ListingRef) error {
	if ownerID == uuid.Nil || ref.ID == uuid.Nil {
		return ErrValidation
	}
	if _, ok := enums.ParseListingKind(string(ref.Kind)); !ok {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("listings dependencies are not configured")
	}

	if err := storeerr.Do(ctx, "delete listing", func(ctx context.Context) error {
		return s.store.DeleteListing(ctx, ownerID, ref)
	}); err != nil {
		return err
	}
	s.logger.Info("listing deleted", zap.String("kind", string(ref.Kind)), zap.String("listing_id", ref.ID.String()))
	return nil
}

// Categories serves the reference list from the cache when possible. Cache errors
// fall through to the store.
func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	if s.categories == nil {
		return nil, fmt.Errorf("listings dependencies are not configured")
	}

	if s.cache != nil {
		items, ok, err := s.cache.GetCategories(ctx)
		if err != nil {
			s.logger.Warn("categories cache read failed", zap.Error(err))
		} else if ok {
			return items, nil
		}
	}

	items, err := storeerr.Value(ctx, "list categories", s.categories.ListCategories)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Category{}
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, items, s.cfg.CategoryTTL); err != nil {
			s.logger.Warn("categories cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

type browsable interface {
	filters.Filterable
	Ref() model.ListingRef
}

// browse pages through the store prefilter until limit matches are collected or the
// store runs out. Rows shifted across pages by concurrent inserts are not repeated.
func browse[T browsable](
	ctx context.Context,
	op string,
	list func(context.Context, model.ListingQuery) ([]T, error),
	q model.ListingQuery,
	c filters.Criteria,
) ([]T, error) {
	limit := q.Limit
	out := make([]T, 0)
	seen := make(map[model.ListingRef]struct{})
	for {
		page, err := storeerr.Value(ctx, op, func(ctx context.Context) ([]T, error) {
			return list(ctx, q)
		})
		if err != nil {
			return nil, err
		}
		for _, item := range filters.Apply(page, c) {
			if _, dup := seen[item.Ref()]; dup {
				continue
			}
			seen[item.Ref()] = struct{}{}
			out = append(out, item)
			if len(out) == limit {
				return out, nil
			}
		}
		if q.Limit <= 0 || len(page) < q.Limit {
			return out, nil
		}
		q.Offset += len(page)
	}
}

func (s *Service) browseQuery(c filters.Criteria) model.ListingQuery {
	q := model.ListingQuery{VisibleOnly: true, Limit: s.cfg.BrowseLimit}
	if id, err := uuid.Parse(strings.TrimSpace(c.CategoryID)); err == nil {
		q.CategoryID = &id
	}
	return q
}

func (s *Service) preparePatch(ctx context.Context, ownerID uuid.UUID, patch Patch) (Patch, error) {
	if ownerID == uuid.Nil {
		return Patch{}, ErrValidation
	}
	if s.store == nil {
		return Patch{}, fmt.Errorf("listings dependencies are not configured")
	}

	patch, err := patch.normalize()
	if err != nil {
		return Patch{}, err
	}
	if patch.CategoryID != nil {
		if err := s.ensureCategory(ctx, *patch.CategoryID); err != nil {
			return Patch{}, err
		}
	}
	return patch, nil
}

func (s *Service) prepareDraft(ctx context.Context, ownerID uuid.UUID, draft Patch) (Patch, error) {
	if draft.Title == nil || strings.TrimSpace(*draft.Title) == "" {
		return Patch{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	return s.preparePatch(ctx, ownerID, draft)
}

func (s *Service) ensureCategory(ctx context.Context, id uuid.UUID) error {
	if s.categories == nil {
		return nil
	}
	items, err := s.Categories(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.ID == id {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown category", ErrValidation)
}

func (s *Service) loadOpportunity(ctx context.Context, id uuid.UUID) (model.Opportunity, error) {
	if id == uuid.Nil {
		return model.Opportunity{}, ErrValidation
	}
	if s.store == nil {
		return model.Opportunity{}, fmt.Errorf("listings dependencies are not configured")
	}
	return storeerr.Value(ctx, "get opportunity", func(ctx context.Context) (model.Opportunity, error) {
		return s.store.GetOpportunity(ctx, id)
	})
}

func (s *Service) loadPost(ctx context.Context, id uuid.UUID) (model.Post, error) {
	if id == uuid.Nil {
		return model.Post{}, ErrValidation
	}
	if s.store == nil {
		return model.Post{}, fmt.Errorf("listings dependencies are not configured")
	}
	return storeerr.Value(ctx, "get post", func(ctx context.Context) (model.Post, error) {
		return s.store.GetPost(ctx, id)
	})
}

func (s *Service) ownedOpportunity(ctx context.Context, ownerID, id uuid.UUID) (model.Opportunity, error) {
	if ownerID == uuid.Nil {
		return model.Opportunity{}, ErrValidation
	}
	o, err := s.loadOpportunity(ctx, id)
	if err != nil {
		return model.Opportunity{}, err
	}
	if o.OwnerID != ownerID {
		return model.Opportunity{}, storeerr.PermissionDenied("edit opportunity")
	}
	return o, nil
}

func (s *Service) ownedPost(ctx context.Context, ownerID, id uuid.UUID) (model.Post, error) {
	if ownerID == uuid.Nil {
		return model.Post{}, ErrValidation
	}
	p, err := s.loadPost(ctx, id)
	if err != nil {
		return model.Post{}, err
	}
	if p.OwnerID != ownerID {
		return model.Post{}, storeerr.PermissionDenied("edit post")
	}
	return p, nil
}

func (s *Service) logStatus(ref model.ListingRef, to enums.ListingStatus) {
	s.logger.Info("listing status changed",
		zap.String("kind", string(ref.Kind)),
		zap.String("listing_id", ref.ID.String()),
		zap.String("status", string(to)),
	)
}
