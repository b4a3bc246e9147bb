// Package memory is an in-process implementation of the listing, match and
// category stores. It backs local runs without Postgres and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/storeerr"
)

type Store struct {
	mu            sync.RWMutex
	opportunities map[uuid.UUID]model.Opportunity
	posts         map[uuid.UUID]model.Post
	categories    []model.Category
	profiles      map[uuid.UUID]model.Profile
	matches       map[uuid.UUID]model.Match
	seq           map[uuid.UUID]int64
	nextSeq       int64
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		opportunities: make(map[uuid.UUID]model.Opportunity),
		posts:         make(map[uuid.UUID]model.Post),
		profiles:      make(map[uuid.UUID]model.Profile),
		matches:       make(map[uuid.UUID]model.Match),
		seq:           make(map[uuid.UUID]int64),
		now:           time.Now,
	}
}

func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) PutOpportunity(o model.Opportunity) model.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now().UTC()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	s.opportunities[o.ID] = cloneOpportunity(o)
	s.touch(o.ID)
	return o
}

func (s *Store) PutPost(p model.Post) model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	s.posts[p.ID] = clonePost(p)
	s.touch(p.ID)
	return p
}

func (s *Store) PutCategory(c model.Category) model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.categories = append(s.categories, c)
	return c
}

func (s *Store) PutProfile(p model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.AccountID] = p
}

func (s *Store) ListCategories(_ context.Context) ([]model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := append([]model.Category(nil), s.categories...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListOpportunities(_ context.Context, q model.ListingQuery) ([]model.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Opportunity, 0, len(s.opportunities))
	for _, o := range s.opportunities {
		if keep(o.Header(), o.CategoryID, q) {
			out = append(out, cloneOpportunity(o))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return s.newer(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt) })
	return page(out, q.Offset, q.Limit), nil
}

func (s *Store) ListPosts(_ context.Context, q model.ListingQuery) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if keep(p.Header(), p.CategoryID, q) {
			out = append(out, clonePost(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return s.newer(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt) })
	return page(out, q.Offset, q.Limit), nil
}

func (s *Store) GetOpportunity(_ context.Context, id uuid.UUID) (model.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.opportunities[id]
	if !ok {
		return model.Opportunity{}, storeerr.NotFound("get opportunity")
	}
	return cloneOpportunity(o), nil
}

func (s *Store) GetPost(_ context.Context, id uuid.UUID) (model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return model.Post{}, storeerr.NotFound("get post")
	}
	return clonePost(p), nil
}

func (s *Store) GetListing(ctx context.Context, ref model.ListingRef) (model.Listing, error) {
	switch ref.Kind {
	case enums.ListingKindOpportunity:
		o, err := s.GetOpportunity(ctx, ref.ID)
		if err != nil {
			return model.Listing{}, err
		}
		return o.Header(), nil
	case enums.ListingKindPost:
		p, err := s.GetPost(ctx, ref.ID)
		if err != nil {
			return model.Listing{}, err
		}
		return p.Header(), nil
	default:
		return model.Listing{}, storeerr.NotFound("get listing")
	}
}

func (s *Store) SaveOpportunity(_ context.Context, o model.Opportunity) (model.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.opportunities[o.ID]
	if !ok {
		return model.Opportunity{}, storeerr.NotFound("save opportunity")
	}
	if existing.OwnerID != o.OwnerID {
		return model.Opportunity{}, storeerr.PermissionDenied("save opportunity")
	}
	o.CreatedAt = existing.CreatedAt
	o.UpdatedAt = s.now().UTC()
	s.opportunities[o.ID] = cloneOpportunity(o)
	return o, nil
}

func (s *Store) SavePost(_ context.Context, p model.Post) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[p.ID]
	if !ok {
		return model.Post{}, storeerr.NotFound("save post")
	}
	if existing.OwnerID != p.OwnerID {
		return model.Post{}, storeerr.PermissionDenied("save post")
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now().UTC()
	s.posts[p.ID] = clonePost(p)
	return p, nil
}

func (s *Store) CreateOpportunity(_ context.Context, o model.Opportunity) (model.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if _, ok := s.opportunities[o.ID]; ok {
		return model.Opportunity{}, storeerr.Conflict("create opportunity")
	}
	o.CreatedAt = s.now().UTC()
	o.UpdatedAt = o.CreatedAt
	s.opportunities[o.ID] = cloneOpportunity(o)
	s.touch(o.ID)
	return cloneOpportunity(o), nil
}

func (s *Store) CreatePost(_ context.Context, p model.Post) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, ok := s.posts[p.ID]; ok {
		return model.Post{}, storeerr.Conflict("create post")
	}
	p.CreatedAt = s.now().UTC()
	p.UpdatedAt = p.CreatedAt
	s.posts[p.ID] = clonePost(p)
	s.touch(p.ID)
	return clonePost(p), nil
}

func (s *Store) DeleteListing(_ context.Context, ownerID uuid.UUID, ref model.ListingRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owner uuid.UUID
	switch ref.Kind {
	case enums.ListingKindOpportunity:
		o, ok := s.opportunities[ref.ID]
		if !ok {
			return storeerr.NotFound("delete listing")
		}
		owner = o.OwnerID
	case enums.ListingKindPost:
		p, ok := s.posts[ref.ID]
		if !ok {
			return storeerr.NotFound("delete listing")
		}
		owner = p.OwnerID
	default:
		return storeerr.NotFound("delete listing")
	}
	if owner != ownerID {
		return storeerr.PermissionDenied("delete listing")
	}

	delete(s.opportunities, ref.ID)
	delete(s.posts, ref.ID)
	for id, m := range s.matches {
		if m.Listing == ref {
			delete(s.matches, id)
		}
	}
	return nil
}

func (s *Store) CreatePending(_ context.Context, m model.Match) (model.Match, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.matches {
		if existing.BrandID == m.BrandID && existing.Listing == m.Listing {
			return s.joined(existing), false, nil
		}
	}

	now := s.now().UTC()
	m.Status = enums.MatchStatusPending
	m.MeetingAt, m.MeetingLink, m.Notes = nil, nil, nil
	m.Brand, m.Owner = nil, nil
	m.CreatedAt = now
	m.UpdatedAt = now
	s.matches[m.ID] = m
	s.touch(m.ID)
	return s.joined(m), true, nil
}

func (s *Store) GetMatch(_ context.Context, id uuid.UUID) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return model.Match{}, storeerr.NotFound("get match")
	}
	return s.joined(m), nil
}

func (s *Store) UpdateStatus(_ context.Context, change model.StatusChange) (model.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[change.MatchID]
	if !ok {
		return model.Match{}, storeerr.NotFound("update match status")
	}
	if m.Status != change.From {
		return model.Match{}, storeerr.Conflict("update match status")
	}

	m.Status = change.To
	m.MeetingAt = change.MeetingAt
	m.MeetingLink = change.MeetingLink
	m.Notes = change.Notes
	m.UpdatedAt = s.now().UTC()
	s.matches[m.ID] = m
	return s.joined(m), nil
}

func (s *Store) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Match, error) {
	return s.listMatches(func(m model.Match) bool { return m.OwnerID == ownerID }), nil
}

func (s *Store) ListByBrand(_ context.Context, brandID uuid.UUID) ([]model.Match, error) {
	return s.listMatches(func(m model.Match) bool { return m.BrandID == brandID }), nil
}

func (s *Store) listMatches(pred func(model.Match) bool) []model.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Match, 0)
	for _, m := range s.matches {
		if pred(m) {
			out = append(out, s.joined(m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return s.newer(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt) })
	return out
}

// joined attaches profiles the same way the SQL store joins them. Caller holds the lock.
func (s *Store) joined(m model.Match) model.Match {
	if p, ok := s.profiles[m.BrandID]; ok {
		brand := p
		m.Brand = &brand
	}
	if p, ok := s.profiles[m.OwnerID]; ok {
		owner := p
		m.Owner = &owner
	}
	return m
}

func (s *Store) touch(id uuid.UUID) {
	s.nextSeq++
	s.seq[id] = s.nextSeq
}

// newer orders newest first; rows created in the same instant fall back to insertion order.
func (s *Store) newer(a uuid.UUID, aAt time.Time, b uuid.UUID, bAt time.Time) bool {
	if !aAt.Equal(bAt) {
		return aAt.After(bAt)
	}
	return s.seq[a] > s.seq[b]
}

func keep(h model.Listing, categoryID uuid.UUID, q model.ListingQuery) bool {
	if q.OwnerID != nil && h.OwnerID != *q.OwnerID {
		return false
	}
	if q.CategoryID != nil && categoryID != *q.CategoryID {
		return false
	}
	if q.VisibleOnly && !h.Visible() {
		return false
	}
	return true
}

func page[T any](items []T, offset, n int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func cloneOpportunity(o model.Opportunity) model.Opportunity {
	o.Media = append([]string{}, o.Media...)
	o.Price = clonePrice(o.Price)
	return o
}

func clonePost(p model.Post) model.Post {
	p.Media = append([]string{}, p.Media...)
	p.Price = clonePrice(p.Price)
	return p
}

func clonePrice(p *model.PriceRange) *model.PriceRange {
	if p == nil {
		return nil
	}
	out := model.PriceRange{}
	if p.Min != nil {
		v := *p.Min
		out.Min = &v
	}
	if p.Max != nil {
		v := *p.Max
		out.Max = &v
	}
	return &out
}
