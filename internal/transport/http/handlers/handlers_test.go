package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/repo/memory"
	redrepo "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/repo/redis"
	authsvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/auth"
	listingssvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/listings"
	matchessvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/matches"
	mediasvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/media"
	notificationssvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/notifications"
	ratesvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/rate"
	swipesvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/swipes"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/storeerr"
)

type fixture struct {
	store   *memory.Store
	router  chi.Router
	owner   uuid.UUID
	brand   uuid.UUID
	storage *storageStub
}

func newFixture(t *testing.T, limiter matchessvc.RateLimiter) *fixture {
	t.Helper()

	store := memory.NewStore()
	matches := matchessvc.NewService(matchessvc.Dependencies{
		Listings:    store,
		Matches:     store,
		RateLimiter: limiter,
	})
	listings := listingssvc.NewService(listingssvc.Dependencies{
		Store:      store,
		Categories: store,
	}, listingssvc.Config{})
	swipes := swipesvc.NewService(swipesvc.Dependencies{Interest: matches})
	storage := &storageStub{}
	media := mediasvc.NewService(storage, mediasvc.Config{MaxBytes: 1 << 10, PublicBaseURL: "https://cdn.example.com"}, nil)
	notifications := notificationssvc.NewService(store, store)

	listingsHandler := NewListingsHandler(listings)
	matchesHandler := NewMatchesHandler(matches)
	swipeHandler := NewSwipeHandler(swipes)
	mediaHandler := NewMediaHandler(media)
	notificationsHandler := NewNotificationsHandler(notifications)

	r := chi.NewRouter()
	r.Get("/v1/categories", listingsHandler.Categories)
	r.Get("/v1/opportunities", listingsHandler.BrowseOpportunities)
	r.Post("/v1/opportunities", listingsHandler.CreateOpportunity)
	r.Post("/v1/posts", listingsHandler.CreatePost)
	r.Get("/v1/opportunities/{id}", listingsHandler.GetOpportunity)
	r.Patch("/v1/opportunities/{id}", listingsHandler.UpdateOpportunity)
	r.Post("/v1/opportunities/{id}/status", listingsHandler.SetOpportunityStatus)
	r.Delete("/v1/posts/{id}", listingsHandler.DeletePost)
	r.Get("/v1/me/posts", listingsHandler.MinePosts)
	r.Post("/v1/media", mediaHandler.Upload)
	r.Post("/v1/matches", matchesHandler.Interest)
	r.Post("/v1/matches/{id}/decision", matchesHandler.Decide)
	r.Get("/v1/matches/incoming", matchesHandler.Incoming)
	r.Post("/v1/swipes", swipeHandler.Handle)
	r.Get("/v1/notifications", notificationsHandler.Summary)

	return &fixture{
		store:   store,
		router:  r,
		owner:   uuid.New(),
		brand:   uuid.New(),
		storage: storage,
	}
}

func (f *fixture) visibleOpportunity(title string) model.Opportunity {
	return f.store.PutOpportunity(model.Opportunity{
		OwnerID:            f.owner,
		Title:              title,
		Status:             enums.ListingStatusActive,
		VerificationStatus: enums.VerificationStatusApproved,
	})
}

func (f *fixture) do(t *testing.T, method, path string, account uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	return f.doAs(t, method, path, authsvc.Identity{AccountID: account, Role: "user"}, body)
}

func (f *fixture) doAs(t *testing.T, method, path string, identity authsvc.Identity, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if identity.AccountID != uuid.Nil {
		req = req.WithContext(authsvc.WithIdentity(req.Context(), identity))
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

type errorBody struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	CurrentStatus string `json:"current_status"`
	RetryAfterSec int64  `json:"retry_after_sec"`
}

func TestInterestCreatedThenDuplicate(t *testing.T) {
	f := newFixture(t, nil)
	o := f.visibleOpportunity("Stadium banner")
	body := map[string]any{"listing_kind": "opportunity", "listing_id": o.ID}

	first := f.do(t, http.MethodPost, "/v1/matches", f.brand, body)
	if first.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d (%s)", first.Code, http.StatusCreated, first.Body.String())
	}
	var created struct {
		Match     model.Match `json:"match"`
		Duplicate bool        `json:"duplicate"`
	}
	decodeBody(t, first, &created)
	if created.Duplicate || created.Match.Status != enums.MatchStatusPending || created.Match.OwnerID != f.owner {
		t.Fatalf("unexpected match: %+v", created)
	}

	second := f.do(t, http.MethodPost, "/v1/matches", f.brand, body)
	if second.Code != http.StatusOK {
		t.Fatalf("unexpected status on duplicate: got %d want %d", second.Code, http.StatusOK)
	}
	var dup struct {
		Match     model.Match `json:"match"`
		Duplicate bool        `json:"duplicate"`
	}
	decodeBody(t, second, &dup)
	if !dup.Duplicate || dup.Match.ID != created.Match.ID {
		t.Fatalf("expected the existing match, got %+v", dup)
	}
}

func TestInterestErrors(t *testing.T) {
	f := newFixture(t, nil)
	visible := f.visibleOpportunity("visible")
	hidden := f.store.PutOpportunity(model.Opportunity{
		OwnerID:            f.owner,
		Title:              "pending review",
		Status:             enums.ListingStatusActive,
		VerificationStatus: enums.VerificationStatusPending,
	})

	tests := []struct {
		name    string
		account uuid.UUID
		body    any
		status  int
		code    string
	}{
		{name: "own listing", account: f.owner, body: map[string]any{"listing_kind": "opportunity", "listing_id": visible.ID}, status: http.StatusConflict, code: "OWN_LISTING"},
		{name: "hidden listing", account: f.brand, body: map[string]any{"listing_kind": "opportunity", "listing_id": hidden.ID}, status: http.StatusConflict, code: "LISTING_UNAVAILABLE"},
		{name: "missing listing", account: f.brand, body: map[string]any{"listing_kind": "post", "listing_id": uuid.New()}, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "bad kind", account: f.brand, body: map[string]any{"listing_kind": "banner", "listing_id": visible.ID}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "unknown field", account: f.brand, body: map[string]any{"listing_kind": "opportunity", "listing_id": visible.ID, "extra": 1}, status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "anonymous", account: uuid.Nil, body: map[string]any{"listing_kind": "opportunity", "listing_id": visible.ID}, status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := f.do(t, http.MethodPost, "/v1/matches", tc.account, tc.body)
			if rr.Code != tc.status {
				t.Fatalf("unexpected status: got %d want %d (%s)", rr.Code, tc.status, rr.Body.String())
			}
			var payload errorBody
			decodeBody(t, rr, &payload)
			if payload.Code != tc.code {
				t.Fatalf("unexpected code: got %q want %q", payload.Code, tc.code)
			}
		})
	}
}

func TestInterestRequiresSponsorRole(t *testing.T) {
	f := newFixture(t, nil)
	o := f.visibleOpportunity("Stadium banner")
	body := map[string]any{"listing_kind": "opportunity", "listing_id": o.ID, "offset": 150}

	tests := []struct {
		role   string
		path   string
		status int
	}{
		{role: authsvc.RoleCreator, path: "/v1/matches", status: http.StatusForbidden},
		{role: authsvc.RoleInfluencer, path: "/v1/swipes", status: http.StatusForbidden},
		{role: authsvc.RoleBrand, path: "/v1/swipes", status: http.StatusCreated},
	}
	for _, tc := range tests {
		payload := body
		if tc.path == "/v1/matches" {
			payload = map[string]any{"listing_kind": "opportunity", "listing_id": o.ID}
		}
		rr := f.doAs(t, http.MethodPost, tc.path, authsvc.Identity{AccountID: uuid.New(), Role: tc.role}, payload)
		if rr.Code != tc.status {
			t.Fatalf("%s on %s: got %d want %d (%s)", tc.role, tc.path, rr.Code, tc.status, rr.Body.String())
		}
	}

	incoming, _ := f.store.ListByOwner(context.Background(), f.owner)
	if len(incoming) != 1 {
		t.Fatalf("expected only the brand's match, got %d", len(incoming))
	}
}

func TestInterestRateLimitedReturnsRetryAfter(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer func() { _ = redisClient.Close() }()

	limiter := ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), 30, 2)
	f := newFixture(t, limiter)

	for i := 0; i < 2; i++ {
		o := f.visibleOpportunity(fmt.Sprintf("listing %d", i))
		rr := f.do(t, http.MethodPost, "/v1/matches", f.brand, map[string]any{"listing_kind": "opportunity", "listing_id": o.ID})
		if rr.Code != http.StatusCreated {
			t.Fatalf("request %d: unexpected status %d", i, rr.Code)
		}
	}

	o := f.visibleOpportunity("third")
	rr := f.do(t, http.MethodPost, "/v1/matches", f.brand, map[string]any{"listing_kind": "opportunity", "listing_id": o.ID})
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status on third interest: got %d want %d", rr.Code, http.StatusTooManyRequests)
	}
	var payload errorBody
	decodeBody(t, rr, &payload)
	if payload.Code != "TOO_MANY_REQUESTS" || payload.RetryAfterSec <= 0 || payload.RetryAfterSec > 10 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDecisionFlow(t *testing.T) {
	f := newFixture(t, nil)
	o := f.visibleOpportunity("Stadium banner")
	m, _, err := f.store.CreatePending(context.Background(), model.Match{ID: uuid.New(), Listing: o.Ref(), BrandID: f.brand, OwnerID: f.owner})
	if err != nil {
		t.Fatalf("seed match: %v", err)
	}
	path := "/v1/matches/" + m.ID.String() + "/decision"
	meetingAt := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

	if rr := f.do(t, http.MethodPost, path, f.brand, map[string]any{"outcome": "accepted"}); rr.Code != http.StatusForbidden {
		t.Fatalf("brand must not decide: got %d", rr.Code)
	}

	rr := f.do(t, http.MethodPost, path, f.owner, map[string]any{"outcome": "rejected", "meeting_at": meetingAt})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("meeting on reject: got %d want %d", rr.Code, http.StatusBadRequest)
	}

	rr = f.do(t, http.MethodPost, path, f.owner, map[string]any{
		"outcome":      "accepted",
		"meeting_at":   meetingAt,
		"meeting_link": "https://meet.example.com/abc",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("accept: got %d (%s)", rr.Code, rr.Body.String())
	}
	var accepted model.Match
	decodeBody(t, rr, &accepted)
	if accepted.Status != enums.MatchStatusAccepted || accepted.MeetingAt == nil || !accepted.MeetingAt.Equal(meetingAt) {
		t.Fatalf("unexpected accepted match: %+v", accepted)
	}

	rr = f.do(t, http.MethodPost, path, f.owner, map[string]any{"outcome": "rejected"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("second decision: got %d want %d", rr.Code, http.StatusConflict)
	}
	var payload errorBody
	decodeBody(t, rr, &payload)
	if payload.Code != "INVALID_TRANSITION" || payload.CurrentStatus != "accepted" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	if rr := f.do(t, http.MethodPost, "/v1/matches/not-a-uuid/decision", f.owner, map[string]any{"outcome": "accepted"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad id: got %d", rr.Code)
	}
}

func TestIncomingIsPartitioned(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		o := f.visibleOpportunity(fmt.Sprintf("listing %d", i))
		m, _, _ := f.store.CreatePending(ctx, model.Match{ID: uuid.New(), Listing: o.Ref(), BrandID: f.brand, OwnerID: f.owner})
		if i == 0 {
			_, _ = f.store.UpdateStatus(ctx, model.StatusChange{MatchID: m.ID, From: enums.MatchStatusPending, To: enums.MatchStatusRejected})
		}
	}

	rr := f.do(t, http.MethodGet, "/v1/matches/incoming", f.owner, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var payload struct {
		Pending   []model.Match `json:"pending"`
		Accepted  []model.Match `json:"accepted"`
		Rejected  []model.Match `json:"rejected"`
		Completed []model.Match `json:"completed"`
	}
	decodeBody(t, rr, &payload)
	if len(payload.Pending) != 2 || len(payload.Rejected) != 1 || len(payload.Accepted) != 0 || payload.Completed == nil {
		t.Fatalf("unexpected partition: %+v", payload)
	}
}

func TestSwipeInterpretsOffset(t *testing.T) {
	f := newFixture(t, nil)
	o := f.visibleOpportunity("Stadium banner")

	tests := []struct {
		name      string
		offset    float64
		status    int
		action    string
		duplicate bool
	}{
		{name: "within threshold", offset: 60, status: http.StatusOK, action: "none"},
		{name: "reject", offset: -150, status: http.StatusOK, action: "reject"},
		{name: "like", offset: 150, status: http.StatusCreated, action: "like"},
		{name: "like again", offset: 101, status: http.StatusOK, action: "like", duplicate: true},
	}

	for _, tc := range tests {
		rr := f.do(t, http.MethodPost, "/v1/swipes", f.brand, map[string]any{"listing_kind": "opportunity", "listing_id": o.ID, "offset": tc.offset})
		if rr.Code != tc.status {
			t.Fatalf("%s: unexpected status: got %d want %d (%s)", tc.name, rr.Code, tc.status, rr.Body.String())
		}
		var payload struct {
			Action    string       `json:"action"`
			Match     *model.Match `json:"match"`
			Duplicate bool         `json:"duplicate"`
		}
		decodeBody(t, rr, &payload)
		if payload.Action != tc.action || payload.Duplicate != tc.duplicate {
			t.Fatalf("%s: unexpected payload: %+v", tc.name, payload)
		}
		if (payload.Match != nil) != (tc.action == "like") {
			t.Fatalf("%s: match presence mismatch: %+v", tc.name, payload.Match)
		}
	}

	incoming, _ := f.store.ListByOwner(context.Background(), f.owner)
	if len(incoming) != 1 {
		t.Fatalf("expected exactly one match, got %d", len(incoming))
	}
}

func TestListingStatusAndPatch(t *testing.T) {
	f := newFixture(t, nil)
	o := f.visibleOpportunity("Stadium banner")
	statusPath := "/v1/opportunities/" + o.ID.String() + "/status"

	if rr := f.do(t, http.MethodPost, statusPath, f.brand, map[string]any{"status": "paused"}); rr.Code != http.StatusForbidden {
		t.Fatalf("non-owner pause: got %d want %d", rr.Code, http.StatusForbidden)
	}
	if rr := f.do(t, http.MethodPost, statusPath, f.owner, map[string]any{"status": "archived"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
	if rr := f.do(t, http.MethodPost, statusPath, f.owner, map[string]any{"status": "completed"}); rr.Code != http.StatusOK {
		t.Fatalf("complete: got %d (%s)", rr.Code, rr.Body.String())
	}

	rr := f.do(t, http.MethodPost, statusPath, f.owner, map[string]any{"status": "active"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("reopen: got %d want %d", rr.Code, http.StatusConflict)
	}
	var payload errorBody
	decodeBody(t, rr, &payload)
	if payload.Code != "INVALID_TRANSITION" || payload.CurrentStatus != "completed" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	rr = f.do(t, http.MethodPatch, "/v1/opportunities/"+o.ID.String(), f.owner, map[string]any{"title": "New title"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("edit completed listing: got %d want %d", rr.Code, http.StatusConflict)
	}
}

func TestCreateListings(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.do(t, http.MethodPost, "/v1/opportunities", f.owner, map[string]any{
		"title":       " Halftime show ",
		"location":    "Austin",
		"price_range": map[string]any{"min": 1000, "max": 5000},
		"media":       []string{"https://cdn.example.com/listings/a.jpg"},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create opportunity: got %d (%s)", rr.Code, rr.Body.String())
	}
	var created model.Opportunity
	decodeBody(t, rr, &created)
	if created.OwnerID != f.owner || created.Title != "Halftime show" || len(created.Media) != 1 {
		t.Fatalf("unexpected opportunity: %+v", created)
	}
	if created.Status != enums.ListingStatusActive || created.VerificationStatus != enums.VerificationStatusPending {
		t.Fatalf("new listing must be active and pending review: %+v", created)
	}

	if rr := f.do(t, http.MethodGet, "/v1/opportunities/"+created.ID.String(), f.brand, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("unreviewed listing visible to brands: got %d", rr.Code)
	}

	rr = f.do(t, http.MethodPost, "/v1/posts", f.owner, map[string]any{"title": "Unboxing reel", "hashtags": "#tech", "reach": 12000})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create post: got %d (%s)", rr.Code, rr.Body.String())
	}
	mine := f.do(t, http.MethodGet, "/v1/me/posts", f.owner, nil)
	var posts struct {
		Items []model.Post `json:"items"`
	}
	decodeBody(t, mine, &posts)
	if len(posts.Items) != 1 || posts.Items[0].Reach != 12000 || posts.Items[0].Hashtags != "#tech" {
		t.Fatalf("unexpected dashboard: %+v", posts.Items)
	}

	tests := []struct {
		name string
		path string
		body map[string]any
	}{
		{name: "missing title", path: "/v1/opportunities", body: map[string]any{"location": "Austin"}},
		{name: "blank title", path: "/v1/posts", body: map[string]any{"title": "   "}},
		{name: "reach on opportunity", path: "/v1/opportunities", body: map[string]any{"title": "x", "reach": 5}},
		{name: "unknown category", path: "/v1/opportunities", body: map[string]any{"title": "x", "category_id": uuid.New()}},
		{name: "unknown field", path: "/v1/posts", body: map[string]any{"title": "x", "status": "active"}},
	}
	for _, tc := range tests {
		if rr := f.do(t, http.MethodPost, tc.path, f.owner, tc.body); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: got %d want %d (%s)", tc.name, rr.Code, http.StatusBadRequest, rr.Body.String())
		}
	}
}

func TestPatchOpportunity(t *testing.T) {
	f := newFixture(t, nil)
	o := f.visibleOpportunity("Stadium banner")
	path := "/v1/opportunities/" + o.ID.String()

	rr := f.do(t, http.MethodPatch, path, f.owner, map[string]any{
		"title":       "  Courtside banner ",
		"price_range": map[string]any{"min": 100, "max": 500},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("patch: got %d (%s)", rr.Code, rr.Body.String())
	}
	var updated model.Opportunity
	decodeBody(t, rr, &updated)
	if updated.Title != "Courtside banner" || !updated.Price.Bounded() {
		t.Fatalf("unexpected listing: %+v", updated)
	}
	if updated.VerificationStatus != enums.VerificationStatusPending {
		t.Fatalf("edited listing must go back to review, got %s", updated.VerificationStatus)
	}

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "reversed price", body: map[string]any{"price_range": map[string]any{"min": 500, "max": 100}}},
		{name: "hashtags on opportunity", body: map[string]any{"hashtags": "#sport"}},
		{name: "relative media", body: map[string]any{"media": []string{"/tmp/a.jpg"}}},
		{name: "unknown field", body: map[string]any{"budget": 10}},
	}
	for _, tc := range tests {
		if rr := f.do(t, http.MethodPatch, path, f.owner, tc.body); rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: got %d want %d", tc.name, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestBrowseAndGetHideUnverifiedListings(t *testing.T) {
	f := newFixture(t, nil)
	f.visibleOpportunity("Stadium banner")
	f.visibleOpportunity("Jersey sleeve")
	hidden := f.store.PutOpportunity(model.Opportunity{
		OwnerID:            f.owner,
		Title:              "Stadium naming",
		Status:             enums.ListingStatusActive,
		VerificationStatus: enums.VerificationStatusRejected,
	})

	rr := f.do(t, http.MethodGet, "/v1/opportunities?q=stadium", f.brand, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("browse: got %d", rr.Code)
	}
	var payload struct {
		Items []model.Opportunity `json:"items"`
	}
	decodeBody(t, rr, &payload)
	if len(payload.Items) != 1 || payload.Items[0].Title != "Stadium banner" {
		t.Fatalf("unexpected browse result: %+v", payload.Items)
	}

	if rr := f.do(t, http.MethodGet, "/v1/opportunities/"+hidden.ID.String(), f.brand, nil); rr.Code != http.StatusNotFound {
		t.Fatalf("hidden listing for brand: got %d want %d", rr.Code, http.StatusNotFound)
	}
	if rr := f.do(t, http.MethodGet, "/v1/opportunities/"+hidden.ID.String(), f.owner, nil); rr.Code != http.StatusOK {
		t.Fatalf("hidden listing for owner: got %d want %d", rr.Code, http.StatusOK)
	}
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t, nil)
	p := f.store.PutPost(model.Post{OwnerID: f.owner, Title: "Reel", Status: enums.ListingStatusActive})

	if rr := f.do(t, http.MethodDelete, "/v1/posts/"+p.ID.String(), f.brand, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete: got %d", rr.Code)
	}
	if rr := f.do(t, http.MethodDelete, "/v1/posts/"+p.ID.String(), f.owner, nil); rr.Code != http.StatusOK {
		t.Fatalf("delete: got %d", rr.Code)
	}

	rr := f.do(t, http.MethodGet, "/v1/me/posts", f.owner, nil)
	var payload struct {
		Items []model.Post `json:"items"`
	}
	decodeBody(t, rr, &payload)
	if len(payload.Items) != 0 {
		t.Fatalf("expected no posts after delete, got %+v", payload.Items)
	}
}

func TestCategoriesAndNotifications(t *testing.T) {
	f := newFixture(t, nil)
	f.store.PutCategory(model.Category{Name: "Sports"})
	o := f.visibleOpportunity("Stadium banner")
	if _, _, err := f.store.CreatePending(context.Background(), model.Match{ID: uuid.New(), Listing: o.Ref(), BrandID: f.brand, OwnerID: f.owner}); err != nil {
		t.Fatalf("seed match: %v", err)
	}

	rr := f.do(t, http.MethodGet, "/v1/categories", f.brand, nil)
	var categories struct {
		Items []model.Category `json:"items"`
	}
	decodeBody(t, rr, &categories)
	if rr.Code != http.StatusOK || len(categories.Items) != 1 || categories.Items[0].Name != "Sports" {
		t.Fatalf("unexpected categories: %d %+v", rr.Code, categories.Items)
	}

	rr = f.do(t, http.MethodGet, "/v1/notifications", f.owner, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("notifications: got %d", rr.Code)
	}
	var summary notificationssvc.Summary
	decodeBody(t, rr, &summary)
	if summary.PendingIncoming != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestMediaUpload(t *testing.T) {
	f := newFixture(t, nil)

	rr := f.upload(t, "banner.webp", "image/webp", []byte("RIFF....WEBP"))
	if rr.Code != http.StatusOK {
		t.Fatalf("upload: got %d (%s)", rr.Code, rr.Body.String())
	}
	var payload struct {
		URL string `json:"url"`
		Key string `json:"key"`
	}
	decodeBody(t, rr, &payload)
	if payload.URL != "https://cdn.example.com/"+payload.Key || len(f.storage.keys) != 1 {
		t.Fatalf("unexpected upload: %+v stored=%v", payload, f.storage.keys)
	}

	if rr := f.upload(t, "notes.txt", "text/plain", []byte("hello")); rr.Code != http.StatusBadRequest {
		t.Fatalf("text upload: got %d want %d", rr.Code, http.StatusBadRequest)
	}
	if rr := f.upload(t, "huge.webp", "image/webp", bytes.Repeat([]byte("x"), 2<<10)); rr.Code != http.StatusBadRequest {
		t.Fatalf("oversized upload: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func (f *fixture) upload(t *testing.T, name, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{AccountID: f.owner}))
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestWriteServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "transient", err: storeerr.New(storeerr.KindTransient, "get match", errors.New("conn reset")), status: http.StatusServiceUnavailable, code: "TEMP_UNAVAILABLE"},
		{name: "store conflict", err: storeerr.Conflict("save listing"), status: http.StatusConflict, code: "CONFLICT"},
		{name: "store validation", err: storeerr.Validation("decode price", errors.New("bad json")), status: http.StatusBadRequest, code: "VALIDATION_ERROR"},
		{name: "in flight", err: matchessvc.ErrDecisionInFlight, status: http.StatusConflict, code: "DECISION_IN_FLIGHT"},
		{name: "rate limited", err: matchessvc.TooManyRequestsError{RetryAfterSec: 7}, status: http.StatusTooManyRequests, code: "TOO_MANY_REQUESTS"},
		{name: "unclassified", err: errors.New("boom"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeServiceError(rr, tc.err, "request failed")
			if rr.Code != tc.status {
				t.Fatalf("unexpected status: got %d want %d", rr.Code, tc.status)
			}
			var payload errorBody
			decodeBody(t, rr, &payload)
			if payload.Code != tc.code {
				t.Fatalf("unexpected code: got %q want %q", payload.Code, tc.code)
			}
			if tc.code == "INTERNAL_ERROR" && payload.Message != "request failed" {
				t.Fatalf("internal errors must not leak details, got %q", payload.Message)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	ok := NewHealthHandler(map[string]HealthCheck{"store": func(context.Context) error { return nil }})
	rr := httptest.NewRecorder()
	ok.Get(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("healthy: got %d", rr.Code)
	}

	down := NewHealthHandler(map[string]HealthCheck{"redis": func(context.Context) error { return errors.New("dial tcp") }})
	rr = httptest.NewRecorder()
	down.Get(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unhealthy: got %d", rr.Code)
	}
}

type storageStub struct {
	keys []string
}

func (s *storageStub) EnsureBucket(context.Context) error { return nil }

func (s *storageStub) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	s.keys = append(s.keys, key)
	return nil
}

func (s *storageStub) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example.com/" + key, nil
}

func (s *storageStub) Delete(context.Context, string) error { return nil }
