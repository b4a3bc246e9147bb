package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	authsvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/auth"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/filters"
	listingssvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/listings"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/dto"
	httperrors "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/errors"
)

type ListingsHandler struct {
	service *listingssvc.Service
}

func NewListingsHandler(service *listingssvc.Service) *ListingsHandler {
	return &ListingsHandler{service: service}
}

func (h *ListingsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.identity(w, r); !ok {
		return
	}

	items, err := h.service.Categories(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to load categories")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.CategoriesResponse{Items: items})
}

func (h *ListingsHandler) BrowseOpportunities(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.identity(w, r); !ok {
		return
	}

	items, err := h.service.BrowseOpportunities(r.Context(), filters.FromQuery(r.URL.Query()))
	if err != nil {
		writeServiceError(w, err, "failed to load opportunities")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OpportunitiesResponse{Items: items})
}

func (h *ListingsHandler) BrowsePosts(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.identity(w, r); !ok {
		return
	}

	items, err := h.service.BrowsePosts(r.Context(), filters.FromQuery(r.URL.Query()))
	if err != nil {
		writeServiceError(w, err, "failed to load posts")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.PostsResponse{Items: items})
}

func (h *ListingsHandler) MineOpportunities(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	items, err := h.service.MineOpportunities(r.Context(), identity.AccountID)
	if err != nil {
		writeServiceError(w, err, "failed to load opportunities")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OpportunitiesResponse{Items: items})
}

func (h *ListingsHandler) MinePosts(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	items, err := h.service.MinePosts(r.Context(), identity.AccountID)
	if err != nil {
		writeServiceError(w, err, "failed to load posts")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.PostsResponse{Items: items})
}

func (h *ListingsHandler) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	identity, id, ok := h.target(w, r)
	if !ok {
		return
	}

	item, err := h.service.GetOpportunity(r.Context(), identity.AccountID, id)
	if err != nil {
		writeServiceError(w, err, "failed to load opportunity")
		return
	}
	httperrors.Write(w, http.StatusOK, item)
}

func (h *ListingsHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	identity, id, ok := h.target(w, r)
	if !ok {
		return
	}

	item, err := h.service.GetPost(r.Context(), identity.AccountID, id)
	if err != nil {
		writeServiceError(w, err, "failed to load post")
		return
	}
	httperrors.Write(w, http.StatusOK, item)
}

func (h *ListingsHandler) CreateOpportunity(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	draft, ok := decodePatch(w, r)
	if !ok {
		return
	}

	item, err := h.service.CreateOpportunity(r.Context(), identity.AccountID, draft)
	if err != nil {
		writeServiceError(w, err, "failed to create opportunity")
		return
	}
	httperrors.Write(w, http.StatusCreated, item)
}

func (h *ListingsHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	draft, ok := decodePatch(w, r)
	if !ok {
		return
	}

	item, err := h.service.CreatePost(r.Context(), identity.AccountID, draft)
	if err != nil {
		writeServiceError(w, err, "failed to create post")
		return
	}
	httperrors.Write(w, http.StatusCreated, item)
}

func (h *ListingsHandler) UpdateOpportunity(w http.ResponseWriter, r *http.Request) {
	identity, id, ok := h.target(w, r)
	if !ok {
		return
	}
	patch, ok := decodePatch(w, r)
	if !ok {
		return
	}

	item, err := h.service.UpdateOpportunity(r.Context(), identity.AccountID, id, patch)
	if err != nil {
		writeServiceError(w, err, "failed to update opportunity")
		return
	}
	httperrors.Write(w, http.StatusOK, item)
}

func (h *ListingsHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	identity, id, ok := h.target(w, r)
	if !ok {
		return
	}
	patch, ok := decodePatch(w, r)
	if !ok {
		return
	}

	item, err := h.service.UpdatePost(r.Context(), identity.AccountID, id, patch)
	if err != nil {
		writeServiceError(w, err, "failed to update post")
		return
	}
	httperrors.Write(w, http.StatusOK, item)
}

func (h *ListingsHandler) SetOpportunityStatus(w http.ResponseWriter, r *http.Request) {
	identity, id, ok := h.target(w, r)
	if !ok {
		return
	}
	status, ok := decodeListingStatus(w, r)
	if !ok {
		return
	}

	item, err := h.service.SetOpportunityStatus(r.Context(), identity.AccountID, id, status)
	if err != nil {
		writeServiceError(w, err, "failed to change opportunity status")
		return
	}
	httperrors.Write(w, http.StatusOK, item)
}

func (h *ListingsHandler) SetPostStatus(w http.ResponseWriter, r *http.Request) {
	identity, id, ok := h.target(w, r)
	if !ok {
		return
	}
	status, ok := decodeListingStatus(w, r)
	if !ok {
		return
	}

	item, err := h.service.SetPostStatus(r.Context(), identity.AccountID, id, status)
	if err != nil {
		writeServiceError(w, err, "failed to change post status")
		return
	}
	httperrors.Write(w, http.StatusOK, item)
}

func (h *ListingsHandler) DeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, enums.ListingKindOpportunity)
}

func (h *ListingsHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	h.delete(w, r, enums.ListingKindPost)
}

func (h *ListingsHandler) delete(w http.ResponseWriter, r *http.Request, kind enums.ListingKind) {
	identity, id, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity.AccountID, model.ListingRef{Kind: kind, ID: id}); err != nil {
		writeServiceError(w, err, "failed to delete listing")
		return
	}
	httperrors.Write(w, http.StatusOK, dto.DeleteResponse{OK: true})
}

func (h *ListingsHandler) identity(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, false
	}
	if h.service == nil {
		writeInternal(w, "LISTINGS_SERVICE_UNAVAILABLE", "listings service is unavailable")
		return authsvc.Identity{}, false
	}
	return identity, true
}

func (h *ListingsHandler) target(w http.ResponseWriter, r *http.Request) (authsvc.Identity, uuid.UUID, bool) {
	identity, ok := h.identity(w, r)
	if !ok {
		return authsvc.Identity{}, uuid.Nil, false
	}
	id, ok := pathUUID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid listing id")
		return authsvc.Identity{}, uuid.Nil, false
	}
	return identity, id, true
}

func decodePatch(w http.ResponseWriter, r *http.Request) (listingssvc.Patch, bool) {
	var patch listingssvc.Patch
	if err := decodeJSON(r, &patch); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return listingssvc.Patch{}, false
	}
	return patch, true
}

func decodeListingStatus(w http.ResponseWriter, r *http.Request) (enums.ListingStatus, bool) {
	var req dto.ListingStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return "", false
	}
	status := enums.ListingStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		writeBadRequest(w, "VALIDATION_ERROR", "status must be active, paused or completed")
		return "", false
	}
	return status, true
}
