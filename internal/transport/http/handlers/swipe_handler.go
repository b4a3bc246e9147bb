package handlers

import (
	"net/http"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	authsvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/auth"
	swipesvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/swipes"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/dto"
	httperrors "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	if !identity.CanSponsor() {
		writeForbidden(w, "PERMISSION_DENIED", "only brand accounts can express interest")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	kind, ok := enums.ParseListingKind(req.ListingKind)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "listing_kind must be opportunity or post")
		return
	}

	out, err := h.service.Swipe(r.Context(), identity.AccountID, model.ListingRef{Kind: kind, ID: req.ListingID}, req.Offset)
	if err != nil {
		writeServiceError(w, err, "failed to process swipe")
		return
	}

	status := http.StatusOK
	if out.Action == swipesvc.ActionLike && !out.Duplicate {
		status = http.StatusCreated
	}
	httperrors.Write(w, status, dto.SwipeResponse{
		Action:    string(out.Action),
		Match:     out.Match,
		Duplicate: out.Duplicate,
	})
}
