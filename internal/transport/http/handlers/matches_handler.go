package handlers

import (
	"net/http"

	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/enums"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/domain/model"
	authsvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/auth"
	matchessvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/matches"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/dto"
	httperrors "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

// Interest is the brand's like button. A repeated like returns the existing match
// with 200 instead of 201.
func (h *MatchesHandler) Interest(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if !identity.CanSponsor() {
		writeForbidden(w, "PERMISSION_DENIED", "only brand accounts can express interest")
		return
	}

	var req dto.InterestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	kind, ok := enums.ParseListingKind(req.ListingKind)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "listing_kind must be opportunity or post")
		return
	}

	res, err := h.service.RequestInterest(r.Context(), identity.AccountID, model.ListingRef{Kind: kind, ID: req.ListingID})
	if err != nil {
		writeServiceError(w, err, "failed to express interest")
		return
	}

	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	httperrors.Write(w, status, dto.InterestResponse{Match: res.Match, Duplicate: res.Duplicate})
}

func (h *MatchesHandler) Decide(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}
	matchID, ok := pathUUID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid match id")
		return
	}

	var req dto.DecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	updated, err := h.service.Decide(r.Context(), identity.AccountID, matchID, matchessvc.Decision{
		Outcome:     enums.MatchStatus(req.Outcome),
		MeetingAt:   req.MeetingAt,
		MeetingLink: req.MeetingLink,
		Notes:       req.Notes,
	})
	if err != nil {
		writeServiceError(w, err, "failed to record decision")
		return
	}
	httperrors.Write(w, http.StatusOK, updated)
}

func (h *MatchesHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	partition, err := h.service.ListIncoming(r.Context(), identity.AccountID)
	if err != nil {
		writeServiceError(w, err, "failed to load incoming matches")
		return
	}
	httperrors.Write(w, http.StatusOK, partitionResponse(partition))
}

func (h *MatchesHandler) Outgoing(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	partition, err := h.service.ListOutgoing(r.Context(), identity.AccountID)
	if err != nil {
		writeServiceError(w, err, "failed to load outgoing matches")
		return
	}
	httperrors.Write(w, http.StatusOK, partitionResponse(partition))
}

func (h *MatchesHandler) identity(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, false
	}
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return authsvc.Identity{}, false
	}
	return identity, true
}

func partitionResponse(p matchessvc.Partition) dto.MatchesPartitionResponse {
	return dto.MatchesPartitionResponse{
		Pending:   p.Pending,
		Accepted:  p.Accepted,
		Rejected:  p.Rejected,
		Completed: p.Completed,
	}
}
