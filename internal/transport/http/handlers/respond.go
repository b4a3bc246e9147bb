package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	listingssvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/listings"
	matchessvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/matches"
	mediasvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/media"
	notificationssvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/notifications"
	swipesvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/swipes"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/storeerr"
	httperrors "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/errors"
)

const tempUnavailableRetrySec = 5

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeForbidden(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func writeConflict(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: code, Message: message})
}

// writeServiceError converts a service or store failure into its status code.
// fallback is the message used for unclassified failures.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	if rateErr, ok := matchessvc.IsTooManyRequests(err); ok {
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
			Code:          "TOO_MANY_REQUESTS",
			Message:       "too many interest requests",
			RetryAfterSec: rateErr.RetryAfter(),
		})
		return
	}
	if transition, ok := matchessvc.IsInvalidTransition(err); ok {
		httperrors.Write(w, http.StatusConflict, httperrors.TransitionError{
			Code:          "INVALID_TRANSITION",
			Message:       fmt.Sprintf("match is already %s", transition.From),
			CurrentStatus: string(transition.From),
		})
		return
	}
	if transition, ok := listingssvc.IsStatusTransition(err); ok {
		httperrors.Write(w, http.StatusConflict, httperrors.TransitionError{
			Code:          "INVALID_TRANSITION",
			Message:       fmt.Sprintf("listing cannot move from %s to %s", transition.From, transition.To),
			CurrentStatus: string(transition.From),
		})
		return
	}

	switch {
	case errors.Is(err, listingssvc.ErrListingClosed):
		httperrors.Write(w, http.StatusConflict, httperrors.TransitionError{
			Code:          "INVALID_TRANSITION",
			Message:       "completed listings cannot be edited",
			CurrentStatus: "completed",
		})
	case errors.Is(err, matchessvc.ErrDecisionInFlight):
		writeConflict(w, "DECISION_IN_FLIGHT", "a decision on this match is already in progress")
	case errors.Is(err, matchessvc.ErrListingUnavailable):
		writeConflict(w, "LISTING_UNAVAILABLE", "listing is not open for interest")
	case errors.Is(err, matchessvc.ErrOwnListing):
		writeConflict(w, "OWN_LISTING", "cannot express interest in own listing")
	case errors.Is(err, swipesvc.ErrCardBusy):
		writeConflict(w, "DECISION_IN_FLIGHT", "card action already in progress")
	case errors.Is(err, mediasvc.ErrTooLarge):
		writeBadRequest(w, "VALIDATION_ERROR", "file is too large")
	case errors.Is(err, mediasvc.ErrUnsupportedType):
		writeBadRequest(w, "VALIDATION_ERROR", "only image and video files are accepted")
	case errors.Is(err, matchessvc.ErrValidation),
		errors.Is(err, listingssvc.ErrValidation),
		errors.Is(err, mediasvc.ErrValidation),
		errors.Is(err, swipesvc.ErrValidation),
		errors.Is(err, notificationssvc.ErrValidation),
		errors.Is(err, storeerr.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", validationMessage(err))
	case errors.Is(err, storeerr.ErrNotFound), errors.Is(err, swipesvc.ErrCardNotFound):
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: "NOT_FOUND", Message: "resource not found"})
	case errors.Is(err, storeerr.ErrPermissionDenied):
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: "PERMISSION_DENIED", Message: "not allowed to change this resource"})
	case errors.Is(err, storeerr.ErrConflict):
		writeConflict(w, "CONFLICT", "resource was changed concurrently")
	case errors.Is(err, storeerr.ErrTransient):
		httperrors.Write(w, http.StatusServiceUnavailable, httperrors.RateLimitError{
			Code:          "TEMP_UNAVAILABLE",
			Message:       "storage is temporarily unavailable",
			RetryAfterSec: tempUnavailableRetrySec,
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}

// validationMessage drops the sentinel prefix so clients see the field problem.
func validationMessage(err error) string {
	const prefix = "validation error: "
	if msg := err.Error(); strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return "invalid request"
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	if r == nil {
		return uuid.Nil, false
	}
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
