package handlers

import (
	"net/http"

	authsvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/auth"
	notificationssvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/notifications"
	httperrors "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/errors"
)

type NotificationsHandler struct {
	service *notificationssvc.Service
}

func NewNotificationsHandler(service *notificationssvc.Service) *NotificationsHandler {
	return &NotificationsHandler{service: service}
}

func (h *NotificationsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "NOTIFICATIONS_SERVICE_UNAVAILABLE", "notifications service is unavailable")
		return
	}

	summary, err := h.service.Summary(r.Context(), identity.AccountID)
	if err != nil {
		writeServiceError(w, err, "failed to load notifications")
		return
	}
	httperrors.Write(w, http.StatusOK, summary)
}
