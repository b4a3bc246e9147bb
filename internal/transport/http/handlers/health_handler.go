package handlers

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/errors"
)

type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if check == nil {
			continue
		}
		if err := check(ctx); err != nil {
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	httperrors.Write(w, status, struct {
		OK   bool              `json:"ok"`
		Deps map[string]string `json:"deps,omitempty"`
	}{
		OK:   status == http.StatusOK,
		Deps: deps,
	})
}
