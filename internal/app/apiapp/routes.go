package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	listingssvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/listings"
	matchessvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/matches"
	mediasvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/media"
	notificationssvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/notifications"
	swipesvc "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/services/swipes"
	httperrors "github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/errors"
	"github.com/SponsorStudio/SponsorStudio-WebApp-sub001/internal/transport/http/handlers"
)

type Dependencies struct {
	Verifier            TokenVerifier
	ListingService      *listingssvc.Service
	MatchService        *matchessvc.Service
	SwipeService        *swipesvc.Service
	MediaService        *mediasvc.Service
	NotificationService *notificationssvc.Service
	HealthChecks        map[string]handlers.HealthCheck
	Logger              *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)
	listingsHandler := handlers.NewListingsHandler(deps.ListingService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService)
	notificationsHandler := handlers.NewNotificationsHandler(deps.NotificationService)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: "NOT_FOUND", Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.Write(w, http.StatusMethodNotAllowed, httperrors.APIError{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Verifier, deps.Logger))

		r.Get("/categories", listingsHandler.Categories)

		r.Route("/opportunities", func(r chi.Router) {
			r.Get("/", listingsHandler.BrowseOpportunities)
			r.Post("/", listingsHandler.CreateOpportunity)
			r.Get("/{id}", listingsHandler.GetOpportunity)
			r.Patch("/{id}", listingsHandler.UpdateOpportunity)
			r.Delete("/{id}", listingsHandler.DeleteOpportunity)
			r.Post("/{id}/status", listingsHandler.SetOpportunityStatus)
		})
		r.Route("/posts", func(r chi.Router) {
			r.Get("/", listingsHandler.BrowsePosts)
			r.Post("/", listingsHandler.CreatePost)
			r.Get("/{id}", listingsHandler.GetPost)
			r.Patch("/{id}", listingsHandler.UpdatePost)
			r.Delete("/{id}", listingsHandler.DeletePost)
			r.Post("/{id}/status", listingsHandler.SetPostStatus)
		})
		r.Get("/me/opportunities", listingsHandler.MineOpportunities)
		r.Get("/me/posts", listingsHandler.MinePosts)

		r.Post("/media", mediaHandler.Upload)

		r.Route("/matches", func(r chi.Router) {
			r.Post("/", matchesHandler.Interest)
			r.Get("/incoming", matchesHandler.Incoming)
			r.Get("/outgoing", matchesHandler.Outgoing)
			r.Post("/{id}/decision", matchesHandler.Decide)
		})
		r.Post("/swipes", swipeHandler.Handle)

		r.Get("/notifications", notificationsHandler.Summary)
	})
}
