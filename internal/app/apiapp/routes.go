package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unicrossed/backend/internal/config"
	authsvc "github.com/unicrossed/backend/internal/services/auth"
	discoverysvc "github.com/unicrossed/backend/internal/services/discovery"
	interactionsvc "github.com/unicrossed/backend/internal/services/interactions"
	linkssvc "github.com/unicrossed/backend/internal/services/links"
	httperrors "github.com/unicrossed/backend/internal/transport/http/errors"
	"github.com/unicrossed/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService        *authsvc.Service
	DiscoveryService   *discoverysvc.Service
	InteractionService *interactionsvc.Service
	LinksService       *linkssvc.Service
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	healthHandler := handlers.NewHealthHandler()
	discoveryHandler := handlers.NewDiscoveryHandler(deps.DiscoveryService, deps.Logger)
	interactionHandler := handlers.NewInteractionHandler(deps.InteractionService, deps.Logger)
	linksHandler := handlers.NewLinksHandler(deps.LinksService, deps.Logger)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	identityMW := IdentityProviderMiddleware(deps.Config.Auth.IdentityProviderToken, deps.Logger)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1/auth", func(r chi.Router) {
		r.With(identityMW).Post("/sessions", authHandler.IssueSession)
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	target := "/{" + handlers.TargetIDParam + "}"
	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/next-profile", discoveryHandler.NextProfile)
		r.Post("/like"+target, interactionHandler.Like)
		r.Post("/dislike"+target, interactionHandler.Dislike)
		r.Post("/superlike"+target, interactionHandler.Superlike)
		r.Get("/links", linksHandler.List)
	})
}
