package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/rahat-dev/sharebite/backend/internal/handlers"
	"github.com/rahat-dev/sharebite/backend/internal/middleware"
	"github.com/rahat-dev/sharebite/backend/internal/reconcile"
	"github.com/rahat-dev/sharebite/backend/internal/repositories"
	"github.com/rahat-dev/sharebite/backend/internal/services"
	"github.com/rahat-dev/sharebite/backend/internal/store"
)

// SetupMiddleware configures global Echo middleware.
func SetupMiddleware(e *echo.Echo, log zerolog.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(middleware.RequestLogger(log))
}

// SetupRoutes wires repositories, services and handlers onto the Echo
// instance. authClient may be nil for local development with the memory
// backend; audit may be nil when no Postgres is configured.
func SetupRoutes(e *echo.Echo, docs store.DocumentStore, authClient *auth.Client, audit *reconcile.AuditLog, log zerolog.Logger) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	userRepo := repositories.NewStoreUserRepository(docs)
	donationRepo := repositories.NewStoreDonationRepository(docs, log)
	wishlistRepo := repositories.NewStoreWishlistRepository(docs, log)

	resolver := services.NewResolver(userRepo, services.NewProfileCache())
	aggregator := services.NewAggregator(donationRepo, resolver, log)

	var sink services.AuditSink
	if audit != nil {
		sink = audit
	}
	fulfillment := services.NewFulfillmentService(wishlistRepo, donationRepo, sink, log)

	api := e.Group("/api/v1")
	if authClient != nil {
		api.Use(middleware.FirebaseAuthMiddleware(authClient))
	} else {
		log.Warn().Msg("no auth client configured, falling back to X-Actor-ID header auth")
		api.Use(middleware.HeaderAuthMiddleware())
	}

	handlers.NewDonationHandler(donationRepo, aggregator).RegisterDonationRoutes(api)
	handlers.NewWishlistHandler(wishlistRepo, fulfillment).RegisterWishlistRoutes(api)
	handlers.NewProfileHandler(resolver).RegisterProfileRoutes(api)
	if audit != nil {
		handlers.NewReconcileHandler(audit).RegisterReconcileRoutes(api)
	}
}
