package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rahat-dev/sharebite/backend/internal/services"
)

// ProfileHandler exposes the identity resolver for display lookups.
type ProfileHandler struct {
	resolver *services.Resolver
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(resolver *services.Resolver) *ProfileHandler {
	return &ProfileHandler{resolver: resolver}
}

// RegisterProfileRoutes registers profile-related routes.
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profiles/:id", h.GetProfile)
}

// GetProfile resolves an actor id to its display profile.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.resolver.Resolve(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if profile == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
	}
	return c.JSON(http.StatusOK, profile)
}
