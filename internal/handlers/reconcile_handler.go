package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rahat-dev/sharebite/backend/internal/reconcile"
)

// ReconcileHandler exposes the saga divergence report. Only registered when
// the audit log is configured.
type ReconcileHandler struct {
	audit *reconcile.AuditLog
}

// NewReconcileHandler creates a new ReconcileHandler.
func NewReconcileHandler(audit *reconcile.AuditLog) *ReconcileHandler {
	return &ReconcileHandler{audit: audit}
}

// RegisterReconcileRoutes registers reconciliation routes.
func (h *ReconcileHandler) RegisterReconcileRoutes(g *echo.Group) {
	g.GET("/reconcile/divergences", h.ListDivergences)
}

// ListDivergences returns saga runs where the two stores diverged.
func (h *ReconcileHandler) ListDivergences(c echo.Context) error {
	rows, err := h.audit.Divergences(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}
