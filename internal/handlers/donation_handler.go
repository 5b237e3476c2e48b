package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rahat-dev/sharebite/backend/internal/models"
	"github.com/rahat-dev/sharebite/backend/internal/repositories"
	"github.com/rahat-dev/sharebite/backend/internal/services"
)

// DonationHandler handles HTTP requests for recording donations and viewing
// aggregated history.
type DonationHandler struct {
	donations  repositories.DonationRepository
	aggregator *services.Aggregator
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(donations repositories.DonationRepository, aggregator *services.Aggregator) *DonationHandler {
	return &DonationHandler{donations: donations, aggregator: aggregator}
}

// RegisterDonationRoutes registers donation-related routes.
func (h *DonationHandler) RegisterDonationRoutes(g *echo.Group) {
	g.POST("/donations", h.RecordDonation)
	g.GET("/donations/history", h.GetHistory)
	g.GET("/donations/summary", h.GetSummary)
}

// RecordDonation validates and persists a new donation for the caller.
func (h *DonationHandler) RecordDonation(c echo.Context) error {
	donorID := c.Get("uid").(string)

	var req models.RecordDonationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec := &models.DonationRecord{
		Category:      req.Category,
		DonorID:       donorID,
		RecipientID:   req.RecipientID,
		Items:         req.Items,
		Amount:        req.Amount,
		PickupAddress: req.PickupAddress,
		TimeSlot:      req.TimeSlot,
	}

	recorded, err := h.donations.Record(c.Request().Context(), rec)
	if err != nil {
		if errors.Is(err, repositories.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, recorded)
}

// GetHistory returns the caller's merged donation history for a role.
func (h *DonationHandler) GetHistory(c echo.Context) error {
	actorID := c.Get("uid").(string)
	role, err := roleParam(c)
	if err != nil {
		return err
	}

	agg, err := h.aggregator.Aggregate(c.Request().Context(), actorID, role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, agg)
}

// GetSummary returns only the totals of the caller's history for a role.
func (h *DonationHandler) GetSummary(c echo.Context) error {
	actorID := c.Get("uid").(string)
	role, err := roleParam(c)
	if err != nil {
		return err
	}

	agg, err := h.aggregator.Aggregate(c.Request().Context(), actorID, role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, agg.Totals)
}

func roleParam(c echo.Context) (models.Role, error) {
	role := models.Role(c.QueryParam("role"))
	if role == "" {
		role = models.RoleDonor
	}
	if !role.Valid() {
		return "", echo.NewHTTPError(http.StatusBadRequest, "role must be donor or recipient")
	}
	return role, nil
}
