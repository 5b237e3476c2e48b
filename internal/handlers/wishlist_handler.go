package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rahat-dev/sharebite/backend/internal/models"
	"github.com/rahat-dev/sharebite/backend/internal/repositories"
	"github.com/rahat-dev/sharebite/backend/internal/services"
)

// WishlistHandler handles HTTP requests for the wishlist request lifecycle.
type WishlistHandler struct {
	wishlist    repositories.WishlistRepository
	fulfillment *services.FulfillmentService
}

// NewWishlistHandler creates a new WishlistHandler.
func NewWishlistHandler(wishlist repositories.WishlistRepository, fulfillment *services.FulfillmentService) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist, fulfillment: fulfillment}
}

// RegisterWishlistRoutes registers wishlist-related routes.
func (h *WishlistHandler) RegisterWishlistRoutes(g *echo.Group) {
	g.POST("/wishlist", h.CreateRequest)
	g.GET("/wishlist", h.ListRequests)
	g.PUT("/wishlist/:id", h.EditRequest)
	g.DELETE("/wishlist/:id", h.DeleteRequest)
	g.POST("/wishlist/:id/fulfill", h.FulfillRequest)
}

// CreateRequest posts a new need for the calling recipient.
func (h *WishlistHandler) CreateRequest(c echo.Context) error {
	recipientID := c.Get("uid").(string)

	var req models.CreateWishlistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !req.Category.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category")
	}

	created, err := h.wishlist.Create(c.Request().Context(), &models.WishlistRequest{
		RecipientID: recipientID,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Requester:   req.Requester,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, created)
}

// ListRequests returns pending requests for donors browsing needs, or a
// recipient's own requests when ?recipientId= is set.
func (h *WishlistHandler) ListRequests(c echo.Context) error {
	var (
		requests []models.WishlistRequest
		err      error
	)
	if recipientID := c.QueryParam("recipientId"); recipientID != "" {
		requests, err = h.wishlist.ListByRecipient(c.Request().Context(), recipientID)
	} else {
		requests, err = h.wishlist.ListPending(c.Request().Context())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, requests)
}

// EditRequest rewrites the descriptive fields of the caller's pending request.
func (h *WishlistHandler) EditRequest(c echo.Context) error {
	uid := c.Get("uid").(string)
	requestID := c.Param("id")

	var req models.UpdateWishlistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Category != nil && !req.Category.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category")
	}

	if err := h.requireOwner(c, requestID, uid); err != nil {
		return err
	}

	if err := h.wishlist.Edit(c.Request().Context(), requestID, req); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRequestNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Wishlist request not found")
		case errors.Is(err, repositories.ErrNotPending):
			return echo.NewHTTPError(http.StatusConflict, "Only pending requests can be edited")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	updated, err := h.wishlist.GetByID(c.Request().Context(), requestID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteRequest removes the caller's own request.
func (h *WishlistHandler) DeleteRequest(c echo.Context) error {
	uid := c.Get("uid").(string)
	requestID := c.Param("id")

	if err := h.requireOwner(c, requestID, uid); err != nil {
		return err
	}

	if err := h.wishlist.Delete(c.Request().Context(), requestID); err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Wishlist request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// FulfillRequest runs the fulfillment saga with the caller as the donor.
// ?cas=true selects the guarded status transition instead of the default
// last-write-wins one.
func (h *WishlistHandler) FulfillRequest(c echo.Context) error {
	donorID := c.Get("uid").(string)
	requestID := c.Param("id")
	useCAS := c.QueryParam("cas") == "true"

	var req models.FulfillWishlistRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.fulfillment.Fulfill(c.Request().Context(), requestID, donorID, req, useCAS)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, repositories.ErrRequestNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Wishlist request not found")
		case errors.Is(err, repositories.ErrAlreadyFulfilled):
			return echo.NewHTTPError(http.StatusConflict, "Wishlist request already fulfilled")
		}
		// Includes the diverged case: request marked fulfilled, donation
		// write failed. The error carries that detail; don't mask it.
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *WishlistHandler) requireOwner(c echo.Context, requestID, uid string) error {
	existing, err := h.wishlist.GetByID(c.Request().Context(), requestID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if existing == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Wishlist request not found")
	}
	if existing.RecipientID != uid {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to modify this request")
	}
	return nil
}
