package models

import "time"

// RequestStatus is the closed in-memory status of a wishlist request. The
// store itself holds an open string and enforces nothing, so decoding is
// tolerant: anything unrecognized is treated as pending.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusFulfilled RequestStatus = "fulfilled"
)

// ParseStatus maps a stored status string onto the closed status type. The
// second return value is false when the stored value was not a known status
// and the pending fallback was applied.
func ParseStatus(raw string) (RequestStatus, bool) {
	switch RequestStatus(raw) {
	case StatusPending, StatusFulfilled:
		return RequestStatus(raw), true
	}
	return StatusPending, false
}

// WishlistRequest is a recipient's open need. Status transitions exactly once,
// pending -> fulfilled; DonorID and FulfilledAt are set together on
// fulfillment and never otherwise.
type WishlistRequest struct {
	ID          string        `json:"id"`
	RecipientID string        `json:"recipientId"`
	Name        string        `json:"name"`
	Category    Category      `json:"category"`
	Description string        `json:"description,omitempty"`
	Requester   string        `json:"requester,omitempty"`
	Status      RequestStatus `json:"status"`
	DonorID     string        `json:"donorId,omitempty"`
	FulfilledAt *time.Time    `json:"fulfilledAt,omitempty"`
}

// ToDocument flattens the request into the stored wire shape. The id is
// assigned by the store.
func (w *WishlistRequest) ToDocument() map[string]any {
	return map[string]any{
		"recipientId": w.RecipientID,
		"name":        w.Name,
		"category":    string(w.Category),
		"description": w.Description,
		"requester":   w.Requester,
		"status":      string(w.Status),
	}
}

// DecodeWishlist rebuilds a WishlistRequest from a stored document. The second
// return value is false when the stored status string was unrecognized.
func DecodeWishlist(id string, data map[string]any) (WishlistRequest, bool) {
	status, known := ParseStatus(asString(data["status"]))
	// Older client builds wrote the field as "Category"; read both and
	// normalize. New writes always use the lower-case form.
	category := asString(data["category"])
	if category == "" {
		category = asString(data["Category"])
	}
	req := WishlistRequest{
		ID:          id,
		RecipientID: asString(data["recipientId"]),
		Name:        asString(data["name"]),
		Category:    Category(category),
		Description: asString(data["description"]),
		Requester:   asString(data["requester"]),
		Status:      status,
		DonorID:     asString(data["donorId"]),
		FulfilledAt: asTime(data["fulfilledAt"]),
	}
	return req, known
}

// CreateWishlistRequest defines the request body for posting a new need.
type CreateWishlistRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=120"`
	Category    Category `json:"category" validate:"required"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	Requester   string   `json:"requester,omitempty" validate:"max=120"`
}

// UpdateWishlistRequest defines the request body for editing a pending need.
// Fields are pointers so an omitted field is left unchanged while an
// explicit empty string clears description/requester.
type UpdateWishlistRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Category    *Category `json:"category,omitempty"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Requester   *string   `json:"requester,omitempty" validate:"omitempty,max=120"`
}

// FulfillWishlistRequest defines the request body for the fulfillment saga:
// the donation that satisfies the need. The donor is the authenticated caller
// and the recipient comes from the request being fulfilled.
type FulfillWishlistRequest struct {
	Category      Category       `json:"category" validate:"required"`
	Items         []DonationItem `json:"items,omitempty" validate:"omitempty,dive"`
	Amount        float64        `json:"amount,omitempty" validate:"omitempty,gt=0"`
	PickupAddress string         `json:"pickupAddress,omitempty"`
	TimeSlot      string         `json:"timeSlot,omitempty"`
}
