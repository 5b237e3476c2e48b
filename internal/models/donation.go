package models

import (
	"time"
)

// Category identifies one of the four donation types. Each category is backed
// by its own document collection; the label on a scanned record always comes
// from the collection it was read from, never from the document body.
type Category string

const (
	CategoryFood     Category = "Food"
	CategoryClothing Category = "Clothing"
	CategoryMonetary Category = "Monetary"
	CategoryOther    Category = "Other"
)

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryClothing, CategoryMonetary, CategoryOther:
		return true
	}
	return false
}

// IsItemized reports whether donations in this category carry an item list
// rather than a monetary amount.
func (c Category) IsItemized() bool {
	return c != CategoryMonetary
}

// Role selects which side of a donation an actor is on when scanning the
// category collections.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleRecipient Role = "recipient"
)

// FilterField returns the document field matched against the actor id for
// this role. These names are part of the stored-data contract.
func (r Role) FilterField() string {
	if r == RoleRecipient {
		return "recipientId"
	}
	return "donorId"
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleDonor || r == RoleRecipient
}

// DonationItem is one line of an itemized donation.
type DonationItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice,omitempty"`
}

// DonationRecord is a single gift instance. Exactly one of Items/Amount is
// populated, matching the category. Records are immutable once written.
type DonationRecord struct {
	ID          string         `json:"id"`
	Category    Category       `json:"category"`
	DonorID     string         `json:"donorId,omitempty"`
	RecipientID string         `json:"recipientId,omitempty"`
	Items       []DonationItem `json:"items,omitempty"`
	Amount      float64        `json:"amount,omitempty"`
	// CreatedAt is assigned by the store at write time; nil when the stored
	// document has no resolvable timestamp yet.
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	PickupAddress string     `json:"pickupAddress,omitempty"`
	TimeSlot      string     `json:"timeSlot,omitempty"`
	// CounterpartName is the resolved display name of the other party,
	// attached during aggregation. Not stored.
	CounterpartName string `json:"counterpartName,omitempty"`
}

// ToDocument flattens the record into the stored wire shape. The id and
// createdAt fields are owned by the store layer and deliberately excluded.
func (d *DonationRecord) ToDocument() map[string]any {
	doc := map[string]any{
		"category": string(d.Category),
		"donorId":  d.DonorID,
	}
	if d.RecipientID != "" {
		doc["recipientId"] = d.RecipientID
	}
	if d.Category == CategoryMonetary {
		doc["amount"] = d.Amount
	} else {
		items := make([]any, 0, len(d.Items))
		for _, it := range d.Items {
			m := map[string]any{
				"id":       it.ID,
				"name":     it.Name,
				"quantity": it.Quantity,
			}
			if it.UnitPrice != 0 {
				m["unitPrice"] = it.UnitPrice
			}
			items = append(items, m)
		}
		doc["items"] = items
	}
	if d.PickupAddress != "" {
		doc["pickupAddress"] = d.PickupAddress
	}
	if d.TimeSlot != "" {
		doc["timeSlot"] = d.TimeSlot
	}
	return doc
}

// DecodeDonation rebuilds a DonationRecord from a stored document. The
// category comes from the collection the document was scanned out of, so the
// document's own category field (historically written as both "category" and
// "Category") is ignored for labeling.
func DecodeDonation(cat Category, id string, data map[string]any) DonationRecord {
	rec := DonationRecord{
		ID:            id,
		Category:      cat,
		DonorID:       asString(data["donorId"]),
		RecipientID:   asString(data["recipientId"]),
		Amount:        asFloat(data["amount"]),
		CreatedAt:     asTime(data["createdAt"]),
		PickupAddress: asString(data["pickupAddress"]),
		TimeSlot:      asString(data["timeSlot"]),
	}
	if raw, ok := data["items"].([]any); ok {
		for _, el := range raw {
			m, ok := el.(map[string]any)
			if !ok {
				continue
			}
			rec.Items = append(rec.Items, DonationItem{
				ID:        asString(m["id"]),
				Name:      asString(m["name"]),
				Quantity:  int(asFloat(m["quantity"])),
				UnitPrice: asFloat(m["unitPrice"]),
			})
		}
	}
	return rec
}

// RecordDonationRequest defines the request body for recording a donation.
type RecordDonationRequest struct {
	Category      Category       `json:"category" validate:"required"`
	RecipientID   string         `json:"recipientId,omitempty"`
	Items         []DonationItem `json:"items,omitempty" validate:"omitempty,dive"`
	Amount        float64        `json:"amount,omitempty" validate:"omitempty,gt=0"`
	PickupAddress string         `json:"pickupAddress,omitempty"`
	TimeSlot      string         `json:"timeSlot,omitempty"`
}
