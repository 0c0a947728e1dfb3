package domain

import "time"

// SaveRequest toggles a bookmark. ItemID is the buyer or contact id.
type SaveRequest struct {
	ItemID string
	Saved  bool
	Notes  *string
}

// SaveBuyerRequest is the POST body for saving a buyer.
type SaveBuyerRequest struct {
	BuyerID string  `json:"buyerId" validate:"required"`
	Saved   bool    `json:"saved"`
	Notes   *string `json:"notes" validate:"omitempty,max=2000"`
}

// SaveContactRequest is the POST body for saving a contact.
type SaveContactRequest struct {
	ContactID string  `json:"contactId" validate:"required"`
	Saved     bool    `json:"saved"`
	Notes     *string `json:"notes" validate:"omitempty,max=2000"`
}

// SaveResponse acknowledges a toggle.
type SaveResponse struct {
	Success bool `json:"success"`
	Saved   bool `json:"saved"`
}

// SavedBuyer is a bookmarked buyer joined with its current data.
type SavedBuyer struct {
	Buyer
	SavedAt time.Time `json:"savedAt"`
	Notes   *string   `json:"notes"`
}

// SavedContact is a bookmarked contact joined with its current data.
type SavedContact struct {
	Contact
	SavedAt time.Time `json:"savedAt"`
	Notes   *string   `json:"notes"`
}
