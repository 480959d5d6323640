package models

import "time"

// Marketplace listing statuses
const (
	ListingAvailable  = "Available"
	ListingSoldOut    = "Sold Out"
	ListingComingSoon = "Coming Soon"
)

// Property statuses
const (
	PropertyDraft     = "draft"
	PropertyPending   = "pending"
	PropertyActive    = "active"
	PropertyCompleted = "completed"
	PropertyCancelled = "cancelled"
)

// Listing is a purchasable marketplace unit backed by a property.
type Listing struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Location         string    `json:"location"`
	Description      string    `json:"description"`
	Category         string    `json:"category"`
	Type             string    `json:"type"`
	Price            float64   `json:"price"`
	Quantity         int       `json:"quantity"`
	Status           string    `json:"status"`
	Trending         bool      `json:"trending"`
	Featured         bool      `json:"featured"`
	ReturnRate       *float64  `json:"returnRate,omitempty"`
	FundedPercentage *float64  `json:"fundedPercentage,omitempty"`
	CompanyID        string    `json:"companyId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// InStock reports whether units can still be bought.
func (l Listing) InStock() bool {
	return l.Quantity > 0 && l.Status != ListingSoldOut
}

// Property is a real-estate asset managed by an agent or company.
type Property struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Price       *float64  `json:"price,omitempty"`
	Status      string    `json:"status"`
	Featured    bool      `json:"featured"`
	Trending    bool      `json:"trending"`
	OwnerID     string    `json:"ownerId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Investment is a user's stake in a property-backed offering.
type Investment struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	PropertyID       string     `json:"propertyId"`
	Location         string     `json:"location"`
	Description      string     `json:"description,omitempty"`
	Type             string     `json:"type"`
	Amount           float64    `json:"amount"`
	ReturnRate       *float64   `json:"returnRate,omitempty"`
	FundedPercentage *float64   `json:"fundedPercentage,omitempty"`
	Status           string     `json:"status"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	MaturityDate     *time.Time `json:"maturityDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Document is a file the user uploaded for verification or a purchase.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	FileURL   string    `json:"fileUrl,omitempty"`
	OwnerID   string    `json:"ownerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notification is an in-app message.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Referral tracks a user invited by the current user.
type Referral struct {
	ID           string    `json:"id"`
	ReferredName string    `json:"referredName"`
	ReferredMail string    `json:"referredEmail"`
	Status       string    `json:"status"`
	Reward       float64   `json:"reward"`
	CreatedAt    time.Time `json:"createdAt"`
}
