package models

import "time"

type QuotationStatus string

const (
	QuotationDraft    QuotationStatus = "draft"
	QuotationSent     QuotationStatus = "sent"
	QuotationAccepted QuotationStatus = "accepted"
	QuotationRejected QuotationStatus = "rejected"
)

// ApprovalStatus is an internal review axis independent of the client-facing
// status. Only approved quotations surface on the calendar by default.
type ApprovalStatus string

const (
	ApprovalDraft    ApprovalStatus = "draft"
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRevised  ApprovalStatus = "revised"
)

type ItemType string

const (
	ItemTypeMenu    ItemType = "menu_item"
	ItemTypeService ItemType = "service"
)

type Quotation struct {
	ID              uint   `gorm:"primaryKey"`
	QuotationNumber string `gorm:"size:30;uniqueIndex"`

	ClientID    *uint `gorm:"index"`
	Client      *Client
	ClientName  string `gorm:"size:150;not null"`
	ClientPhone string `gorm:"size:30"`
	ClientEmail string `gorm:"size:100"`

	EventDate  time.Time `gorm:"index;not null"`
	EventType  string    `gorm:"size:100"`
	Venue      string    `gorm:"size:255"`
	GuestCount int       `gorm:"default:0"`

	Status         QuotationStatus `gorm:"size:20;index;default:draft"`
	ApprovalStatus ApprovalStatus  `gorm:"size:20;default:draft"`

	// Pricing inputs
	DiscountPercentage float64 `gorm:"default:0"`
	TaxPercentage      float64 `gorm:"default:0"`
	ServiceCharges     float64 `gorm:"default:0"`
	ExternalCharges    float64 `gorm:"default:0"`
	AdvancePaid        float64 `gorm:"default:0"`

	// Derived, recomputed on every save
	Subtotal       float64 `gorm:"default:0"`
	DiscountAmount float64 `gorm:"default:0"`
	TaxAmount      float64 `gorm:"default:0"`
	GrandTotal     float64 `gorm:"default:0"`
	BalanceDue     float64 `gorm:"default:0"`
	PaymentStatus  string  `gorm:"size:20;default:pending"`

	Notes string `gorm:"size:1000"`

	Items []QuotationItem `gorm:"constraint:OnDelete:CASCADE"`

	CreatedBy uint `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type QuotationItem struct {
	ID          uint     `gorm:"primaryKey"`
	QuotationID uint     `gorm:"index;not null"`
	ItemType    ItemType `gorm:"size:20;not null"`
	Name        string   `gorm:"size:150;not null"`
	UnitPrice   float64  `gorm:"not null"`
	Quantity    float64  `gorm:"not null"`
	Total       float64  `gorm:"not null"`
}

// QuotationResponse is an append-only record of a client accept/reject action.
// The quotation's own Status is the authoritative current state.
type QuotationResponse struct {
	ID          uint   `gorm:"primaryKey"`
	QuotationID uint   `gorm:"index;not null"`
	Action      string `gorm:"size:20;not null"` // "accept" | "reject"
	Message     string `gorm:"size:500"`
	RespondedAt time.Time
	CreatedAt   time.Time
}
