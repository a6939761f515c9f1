package models

import "time"

type Payment struct {
	ID          uint `gorm:"primaryKey"`
	QuotationID uint `gorm:"index;not null"`
	Quotation   Quotation
	Amount      float64   `gorm:"not null"`
	Method      string    `gorm:"size:30"` // "cash", "bank_transfer", "upi", "card"
	Date        time.Time `gorm:"index;not null"`
	Notes       string    `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
