package models

import "time"

// CompanySettings is a single-row table; defaults are applied to new
// quotations and the values feed the PDF header.
type CompanySettings struct {
	ID                   uint    `gorm:"primaryKey"`
	Name                 string  `gorm:"size:150;not null"`
	Phone                string  `gorm:"size:30"`
	Email                string  `gorm:"size:100"`
	Address              string  `gorm:"size:255"`
	TaxID                string  `gorm:"size:50"`
	DefaultTaxPercentage float64 `gorm:"default:0"`
	CurrencySymbol       string  `gorm:"size:5;default:₹"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
