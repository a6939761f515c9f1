package models

import "time"

type ExpenseCategory struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expense is a business-level cost entry, independent of per-event expenses.
type Expense struct {
	ID          uint `gorm:"primaryKey"`
	CategoryID  uint `gorm:"index;not null"`
	Category    ExpenseCategory
	Date        time.Time `gorm:"index;not null"`
	Amount      float64   `gorm:"not null"`
	Description string    `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
