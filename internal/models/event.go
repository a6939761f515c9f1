package models

import "time"

// CalendarEvent is derived from an accepted quotation, created exactly once
// inside the acceptance transaction.
type CalendarEvent struct {
	ID          uint      `gorm:"primaryKey"`
	QuotationID uint      `gorm:"uniqueIndex;not null"`
	ClientName  string    `gorm:"size:150;not null"`
	ClientPhone string    `gorm:"size:30"`
	EventDate   time.Time `gorm:"index;not null"`
	EventType   string    `gorm:"size:100"`
	Venue       string    `gorm:"size:255"`
	GuestCount  int       `gorm:"default:0"`
	Revenue     float64   `gorm:"not null"`
	Notes       string    `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventExpense tracks per-event cost and profit, denormalized and recomputed
// whenever its items change.
type EventExpense struct {
	ID               uint               `gorm:"primaryKey"`
	CalendarEventID  uint               `gorm:"uniqueIndex;not null"`
	Revenue          float64            `gorm:"not null"`
	TotalExpenses    float64            `gorm:"default:0"`
	Profit           float64            `gorm:"default:0"`
	ProfitPercentage float64            `gorm:"default:0"`
	Items            []EventExpenseItem `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EventExpenseItem struct {
	ID             uint    `gorm:"primaryKey"`
	EventExpenseID uint    `gorm:"index;not null"`
	Vendor         string  `gorm:"size:150;not null"`
	Category       string  `gorm:"size:100"`
	Amount         float64 `gorm:"not null"`
	Notes          string  `gorm:"size:255"`
	CreatedAt      time.Time
}
