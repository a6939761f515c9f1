package models

import "time"

type MenuCategory struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;uniqueIndex;not null"`
	SortOrder int    `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MenuItem struct {
	ID          uint `gorm:"primaryKey"`
	CategoryID  uint `gorm:"index;not null"`
	Category    MenuCategory
	Name        string  `gorm:"size:150;not null"`
	UnitPrice   float64 `gorm:"not null"`
	Unit        string  `gorm:"size:30"` // "plate", "kg", "piece"
	Description string  `gorm:"size:255"`
	IsActive    bool    `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MenuTemplate is a reusable bundle of line items used to prefill quotations.
type MenuTemplate struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:150;not null"`
	Description string `gorm:"size:255"`
	Total       float64
	Items       []MenuTemplateItem `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type MenuTemplateItem struct {
	ID             uint     `gorm:"primaryKey"`
	MenuTemplateID uint     `gorm:"index;not null"`
	ItemType       ItemType `gorm:"size:20;not null"`
	Name           string   `gorm:"size:150;not null"`
	UnitPrice      float64  `gorm:"not null"`
	Quantity       float64  `gorm:"not null"`
	Total          float64  `gorm:"not null"`
}
