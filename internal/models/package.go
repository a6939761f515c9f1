package models

import "time"

type Package struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:150;not null"`
	Description string `gorm:"size:500"`
	Total       float64
	Items       []PackageItem `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PackageItem struct {
	ID        uint     `gorm:"primaryKey"`
	PackageID uint     `gorm:"index;not null"`
	ItemType  ItemType `gorm:"size:20;not null"`
	Name      string   `gorm:"size:150;not null"`
	UnitPrice float64  `gorm:"not null"`
	Quantity  float64  `gorm:"not null"`
	Total     float64  `gorm:"not null"`
}
