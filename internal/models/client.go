package models

import "time"

type Client struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:150;not null"`
	Phone     string `gorm:"size:30"`
	Email     string `gorm:"size:100"`
	Address   string `gorm:"size:255"`
	Notes     string `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
