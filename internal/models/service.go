package models

import "time"

// Service is an entry of the cleaning catalog with its room-based pricing.
type Service struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `gorm:"index" json:"company_id"`

	Name          string  `gorm:"size:100;not null" json:"name"`
	Description   string  `gorm:"size:255" json:"description"`
	DurationMin   int     `json:"duration_min"`
	BasePrice     float64 `json:"base_price"`
	BedroomPrice  float64 `json:"bedroom_price"`
	BathroomPrice float64 `json:"bathroom_price"`
	Active        bool    `json:"active"`
	Category      string  `gorm:"size:50" json:"category"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
