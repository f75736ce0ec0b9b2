package models

import "time"

// Company is the cleaning business; every other record hangs off it.
type Company struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:100;not null" json:"name"`
	Slug    string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Email   string `gorm:"size:100" json:"email"`
	Phone   string `gorm:"size:20" json:"phone"`
	Address string `gorm:"size:255" json:"address"`

	Timezone              string `gorm:"size:64" json:"timezone"`
	MinAdvanceMinutes     int    `gorm:"default:120" json:"min_advance_minutes"`
	SlotIntervalMinutes   int    `gorm:"default:60" json:"slot_interval_minutes"`
	MaxConcurrentBookings int    `gorm:"default:1" json:"max_concurrent_bookings"`
	InvoiceDueDays        int    `gorm:"default:14" json:"invoice_due_days"`
	Currency              string `gorm:"size:3;default:'USD'" json:"currency"`

	ServiceAreas []ServiceArea `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"service_areas"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ServiceArea struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CompanyID uint   `gorm:"index" json:"company_id"`
	Name      string `gorm:"size:100;not null" json:"name"`
}

// BusinessHours holds the opening window for one weekday (0 = Sunday).
type BusinessHours struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `gorm:"index" json:"company_id"`

	Weekday int    `json:"weekday"`
	Open    string `gorm:"size:5" json:"open"`
	Close   string `gorm:"size:5" json:"close"`
	Closed  bool   `json:"closed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
