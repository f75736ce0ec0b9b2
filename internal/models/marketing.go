package models

import "time"

const (
	CampaignDraft     = "draft"
	CampaignScheduled = "scheduled"
	CampaignSent      = "sent"
)

const (
	ReviewPending   = "pending"
	ReviewPublished = "published"
)

type Campaign struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `gorm:"index" json:"company_id"`

	Name       string     `gorm:"size:100;not null" json:"name"`
	Type       string     `gorm:"size:10" json:"type"`
	Status     string     `gorm:"size:20;default:'draft';index" json:"status"`
	Subject    string     `gorm:"size:150" json:"subject"`
	Content    string     `gorm:"type:text" json:"content"`
	SendDate   *time.Time `json:"send_date"`
	SentAt     *time.Time `json:"sent_at"`
	Recipients int        `json:"recipients"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Promotion struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CompanyID uint   `gorm:"uniqueIndex:idx_promotion_company_code" json:"company_id"`
	Code      string `gorm:"size:50;uniqueIndex:idx_promotion_company_code" json:"code"`

	Discount   string    `gorm:"size:50" json:"discount"`
	ValidUntil time.Time `json:"valid_until"`
	UsageCount int       `json:"usage_count"`

	// Status is derived from ValidUntil when the promotion is read.
	Status string `gorm:"-" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Review struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `gorm:"index" json:"company_id"`

	ClientID  uint   `gorm:"index" json:"client_id"`
	Client    Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`
	BookingID uint   `gorm:"uniqueIndex" json:"booking_id"`

	Rating  int    `json:"rating"`
	Comment string `gorm:"type:text" json:"comment"`
	Status  string `gorm:"size:20;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"date"`
	UpdatedAt time.Time `json:"updated_at"`
}
