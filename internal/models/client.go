package models

import "time"

const (
	ClientTypeRegular = "regular"
	ClientTypeOneTime = "one-time"
)

// Client is a customer of the company. PasswordHash is set once the client
// signs up for the portal.
type Client struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `gorm:"index" json:"company_id"`

	Name       string `gorm:"size:100;not null" json:"name"`
	Email      string `gorm:"size:100;index" json:"email"`
	Phone      string `gorm:"size:20" json:"phone"`
	Address    string `gorm:"size:255" json:"address"`
	IsActive   bool   `json:"is_active"`
	ClientType string `gorm:"size:20" json:"client_type"`
	Notes      string `gorm:"type:text" json:"notes"`

	PasswordHash string     `gorm:"size:255" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Client) HasPortalAccess() bool {
	return c.PasswordHash != ""
}
