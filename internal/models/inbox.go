package models

import "time"

const (
	SenderClient  = "client"
	SenderCompany = "company"
)

const (
	NotificationBooking = "booking"
	NotificationService = "service"
	NotificationPayment = "payment"
	NotificationOther   = "other"
)

type Message struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `gorm:"index" json:"company_id"`
	ClientID  uint `gorm:"index" json:"client_id"`

	Subject string `gorm:"size:150" json:"subject"`
	Body    string `gorm:"type:text" json:"message"`
	Sender  string `gorm:"size:10" json:"sender"`
	Read    bool   `json:"read"`

	CreatedAt time.Time `json:"date"`
}

type Notification struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CompanyID uint `gorm:"index" json:"company_id"`
	ClientID  uint `gorm:"index" json:"client_id"`

	Title   string `gorm:"size:150" json:"title"`
	Message string `gorm:"size:500" json:"message"`
	Type    string `gorm:"size:20" json:"type"`
	Read    bool   `json:"read"`

	CreatedAt time.Time `json:"date"`
}
