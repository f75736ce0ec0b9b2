package models

import "time"

type Invoice struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CompanyID uint   `gorm:"uniqueIndex:idx_invoice_company_number" json:"company_id"`
	Number    string `gorm:"size:20;uniqueIndex:idx_invoice_company_number" json:"number"`

	ClientID  uint   `gorm:"index" json:"client_id"`
	Client    Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`
	BookingID *uint  `gorm:"uniqueIndex" json:"booking_id"`

	ServiceName string    `gorm:"size:100" json:"service_name"`
	ServiceDate time.Time `json:"service_date"`

	LineItems       []InvoiceLineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE;" json:"line_items"`
	DiscountPercent float64           `json:"discount_percent"`
	Amount          float64           `json:"amount"`
	Currency        string            `gorm:"size:3;default:'USD'" json:"currency"`

	IssuedAt time.Time `json:"issued_at"`
	DueDate  time.Time `gorm:"index" json:"due_date"`
	Status   string    `gorm:"size:20;default:'pending';index" json:"status"`

	PaidAt           *time.Time `json:"paid_at"`
	PaymentReference string     `gorm:"size:100" json:"payment_reference"`
	Notes            string     `gorm:"size:500" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InvoiceLineItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index" json:"invoice_id"`
	Position  int  `json:"position"`

	Description string  `gorm:"size:255;not null" json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}
