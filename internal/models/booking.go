package models

import "time"

type Booking struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;uniqueIndex" json:"reference"`

	CompanyID uint `gorm:"index" json:"company_id"`

	ClientID uint   `gorm:"index" json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	ServiceID uint    `json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service"`

	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Bedrooms  int    `json:"bedrooms"`
	Bathrooms int    `json:"bathrooms"`
	Address   string `gorm:"size:255" json:"address"`
	Notes     string `gorm:"size:500" json:"notes"`

	EstimatedPrice float64 `json:"estimated_price"`
	Discount       float64 `json:"discount"`
	PromotionCode  string  `gorm:"size:50" json:"promotion_code"`

	RecurringType   string `gorm:"size:20;default:'none'" json:"recurring_type"`
	ParentBookingID *uint  `json:"parent_booking_id"`

	Status string `gorm:"size:20;default:'pending';index" json:"status"`
	Source string `gorm:"size:20" json:"source"`

	AssignedEmployeeID *uint     `json:"assigned_employee_id"`
	AssignedEmployee   *Employee `gorm:"foreignKey:AssignedEmployeeID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"assigned_employee,omitempty"`
	AssignedTeamID     *uint     `json:"assigned_team_id"`
	AssignedTeam       *Team     `gorm:"foreignKey:AssignedTeamID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"assigned_team,omitempty"`

	CancelReason string     `gorm:"size:255" json:"cancel_reason"`
	ConfirmedAt  *time.Time `json:"confirmed_at"`
	CancelledAt  *time.Time `json:"cancelled_at"`
	CompletedAt  *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Total is what the client is expected to pay for the booking.
func (b Booking) Total() float64 {
	t := b.EstimatedPrice - b.Discount
	if t < 0 {
		return 0
	}
	return t
}
