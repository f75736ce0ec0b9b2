package dto

import "time"

type BookingListDTO struct {
	ID        uint      `json:"id"`
	Reference string    `json:"reference"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`

	ClientID    uint   `json:"client_id"`
	ClientName  string `json:"client_name"`
	ServiceID   uint   `json:"service_id"`
	ServiceName string `json:"service_name"`
	Address     string `json:"address"`

	Bedrooms      int     `json:"bedrooms"`
	Bathrooms     int     `json:"bathrooms"`
	Price         float64 `json:"price"`
	RecurringType string  `json:"recurring_type"`

	AssignedEmployee string `json:"assigned_employee,omitempty"`
	AssignedTeam     string `json:"assigned_team,omitempty"`
}
