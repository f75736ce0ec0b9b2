package dto

import "github.com/BruksfildServices01/cleaning-scheduler/internal/models"

func BookingList(b models.Booking) BookingListDTO {
	out := BookingListDTO{
		ID:            b.ID,
		Reference:     b.Reference,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        b.Status,
		ClientID:      b.ClientID,
		ClientName:    b.Client.Name,
		ServiceID:     b.ServiceID,
		ServiceName:   b.Service.Name,
		Address:       b.Address,
		Bedrooms:      b.Bedrooms,
		Bathrooms:     b.Bathrooms,
		Price:         b.Total(),
		RecurringType: b.RecurringType,
	}
	if b.AssignedEmployee != nil {
		out.AssignedEmployee = b.AssignedEmployee.Name
	}
	if b.AssignedTeam != nil {
		out.AssignedTeam = b.AssignedTeam.Name
	}
	return out
}

func BookingLists(in []models.Booking) []BookingListDTO {
	out := make([]BookingListDTO, 0, len(in))
	for _, b := range in {
		out = append(out, BookingList(b))
	}
	return out
}
