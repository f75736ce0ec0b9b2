package booking

import (
	"context"
	"fmt"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

type AssignBookingInput struct {
	Actor      Actor
	BookingID  uint
	EmployeeID *uint
	TeamID     *uint
}

type AssignBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewAssignBooking(repo domain.Repository, audit *audit.Dispatcher) *AssignBooking {
	return &AssignBooking{repo: repo, audit: audit}
}

// Execute sets the crew for a booking. A nil pointer clears that assignment.
func (uc *AssignBooking) Execute(ctx context.Context, in AssignBookingInput) (*models.Booking, error) {
	b, err := loadOwned(ctx, uc.repo, in.Actor, in.BookingID)
	if err != nil {
		return nil, err
	}
	if !domain.Status(b.Status).Active() {
		return nil, httperr.ErrBusiness("invalid_state")
	}

	b.AssignedEmployee = nil
	b.AssignedTeam = nil

	if in.EmployeeID != nil {
		emp, err := uc.repo.GetEmployee(ctx, in.Actor.CompanyID, *in.EmployeeID)
		if err != nil {
			return nil, httperr.ErrBusiness("employee_not_found")
		}
		if emp.EmploymentStatus != "active" {
			return nil, httperr.ErrBusiness("employee_inactive")
		}
		b.AssignedEmployee = emp
	}
	b.AssignedEmployeeID = in.EmployeeID

	if in.TeamID != nil {
		team, err := uc.repo.GetTeam(ctx, in.Actor.CompanyID, *in.TeamID)
		if err != nil {
			return nil, httperr.ErrBusiness("team_not_found")
		}
		b.AssignedTeam = team
	}
	b.AssignedTeamID = in.TeamID

	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	dispatch(uc.audit, in.Actor, "booking_assigned", b, map[string]any{
		"employee_id": in.EmployeeID,
		"team_id":     in.TeamID,
	})
	return b, nil
}
