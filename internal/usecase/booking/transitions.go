package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

// ======================================================
// CONFIRM
// ======================================================

type ConfirmBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock clock
}

func NewConfirmBooking(repo domain.Repository, audit *audit.Dispatcher) *ConfirmBooking {
	return &ConfirmBooking{repo: repo, audit: audit}
}

func (uc *ConfirmBooking) Execute(ctx context.Context, actor Actor, bookingID uint) (*models.Booking, error) {
	b, err := loadOwned(ctx, uc.repo, actor, bookingID)
	if err != nil {
		return nil, err
	}

	if err := domain.Confirm(b, uc.clock.now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	company, err := uc.repo.GetCompany(ctx, actor.CompanyID)
	if err == nil {
		notifyClient(ctx, uc.repo, b, "Booking confirmed",
			fmt.Sprintf("%s on %s", b.Service.Name, describe(b, timezone.Location(company.Timezone))))
	}

	dispatch(uc.audit, actor, "booking_confirmed", b, nil)
	return b, nil
}

// ======================================================
// CANCEL
// ======================================================

type CancelBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock clock
}

func NewCancelBooking(repo domain.Repository, audit *audit.Dispatcher) *CancelBooking {
	return &CancelBooking{repo: repo, audit: audit}
}

func (uc *CancelBooking) Execute(ctx context.Context, actor Actor, bookingID uint, reason string) (*models.Booking, error) {
	b, err := loadOwned(ctx, uc.repo, actor, bookingID)
	if err != nil {
		return nil, err
	}

	if err := domain.Cancel(b, reason, uc.clock.now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	notifyClient(ctx, uc.repo, b, "Booking cancelled",
		fmt.Sprintf("Your %s booking was cancelled", b.Service.Name))

	dispatch(uc.audit, actor, "booking_cancelled", b, map[string]any{"reason": reason})
	return b, nil
}

// ======================================================
// COMPLETE
// ======================================================

type CompleteBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock clock
}

func NewCompleteBooking(repo domain.Repository, audit *audit.Dispatcher) *CompleteBooking {
	return &CompleteBooking{repo: repo, audit: audit}
}

type CompleteBookingOutput struct {
	Booking *models.Booking `json:"booking"`
	Next    *models.Booking `json:"next,omitempty"`
}

// Execute marks the visit done. Recurring bookings get their next visit
// created as pending when that slot is still open.
func (uc *CompleteBooking) Execute(ctx context.Context, actor Actor, bookingID uint) (*CompleteBookingOutput, error) {
	b, err := loadOwned(ctx, uc.repo, actor, bookingID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.now()
	if err := domain.Complete(b, now.UTC()); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	notifyClient(ctx, uc.repo, b, "Service completed",
		fmt.Sprintf("Your %s is complete. We would love a review!", b.Service.Name))
	dispatch(uc.audit, actor, "booking_completed", b, nil)

	out := &CompleteBookingOutput{Booking: b}

	company, err := uc.repo.GetCompany(ctx, actor.CompanyID)
	if err != nil {
		return out, nil
	}
	loc := timezone.Location(company.Timezone)

	nextStart, ok := domain.NextOccurrence(b.RecurringType, b.StartTime.In(loc))
	if !ok {
		return out, nil
	}

	next, err := uc.scheduleNext(ctx, company, b, nextStart, now.In(loc))
	if err != nil {
		zap.L().Info("next recurring visit not scheduled",
			zap.Uint("booking_id", b.ID),
			zap.Error(err),
		)
		return out, nil
	}

	dispatch(uc.audit, actor, "booking_recurred", next, map[string]any{"parent_id": b.ID})
	out.Next = next
	return out, nil
}

func (uc *CompleteBooking) scheduleNext(
	ctx context.Context,
	company *models.Company,
	prev *models.Booking,
	start, now time.Time,
) (*models.Booking, error) {

	end := start.Add(prev.EndTime.Sub(prev.StartTime))
	parentID := prev.ID

	next := &models.Booking{
		Reference:       uuid.NewString(),
		CompanyID:       prev.CompanyID,
		ClientID:        prev.ClientID,
		ServiceID:       prev.ServiceID,
		StartTime:       start.UTC(),
		EndTime:         end.UTC(),
		Bedrooms:        prev.Bedrooms,
		Bathrooms:       prev.Bathrooms,
		Address:         prev.Address,
		Notes:           prev.Notes,
		EstimatedPrice:  prev.EstimatedPrice,
		RecurringType:   prev.RecurringType,
		ParentBookingID: &parentID,
		Status:          string(domain.StatusPending),
		Source:          prev.Source,

		AssignedEmployeeID: prev.AssignedEmployeeID,
		AssignedTeamID:     prev.AssignedTeamID,
	}

	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		if err := checkSlot(ctx, tx, company, start, end, now, 0); err != nil {
			return err
		}
		if err := tx.CreateBooking(ctx, next); err != nil {
			return err
		}
		notifyClient(ctx, tx, next, "Next visit scheduled",
			fmt.Sprintf("%s on %s", prev.Service.Name, describe(next, start.Location())))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}
