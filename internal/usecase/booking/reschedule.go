package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

type RescheduleBookingInput struct {
	Actor     Actor
	BookingID uint
	Date      string
	Time      string
}

type RescheduleBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock clock
}

func NewRescheduleBooking(repo domain.Repository, audit *audit.Dispatcher) *RescheduleBooking {
	return &RescheduleBooking{repo: repo, audit: audit}
}

func (uc *RescheduleBooking) Execute(ctx context.Context, in RescheduleBookingInput) (*models.Booking, error) {
	if in.Date == "" || in.Time == "" {
		return nil, httperr.ErrBusiness("incomplete_booking")
	}

	company, err := uc.repo.GetCompany(ctx, in.Actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	loc := timezone.Location(company.Timezone)

	start, err := parseStart(company.Timezone, in.Date, in.Time)
	if err != nil {
		return nil, err
	}
	now := uc.clock.now().In(loc)

	var b *models.Booking
	var previous time.Time

	err = uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		found, err := loadOwned(ctx, tx, in.Actor, in.BookingID)
		if err != nil {
			return err
		}
		b = found
		previous = b.StartTime

		if err := domain.CanReschedule(domain.Status(b.Status)); err != nil {
			return err
		}

		end := start.Add(b.EndTime.Sub(b.StartTime))
		if err := checkSlot(ctx, tx, company, start, end, now, b.ID); err != nil {
			return err
		}

		if err := domain.Reschedule(b, start.UTC(), end.UTC(), in.Actor.Source()); err != nil {
			return err
		}
		return tx.UpdateBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	notifyClient(ctx, uc.repo, b, "Booking rescheduled",
		fmt.Sprintf("%s moved to %s", b.Service.Name, describe(b, loc)))

	dispatch(uc.audit, in.Actor, "booking_rescheduled", b, map[string]any{
		"from": previous,
		"to":   b.StartTime,
	})
	return b, nil
}
