package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

// Actor identifies who triggered a use case. Exactly one of UserID and
// ClientID is set.
type Actor struct {
	CompanyID uint
	UserID    *uint
	ClientID  uint
}

func (a Actor) Source() string {
	if a.ClientID != 0 {
		return domain.SourcePortal
	}
	return domain.SourceStaff
}

// clock is overridden in tests.
type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func parseStart(tz, date, clockStr string) (time.Time, error) {
	start, err := timezone.ParseDateTimeIn(tz, date, clockStr)
	if err != nil {
		return time.Time{}, httperr.ErrBusiness("invalid_date_or_time")
	}
	return start, nil
}

// loadOwned fetches a booking and hides it from portal clients that do not
// own it.
func loadOwned(ctx context.Context, repo domain.Repository, actor Actor, bookingID uint) (*models.Booking, error) {
	b, err := repo.GetBooking(ctx, actor.CompanyID, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("booking_not_found")
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if actor.ClientID != 0 && b.ClientID != actor.ClientID {
		return nil, httperr.ErrBusiness("booking_not_found")
	}
	return b, nil
}

// checkSlot validates the window and capacity for [start, end). Must run in
// the same transaction as the write it guards.
func checkSlot(
	ctx context.Context,
	repo domain.Repository,
	company *models.Company,
	start, end, now time.Time,
	excludeID uint,
) error {
	// Row locks on overlapping bookings cannot cover an empty slot.
	if err := repo.LockCompany(ctx, company.ID); err != nil {
		return fmt.Errorf("lock company: %w", err)
	}

	hours, err := repo.ListBusinessHours(ctx, company.ID)
	if err != nil {
		return fmt.Errorf("load business hours: %w", err)
	}

	settings := domain.SettingsFor(*company)
	if err := domain.CheckWindow(settings, hours, start, end, now); err != nil {
		return err
	}

	overlapping, err := repo.ListActiveOverlapping(ctx, company.ID, start, end, excludeID)
	if err != nil {
		return fmt.Errorf("check capacity: %w", err)
	}
	if len(overlapping) >= settings.MaxConcurrent {
		return httperr.ErrBusiness("slot_unavailable")
	}
	return nil
}

func notifyClient(ctx context.Context, repo domain.Repository, b *models.Booking, title, msg string) {
	n := &models.Notification{
		CompanyID: b.CompanyID,
		ClientID:  b.ClientID,
		Title:     title,
		Message:   msg,
		Type:      models.NotificationBooking,
	}
	if err := repo.CreateNotification(ctx, n); err != nil {
		zap.L().Warn("booking notification failed",
			zap.Uint("booking_id", b.ID),
			zap.Error(err),
		)
	}
}

func dispatch(d *audit.Dispatcher, actor Actor, action string, b *models.Booking, meta any) {
	d.Dispatch(audit.Event{
		CompanyID: actor.CompanyID,
		UserID:    actor.UserID,
		Action:    action,
		Entity:    "booking",
		EntityID:  &b.ID,
		Metadata:  meta,
	})
}

func describe(b *models.Booking, loc *time.Location) string {
	return b.StartTime.In(loc).Format("Mon Jan 2 at 15:04")
}
