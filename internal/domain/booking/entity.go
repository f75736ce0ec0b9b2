package booking

import (
	"time"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Confirm(b *models.Booking, now time.Time) error {
	if err := CanConfirm(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusConfirmed)
	b.ConfirmedAt = &now
	return nil
}

func Cancel(b *models.Booking, reason string, now time.Time) error {
	if err := CanCancel(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusCancelled)
	b.CancelReason = reason
	b.CancelledAt = &now
	return nil
}

func Complete(b *models.Booking, now time.Time) error {
	if err := CanComplete(Status(b.Status)); err != nil {
		return err
	}

	b.Status = string(StatusCompleted)
	b.CompletedAt = &now
	return nil
}

// Reschedule moves the booking window. A portal reschedule needs the company
// to confirm again.
func Reschedule(b *models.Booking, start, end time.Time, source string) error {
	if err := CanReschedule(Status(b.Status)); err != nil {
		return err
	}

	b.StartTime = start
	b.EndTime = end
	if source == SourcePortal && Status(b.Status) == StatusConfirmed {
		b.Status = string(StatusPending)
		b.ConfirmedAt = nil
	}
	return nil
}
