package booking

import (
	"time"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
)

const (
	RecurNone     = "none"
	RecurWeekly   = "weekly"
	RecurBiweekly = "biweekly"
	RecurMonthly  = "monthly"
)

func ValidRecurrence(r string) error {
	switch r {
	case "", RecurNone, RecurWeekly, RecurBiweekly, RecurMonthly:
		return nil
	}
	return httperr.ErrBusiness("invalid_recurrence")
}

// NextOccurrence returns the start of the following visit. ok is false for
// one-off bookings.
func NextOccurrence(recurring string, start time.Time) (time.Time, bool) {
	switch recurring {
	case RecurWeekly:
		return start.AddDate(0, 0, 7), true
	case RecurBiweekly:
		return start.AddDate(0, 0, 14), true
	case RecurMonthly:
		return start.AddDate(0, 1, 0), true
	}
	return time.Time{}, false
}
