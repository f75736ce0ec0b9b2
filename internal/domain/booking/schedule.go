package booking

import (
	"time"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

// Settings are the company scheduling knobs with defaults applied.
type Settings struct {
	Location      *time.Location
	MinAdvance    time.Duration
	SlotInterval  time.Duration
	MaxConcurrent int
}

func SettingsFor(c models.Company) Settings {
	s := Settings{
		Location:      timezone.Location(c.Timezone),
		MinAdvance:    time.Duration(c.MinAdvanceMinutes) * time.Minute,
		SlotInterval:  time.Duration(c.SlotIntervalMinutes) * time.Minute,
		MaxConcurrent: c.MaxConcurrentBookings,
	}
	if c.MinAdvanceMinutes <= 0 {
		s.MinAdvance = 120 * time.Minute
	}
	if c.SlotIntervalMinutes <= 0 {
		s.SlotInterval = 60 * time.Minute
	}
	if s.MaxConcurrent <= 0 {
		s.MaxConcurrent = 1
	}
	return s
}

// Window is the open period of a business day.
type Window struct {
	Open  time.Time
	Close time.Time
}

// DayWindow resolves the business hours for the day of t. ok is false when
// the company is closed that day.
func DayWindow(hours []models.BusinessHours, day time.Time) (Window, bool) {
	wd := int(day.Weekday())
	for _, h := range hours {
		if h.Weekday != wd {
			continue
		}
		if h.Closed || h.Open == "" || h.Close == "" {
			return Window{}, false
		}
		open, err1 := timezone.At(day, h.Open)
		closeAt, err2 := timezone.At(day, h.Close)
		if err1 != nil || err2 != nil || !closeAt.After(open) {
			return Window{}, false
		}
		return Window{Open: open, Close: closeAt}, true
	}
	return Window{}, false
}

// CheckWindow validates a booking interval against lead time and business
// hours. start and end must be in the company location.
func CheckWindow(s Settings, hours []models.BusinessHours, start, end, now time.Time) error {
	if start.Before(now.Add(s.MinAdvance)) {
		return httperr.ErrBusiness("too_soon")
	}

	w, ok := DayWindow(hours, start)
	if !ok || start.Before(w.Open) || end.After(w.Close) {
		return httperr.ErrBusiness("outside_business_hours")
	}
	return nil
}

// Overlapping counts the intervals that intersect [start, end).
func Overlapping(existing []models.Booking, start, end time.Time) int {
	n := 0
	for _, b := range existing {
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			n++
		}
	}
	return n
}
