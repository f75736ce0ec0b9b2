package booking

import (
	"time"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

type TimeSlot struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Remaining int    `json:"remaining"`
}

type SlotInput struct {
	Settings Settings
	Hours    []models.BusinessHours
	Day      time.Time
	Duration time.Duration
	Now      time.Time
	Existing []models.Booking
}

// ComputeSlots walks the business day in slot-interval steps and keeps the
// starts where the whole service fits, the lead time is respected and
// capacity remains.
func ComputeSlots(in SlotInput) []TimeSlot {
	slots := []TimeSlot{}

	w, ok := DayWindow(in.Hours, in.Day)
	if !ok || in.Duration <= 0 {
		return slots
	}

	earliest := in.Now.Add(in.Settings.MinAdvance)

	for cur := w.Open; !cur.Add(in.Duration).After(w.Close); cur = cur.Add(in.Settings.SlotInterval) {
		end := cur.Add(in.Duration)
		if cur.Before(earliest) {
			continue
		}

		remaining := in.Settings.MaxConcurrent - Overlapping(in.Existing, cur, end)
		if remaining <= 0 {
			continue
		}

		slots = append(slots, TimeSlot{
			Start:     cur.In(in.Settings.Location).Format(timezone.ClockLayout),
			End:       end.In(in.Settings.Location).Format(timezone.ClockLayout),
			Remaining: remaining,
		})
	}

	return slots
}
