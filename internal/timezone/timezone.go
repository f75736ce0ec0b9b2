package timezone

import "time"

const DefaultTimezone = "America/New_York"

const (
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"
	DateTimeLayout = "2006-01-02 15:04"
)

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Now() time.Time {
	return time.Now().In(Location(DefaultTimezone))
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// --------------------------------------------------
// Parsing in the company's timezone
// --------------------------------------------------

func ParseDateIn(tz, dateStr string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, dateStr, Location(tz))
}

func ParseDateTimeIn(tz, dateStr, clock string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, dateStr+" "+clock, Location(tz))
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// At returns the wall-clock "HH:MM" on the day of t, in t's location.
func At(day time.Time, hm string) (time.Time, error) {
	c, err := time.Parse(ClockLayout, hm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, day.Location()), nil
}
