package employee

import (
	"time"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/money"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

const (
	EntryPending  = "pending"
	EntryApproved = "approved"
	EntryRejected = "rejected"
)

func ValidEntryStatus(s string) bool {
	return s == EntryPending || s == EntryApproved || s == EntryRejected
}

// Hours is the worked time of an entry: end - start - break, in hours.
func Hours(e models.TimeEntry) (float64, error) {
	if _, err := time.Parse(timezone.DateLayout, e.WorkDate); err != nil {
		return 0, httperr.ErrBusiness("invalid_date")
	}
	start, err1 := time.Parse(timezone.ClockLayout, e.StartTime)
	end, err2 := time.Parse(timezone.ClockLayout, e.EndTime)
	if err1 != nil || err2 != nil {
		return 0, httperr.ErrBusiness("invalid_time")
	}
	if !end.After(start) {
		return 0, httperr.ErrBusiness("end_before_start")
	}

	span := end.Sub(start)
	brk := time.Duration(e.BreakMinutes) * time.Minute
	if e.BreakMinutes < 0 || brk >= span {
		return 0, httperr.ErrBusiness("invalid_break")
	}
	return money.Round((span - brk).Hours()), nil
}

type Payroll struct {
	EmployeeID  uint    `json:"employee_id"`
	Period      string  `json:"period"`
	HourlyRate  float64 `json:"hourly_rate"`
	Hours       float64 `json:"hours"`
	PendingHrs  float64 `json:"pending_hours"`
	Earnings    float64 `json:"earnings"`
	EntriesUsed int     `json:"entries"`
}

// ComputePayroll sums approved entries dated inside month (YYYY-MM).
// Pending entries are reported separately and not paid.
func ComputePayroll(e models.Employee, entries []models.TimeEntry, month string) Payroll {
	p := Payroll{EmployeeID: e.ID, Period: month, HourlyRate: e.HourlyRate}

	var approved, pending []float64
	for _, te := range entries {
		if len(te.WorkDate) < 7 || te.WorkDate[:7] != month {
			continue
		}
		h, err := Hours(te)
		if err != nil {
			continue
		}
		switch te.Status {
		case EntryApproved:
			approved = append(approved, h)
			p.EntriesUsed++
		case EntryPending:
			pending = append(pending, h)
		}
	}

	p.Hours = money.Sum(approved...)
	p.PendingHrs = money.Sum(pending...)
	p.Earnings = money.Round(p.Hours * e.HourlyRate)
	return p
}
