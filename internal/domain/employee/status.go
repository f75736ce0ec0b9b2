package employee

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

const (
	StatusActive     = "active"
	StatusTerminated = "terminated"
	StatusLaidOff    = "laid_off"
	StatusResigned   = "resigned"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusTerminated, StatusLaidOff, StatusResigned:
		return true
	}
	return false
}

// ChangeStatus sets the employment status. Leaving the company needs a
// reason and a date; returning to active clears both.
func ChangeStatus(e *models.Employee, status, reason string, date *time.Time) error {
	if !ValidStatus(status) {
		return httperr.ErrBusiness("invalid_status")
	}

	if status == StatusActive {
		e.EmploymentStatus = StatusActive
		e.TerminationDate = nil
		e.TerminationReason = ""
		return nil
	}

	if strings.TrimSpace(reason) == "" || date == nil {
		return httperr.ErrBusiness("termination_details_required")
	}
	if date.Before(e.StartDate) {
		return httperr.ErrBusiness("termination_before_start")
	}

	e.EmploymentStatus = status
	e.TerminationReason = strings.TrimSpace(reason)
	e.TerminationDate = date
	return nil
}

func ValidatePerformance(p int) error {
	if p < 0 || p > 100 {
		return httperr.ErrBusiness("invalid_performance")
	}
	return nil
}
