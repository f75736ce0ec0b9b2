package booking

import "github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Active bookings hold capacity and show up as upcoming.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ActiveStatuses is the set used in capacity and upcoming queries.
var ActiveStatuses = []string{string(StatusPending), string(StatusConfirmed)}

// ===============================
// Sources
// ===============================

const (
	SourceStaff  = "staff"
	SourcePortal = "portal"
)

// InitialStatus is confirmed for bookings entered by staff and pending for
// requests made through the portal.
func InitialStatus(source string) Status {
	if source == SourcePortal {
		return StatusPending
	}
	return StatusConfirmed
}

// ===============================
// Transitions
// ===============================

func CanConfirm(current Status) error {
	if current != StatusPending {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanCancel(current Status) error {
	if !current.Active() {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanReschedule(current Status) error {
	if !current.Active() {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}
