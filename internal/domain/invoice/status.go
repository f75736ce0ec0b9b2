package invoice

import "github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid || s == StatusOverdue
}

// Outstanding invoices count towards a client's balance.
func (s Status) Outstanding() bool {
	return s == StatusPending || s == StatusOverdue
}

var OutstandingStatuses = []string{string(StatusPending), string(StatusOverdue)}

// CanTransition allows any move between valid statuses except leaving paid.
func CanTransition(from, to Status) error {
	if !to.Valid() {
		return httperr.ErrBusiness("invalid_status")
	}
	if from == StatusPaid && to != StatusPaid {
		return httperr.ErrBusiness("invoice_already_paid")
	}
	return nil
}

func CanPay(current Status) error {
	if current == StatusPaid {
		return httperr.ErrBusiness("invoice_already_paid")
	}
	return nil
}
