// Package payments creates hosted checkouts for invoices and looks up the
// resulting payments.
package payments

import (
	"context"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
)

const (
	StatusApproved = "approved"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

type CheckoutRequest struct {
	Reference string
	Title     string
	Amount    float64
	Currency  string
}

type Checkout struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Payment struct {
	ID        string
	Status    string
	Reference string
	Amount    float64
}

type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
}

// Disabled is used when no payment provider is configured.
type Disabled struct{}

func (Disabled) CreateCheckout(context.Context, CheckoutRequest) (*Checkout, error) {
	return nil, httperr.ErrBusiness("payments_disabled")
}

func (Disabled) GetPayment(context.Context, string) (*Payment, error) {
	return nil, httperr.ErrBusiness("payments_disabled")
}
