package payments

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
)

type MercadoPago struct {
	preferences     preference.Client
	payments        payment.Client
	notificationURL string
}

func NewMercadoPago(accessToken, notificationURL string) (*MercadoPago, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPago{
		preferences:     preference.NewClient(cfg),
		payments:        payment.NewClient(cfg),
		notificationURL: notificationURL,
	}, nil
}

func (m *MercadoPago) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	pref, err := m.preferences.Create(ctx, preference.Request{
		Items: []preference.ItemRequest{{
			Title:      req.Title,
			Quantity:   1,
			UnitPrice:  req.Amount,
			CurrencyID: req.Currency,
		}},
		ExternalReference: req.Reference,
		NotificationURL:   m.notificationURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}
	return &Checkout{ID: pref.ID, URL: pref.InitPoint}, nil
}

func (m *MercadoPago) GetPayment(ctx context.Context, id string) (*Payment, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_payment_id")
	}

	p, err := m.payments.Get(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &Payment{
		ID:        strconv.Itoa(p.ID),
		Status:    p.Status,
		Reference: p.ExternalReference,
		Amount:    p.TransactionAmount,
	}, nil
}

var _ Gateway = (*MercadoPago)(nil)
