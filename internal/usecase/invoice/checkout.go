package invoice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/invoice"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/payments"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

const referencePrefix = "invoice:"

func paymentReference(invoiceID uint) string {
	return referencePrefix + strconv.FormatUint(uint64(invoiceID), 10)
}

func parseReference(ref string) (uint, bool) {
	if !strings.HasPrefix(ref, referencePrefix) {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(ref, referencePrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

// ======================================================
// CHECKOUT
// ======================================================

type Checkout struct {
	query   *QueryInvoices
	gateway payments.Gateway
}

func NewCheckout(repo domain.Repository, gateway payments.Gateway) *Checkout {
	return &Checkout{query: NewQueryInvoices(repo), gateway: gateway}
}

// Execute opens a hosted checkout for an outstanding invoice of the client.
func (uc *Checkout) Execute(ctx context.Context, companyID, clientID, invoiceID uint) (*payments.Checkout, error) {
	inv, err := uc.query.Get(ctx, companyID, clientID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !domain.Status(inv.Status).Outstanding() {
		return nil, httperr.ErrBusiness("invoice_already_paid")
	}
	if inv.Amount <= 0 {
		return nil, httperr.ErrBusiness("nothing_to_pay")
	}

	return uc.gateway.CreateCheckout(ctx, payments.CheckoutRequest{
		Reference: paymentReference(inv.ID),
		Title:     fmt.Sprintf("Invoice %s", inv.Number),
		Amount:    inv.Amount,
		Currency:  inv.Currency,
	})
}

// ======================================================
// CONFIRM PAYMENT (webhook)
// ======================================================

type ConfirmPayment struct {
	repo    domain.Repository
	gateway payments.Gateway
	audit   *audit.Dispatcher
	now     func() time.Time
}

func NewConfirmPayment(repo domain.Repository, gateway payments.Gateway, audit *audit.Dispatcher) *ConfirmPayment {
	return &ConfirmPayment{repo: repo, gateway: gateway, audit: audit, now: time.Now}
}

// Execute looks the payment up at the provider and settles the invoice it
// references. Unapproved payments and replays are no-ops.
func (uc *ConfirmPayment) Execute(ctx context.Context, paymentID string) (*models.Invoice, error) {
	p, err := uc.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != payments.StatusApproved {
		zap.L().Info("payment not approved", zap.String("payment_id", p.ID), zap.String("status", p.Status))
		return nil, nil
	}

	invoiceID, ok := parseReference(p.Reference)
	if !ok {
		return nil, httperr.ErrBusiness("unknown_payment_reference")
	}

	inv, err := uc.repo.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("invoice_not_found")
		}
		return nil, err
	}
	if inv.Status == string(domain.StatusPaid) {
		return inv, nil
	}

	if err := applyStatus(inv, domain.StatusPaid, p.ID, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	notifyPaid(ctx, uc.repo, inv)

	uc.audit.Dispatch(audit.Event{
		CompanyID: inv.CompanyID,
		Action:    "invoice_paid_online",
		Entity:    "invoice",
		EntityID:  &inv.ID,
		Metadata:  map[string]any{"payment_id": p.ID, "amount": p.Amount},
	})
	return inv, nil
}

// ======================================================
// OVERDUE SWEEP
// ======================================================

type SweepOverdue struct {
	repo domain.Repository
	now  func() time.Time
}

func NewSweepOverdue(repo domain.Repository) *SweepOverdue {
	return &SweepOverdue{repo: repo, now: time.Now}
}

func (uc *SweepOverdue) Name() string { return "invoice_overdue_sweep" }

// Run marks pending invoices as overdue once their whole due day has passed.
func (uc *SweepOverdue) Run(ctx context.Context) error {
	n, err := uc.repo.MarkOverdue(ctx, uc.now().Add(-24*time.Hour))
	if err != nil {
		return err
	}
	if n > 0 {
		zap.L().Info("invoices marked overdue", zap.Int64("count", n))
	}
	return nil
}
