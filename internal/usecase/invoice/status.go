package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/invoice"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

type UpdateInvoiceStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewUpdateInvoiceStatus(repo domain.Repository, audit *audit.Dispatcher) *UpdateInvoiceStatus {
	return &UpdateInvoiceStatus{repo: repo, audit: audit, now: time.Now}
}

// Execute moves an invoice to status. Moving to paid records the payment
// time and reference.
func (uc *UpdateInvoiceStatus) Execute(
	ctx context.Context,
	companyID uint,
	userID *uint,
	invoiceID uint,
	status string,
	reference string,
) (*models.Invoice, error) {

	inv, err := uc.repo.GetInvoice(ctx, companyID, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("invoice_not_found")
		}
		return nil, err
	}

	if err := applyStatus(inv, domain.Status(status), reference, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}

	if inv.Status == string(domain.StatusPaid) {
		notifyPaid(ctx, uc.repo, inv)
	}

	uc.audit.Dispatch(audit.Event{
		CompanyID: companyID,
		UserID:    userID,
		Action:    "invoice_status_changed",
		Entity:    "invoice",
		EntityID:  &inv.ID,
		Metadata:  map[string]any{"status": inv.Status},
	})
	return inv, nil
}

func applyStatus(inv *models.Invoice, to domain.Status, reference string, now time.Time) error {
	if to == domain.StatusPaid {
		if err := domain.CanPay(domain.Status(inv.Status)); err != nil {
			return err
		}
		paidAt := now.UTC()
		inv.PaidAt = &paidAt
		inv.PaymentReference = reference
	} else if err := domain.CanTransition(domain.Status(inv.Status), to); err != nil {
		return err
	}
	inv.Status = string(to)
	return nil
}

func notifyPaid(ctx context.Context, repo domain.Repository, inv *models.Invoice) {
	err := repo.CreateNotification(ctx, &models.Notification{
		CompanyID: inv.CompanyID,
		ClientID:  inv.ClientID,
		Title:     "Payment received",
		Message:   fmt.Sprintf("Invoice %s is paid. Thank you!", inv.Number),
		Type:      models.NotificationPayment,
	})
	if err != nil {
		zap.L().Warn("payment notification failed",
			zap.Uint("invoice_id", inv.ID),
			zap.Error(err),
		)
	}
}
