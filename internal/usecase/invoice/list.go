package invoice

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/invoice"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

const RecentLimit = 5

type QueryInvoices struct {
	repo domain.Repository
}

func NewQueryInvoices(repo domain.Repository) *QueryInvoices {
	return &QueryInvoices{repo: repo}
}

func (uc *QueryInvoices) List(ctx context.Context, f domain.Filter) ([]models.Invoice, error) {
	if f.Status != "" && !domain.Status(f.Status).Valid() {
		return nil, httperr.ErrBusiness("invalid_status")
	}
	invoices, err := uc.repo.ListInvoices(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// Recent returns the latest invoices of one client.
func (uc *QueryInvoices) Recent(ctx context.Context, companyID, clientID uint) ([]models.Invoice, error) {
	return uc.List(ctx, domain.Filter{CompanyID: companyID, ClientID: clientID, Limit: RecentLimit})
}

// Get loads one invoice. A non-zero clientID restricts it to that client.
func (uc *QueryInvoices) Get(ctx context.Context, companyID, clientID, invoiceID uint) (*models.Invoice, error) {
	inv, err := uc.repo.GetInvoice(ctx, companyID, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("invoice_not_found")
		}
		return nil, err
	}
	if clientID != 0 && inv.ClientID != clientID {
		return nil, httperr.ErrBusiness("invoice_not_found")
	}
	return inv, nil
}
