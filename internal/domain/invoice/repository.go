package invoice

import (
	"context"
	"time"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

type Filter struct {
	CompanyID uint
	ClientID  uint
	Status    string
	Query     string
	Limit     int
}

type Repository interface {
	WithTx(ctx context.Context, fn func(Repository) error) error

	GetCompany(ctx context.Context, id uint) (*models.Company, error)
	LockCompany(ctx context.Context, id uint) error
	GetClient(ctx context.Context, companyID, clientID uint) (*models.Client, error)
	GetService(ctx context.Context, companyID, serviceID uint) (*models.Service, error)
	GetBooking(ctx context.Context, companyID, bookingID uint) (*models.Booking, error)

	// ListNumbers locks and returns the company's invoice numbers with prefix.
	ListNumbers(ctx context.Context, companyID uint, prefix string) ([]string, error)
	InvoiceExistsForBooking(ctx context.Context, bookingID uint) (bool, error)

	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	UpdateInvoice(ctx context.Context, inv *models.Invoice) error
	GetInvoice(ctx context.Context, companyID, invoiceID uint) (*models.Invoice, error)
	GetInvoiceByID(ctx context.Context, invoiceID uint) (*models.Invoice, error)
	ListInvoices(ctx context.Context, f Filter) ([]models.Invoice, error)

	// MarkOverdue flips pending invoices due before cutoff and returns how
	// many changed.
	MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
}
