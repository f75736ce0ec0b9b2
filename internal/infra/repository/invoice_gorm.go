package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/invoice"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

type InvoiceGormRepository struct {
	db *gorm.DB
}

func NewInvoiceGormRepository(db *gorm.DB) *InvoiceGormRepository {
	return &InvoiceGormRepository{db: db}
}

func (r *InvoiceGormRepository) WithTx(ctx context.Context, fn func(domain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&InvoiceGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Lookups
// --------------------------------------------------

func (r *InvoiceGormRepository) GetCompany(ctx context.Context, id uint) (*models.Company, error) {
	var c models.Company
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *InvoiceGormRepository) GetClient(ctx context.Context, companyID, clientID uint) (*models.Client, error) {
	var c models.Client
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", clientID, companyID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *InvoiceGormRepository) GetService(ctx context.Context, companyID, serviceID uint) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", serviceID, companyID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *InvoiceGormRepository) GetBooking(ctx context.Context, companyID, bookingID uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Service").
		Where("id = ? AND company_id = ?", bookingID, companyID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// --------------------------------------------------
// Numbering
// --------------------------------------------------

func (r *InvoiceGormRepository) LockCompany(ctx context.Context, id uint) error {
	return lockCompany(ctx, r.db, id)
}

func (r *InvoiceGormRepository) ListNumbers(ctx context.Context, companyID uint, prefix string) ([]string, error) {
	var rows []models.Invoice
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "number").
		Where("company_id = ? AND number LIKE ?", companyID, prefix+"%").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	numbers := make([]string, 0, len(rows))
	for _, inv := range rows {
		numbers = append(numbers, inv.Number)
	}
	return numbers, nil
}

func (r *InvoiceGormRepository) InvoiceExistsForBooking(ctx context.Context, bookingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("booking_id = ?", bookingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --------------------------------------------------
// Invoice
// --------------------------------------------------

func (r *InvoiceGormRepository) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	// Line items are inserted with the invoice; the client is not.
	return r.db.WithContext(ctx).Omit("Client").Create(inv).Error
}

func (r *InvoiceGormRepository) UpdateInvoice(ctx context.Context, inv *models.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(inv).Error
}

func (r *InvoiceGormRepository) GetInvoice(ctx context.Context, companyID, invoiceID uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("id = ? AND company_id = ?", invoiceID, companyID).
		First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceGormRepository) GetInvoiceByID(ctx context.Context, invoiceID uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Client").
		First(&inv, invoiceID).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceGormRepository) ListInvoices(ctx context.Context, f domain.Filter) ([]models.Invoice, error) {
	q := r.db.WithContext(ctx).
		Preload("Client").
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("invoices.company_id = ?", f.CompanyID)

	if f.ClientID != 0 {
		q = q.Where("invoices.client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		q = q.Where("invoices.status = ?", f.Status)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Joins("JOIN clients ON clients.id = invoices.client_id").
			Where("invoices.number LIKE ? OR invoices.service_name LIKE ? OR clients.name LIKE ?", like, like, like)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var invoices []models.Invoice
	if err := q.Order("invoices.issued_at DESC, invoices.id DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *InvoiceGormRepository) MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("status = ? AND due_date < ?", string(domain.StatusPending), cutoff.UTC()).
		Update("status", string(domain.StatusOverdue))
	return res.RowsAffected, res.Error
}

func (r *InvoiceGormRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

var _ domain.Repository = (*InvoiceGormRepository)(nil)
