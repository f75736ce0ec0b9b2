package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	bookingdomain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/invoice"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

// GenerateInvoiceInput bills either a booking (BookingID set) or an ad-hoc
// service visit.
type GenerateInvoiceInput struct {
	CompanyID uint
	UserID    *uint

	BookingID uint

	ClientID    uint
	ServiceID   uint
	ServiceDate string
	Bedrooms    int
	Bathrooms   int

	Additional      []domain.Item
	DiscountPercent float64
	DueDate         string
	Notes           string
}

// ======================================================
// USE CASE
// ======================================================

type GenerateInvoice struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	now   func() time.Time
}

func NewGenerateInvoice(repo domain.Repository, audit *audit.Dispatcher) *GenerateInvoice {
	return &GenerateInvoice{repo: repo, audit: audit, now: time.Now}
}

func (uc *GenerateInvoice) Execute(ctx context.Context, in GenerateInvoiceInput) (*models.Invoice, error) {
	company, err := uc.repo.GetCompany(ctx, in.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	loc := timezone.Location(company.Timezone)
	now := uc.now().In(loc)

	inv := &models.Invoice{
		CompanyID:       company.ID,
		DiscountPercent: in.DiscountPercent,
		Currency:        company.Currency,
		IssuedAt:        now.UTC(),
		Status:          string(domain.StatusPending),
		Notes:           in.Notes,
	}
	if inv.Currency == "" {
		inv.Currency = "USD"
	}

	var charges domain.Charges

	// --------------------------------------------------
	// Source: booking or ad-hoc
	// --------------------------------------------------
	if in.BookingID != 0 {
		b, err := uc.repo.GetBooking(ctx, company.ID, in.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, httperr.ErrBusiness("booking_not_found")
			}
			return nil, err
		}
		if bookingdomain.Status(b.Status) == bookingdomain.StatusCancelled {
			return nil, httperr.ErrBusiness("booking_cancelled")
		}
		charges = domain.ChargesFromBooking(*b, b.Service)
		bookingID := b.ID
		inv.BookingID = &bookingID
		inv.ClientID = b.ClientID
		inv.ServiceName = b.Service.Name
		inv.ServiceDate = b.StartTime
	} else {
		if in.ClientID == 0 || in.ServiceID == 0 || in.ServiceDate == "" {
			return nil, httperr.ErrBusiness("incomplete_invoice")
		}
		service, err := uc.repo.GetService(ctx, company.ID, in.ServiceID)
		if err != nil {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		date, err := timezone.ParseDateIn(company.Timezone, in.ServiceDate)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_date")
		}
		if err := bookingdomain.ValidateRooms(in.Bedrooms, in.Bathrooms); err != nil {
			return nil, err
		}

		charges = domain.Charges{
			ServiceName:   service.Name,
			BasePrice:     service.BasePrice,
			Bedrooms:      in.Bedrooms,
			BedroomPrice:  service.BedroomPrice,
			Bathrooms:     in.Bathrooms,
			BathroomPrice: service.BathroomPrice,
		}
		inv.ClientID = in.ClientID
		inv.ServiceName = service.Name
		inv.ServiceDate = date.UTC()
	}

	client, err := uc.repo.GetClient(ctx, company.ID, inv.ClientID)
	if err != nil {
		return nil, httperr.ErrBusiness("client_not_found")
	}

	charges.Additional = in.Additional
	if in.DiscountPercent > 0 {
		charges.DiscountPercent = in.DiscountPercent
	}

	items, amount, err := domain.BuildLineItems(charges)
	if err != nil {
		return nil, err
	}
	inv.LineItems = items
	inv.Amount = amount

	// --------------------------------------------------
	// Due date
	// --------------------------------------------------
	due, err := dueDate(company, in.DueDate, now)
	if err != nil {
		return nil, err
	}
	inv.DueDate = due.UTC()

	// --------------------------------------------------
	// Number and insert
	// --------------------------------------------------
	err = uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		if err := tx.LockCompany(ctx, company.ID); err != nil {
			return fmt.Errorf("lock company: %w", err)
		}
		if inv.BookingID != nil {
			exists, err := tx.InvoiceExistsForBooking(ctx, *inv.BookingID)
			if err != nil {
				return err
			}
			if exists {
				return httperr.ErrBusiness("already_invoiced")
			}
		}

		prefix := domain.Prefix(now.Year())
		numbers, err := tx.ListNumbers(ctx, company.ID, prefix)
		if err != nil {
			return err
		}
		inv.Number = domain.NextNumber(now.Year(), numbers)

		if err := tx.CreateInvoice(ctx, inv); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}

		return tx.CreateNotification(ctx, &models.Notification{
			CompanyID: company.ID,
			ClientID:  inv.ClientID,
			Title:     "New invoice " + inv.Number,
			Message:   fmt.Sprintf("%s for %s, due %s", formatAmount(inv), inv.ServiceName, due.Format("Jan 2")),
			Type:      models.NotificationPayment,
		})
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) && inv.BookingID != nil {
		return nil, httperr.ErrBusiness("already_invoiced")
	}
	if err != nil {
		return nil, err
	}
	inv.Client = *client

	uc.audit.Dispatch(audit.Event{
		CompanyID: company.ID,
		UserID:    in.UserID,
		Action:    "invoice_generated",
		Entity:    "invoice",
		EntityID:  &inv.ID,
		Metadata:  map[string]any{"number": inv.Number, "amount": inv.Amount},
	})

	return inv, nil
}

func dueDate(company *models.Company, raw string, now time.Time) (time.Time, error) {
	if raw != "" {
		d, err := timezone.ParseDateIn(company.Timezone, raw)
		if err != nil {
			return time.Time{}, httperr.ErrBusiness("invalid_due_date")
		}
		if d.Before(timezone.StartOfDay(now)) {
			return time.Time{}, httperr.ErrBusiness("invalid_due_date")
		}
		return d, nil
	}

	days := company.InvoiceDueDays
	if days <= 0 {
		days = 14
	}
	return timezone.StartOfDay(now).AddDate(0, 0, days), nil
}

func formatAmount(inv *models.Invoice) string {
	return fmt.Sprintf("%s %.2f", inv.Currency, inv.Amount)
}
