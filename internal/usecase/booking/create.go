package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/domain/promotion"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	Actor Actor

	ClientID  uint
	ServiceID uint

	Date string
	Time string

	Bedrooms  int
	Bathrooms int
	Address   string
	Notes     string

	RecurringType string
	PromotionCode string
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	clock clock
}

func NewCreateBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CreateBooking {
	return &CreateBooking{
		repo:  repo,
		audit: audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	// --------------------------------------------------
	// Required fields
	// --------------------------------------------------
	if in.ServiceID == 0 || in.Date == "" || in.Time == "" {
		return nil, httperr.ErrBusiness("incomplete_booking")
	}
	if in.ClientID == 0 {
		return nil, httperr.ErrBusiness("client_required")
	}
	if err := domain.ValidateRooms(in.Bedrooms, in.Bathrooms); err != nil {
		return nil, err
	}
	if err := domain.ValidRecurrence(in.RecurringType); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Company and local time
	// --------------------------------------------------
	company, err := uc.repo.GetCompany(ctx, in.Actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	loc := timezone.Location(company.Timezone)

	start, err := parseStart(company.Timezone, in.Date, in.Time)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Service and client
	// --------------------------------------------------
	service, err := uc.repo.GetService(ctx, company.ID, in.ServiceID)
	if err != nil || !service.Active {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	client, err := uc.repo.GetClient(ctx, company.ID, in.ClientID)
	if err != nil {
		return nil, httperr.ErrBusiness("client_not_found")
	}
	if !client.IsActive {
		return nil, httperr.ErrBusiness("client_inactive")
	}

	end := start.Add(time.Duration(service.DurationMin) * time.Minute)
	now := uc.clock.now().In(loc)

	address := in.Address
	if address == "" {
		address = client.Address
	}
	recurring := in.RecurringType
	if recurring == "" {
		recurring = domain.RecurNone
	}

	b := &models.Booking{
		Reference:      uuid.NewString(),
		CompanyID:      company.ID,
		ClientID:       client.ID,
		ServiceID:      service.ID,
		StartTime:      start.UTC(),
		EndTime:        end.UTC(),
		Bedrooms:       in.Bedrooms,
		Bathrooms:      in.Bathrooms,
		Address:        address,
		Notes:          in.Notes,
		EstimatedPrice: domain.Estimate(*service, in.Bedrooms, in.Bathrooms),
		RecurringType:  recurring,
		Status:         string(domain.InitialStatus(in.Actor.Source())),
		Source:         in.Actor.Source(),
	}
	if b.Status == string(domain.StatusConfirmed) {
		confirmedAt := now.UTC()
		b.ConfirmedAt = &confirmedAt
	}

	// --------------------------------------------------
	// Slot check, promotion and insert in one transaction
	// --------------------------------------------------
	err = uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		if err := checkSlot(ctx, tx, company, start, end, now, 0); err != nil {
			return err
		}

		if in.PromotionCode != "" {
			code := promotion.NormalizeCode(in.PromotionCode)
			promo, err := tx.GetPromotionByCode(ctx, company.ID, code)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return httperr.ErrBusiness("promotion_not_found")
				}
				return err
			}
			discount, err := promotion.Redeem(*promo, b.EstimatedPrice, now, loc)
			if err != nil {
				return err
			}
			b.Discount = discount
			b.PromotionCode = promo.Code
			if err := tx.IncrementPromotionUsage(ctx, promo.ID); err != nil {
				return err
			}
		}

		if err := tx.CreateBooking(ctx, b); err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		title := "Booking confirmed"
		if b.Status == string(domain.StatusPending) {
			title = "Booking requested"
		}
		notifyClient(ctx, tx, b, title,
			fmt.Sprintf("%s on %s", service.Name, describe(b, loc)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.Client = *client
	b.Service = *service

	dispatch(uc.audit, in.Actor, "booking_created", b, map[string]any{
		"source": b.Source,
		"start":  b.StartTime,
	})

	return b, nil
}
