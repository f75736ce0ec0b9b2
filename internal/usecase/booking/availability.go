package booking

import (
	"context"
	"fmt"
	"time"

	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

type GetAvailability struct {
	repo  domain.Repository
	clock clock
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{repo: repo}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	companyID uint,
	serviceID uint,
	date string,
) ([]domain.TimeSlot, error) {

	company, err := uc.repo.GetCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}

	day, err := timezone.ParseDateIn(company.Timezone, date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	service, err := uc.repo.GetService(ctx, companyID, serviceID)
	if err != nil || !service.Active {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	hours, err := uc.repo.ListBusinessHours(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load business hours: %w", err)
	}

	existing, err := uc.repo.ListBookings(ctx, domain.Filter{
		CompanyID: companyID,
		From:      day,
		To:        day.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	active := existing[:0]
	for _, b := range existing {
		if domain.Status(b.Status).Active() {
			active = append(active, b)
		}
	}

	settings := domain.SettingsFor(*company)
	return domain.ComputeSlots(domain.SlotInput{
		Settings: settings,
		Hours:    hours,
		Day:      day,
		Duration: time.Duration(service.DurationMin) * time.Minute,
		Now:      uc.clock.now().In(settings.Location),
		Existing: active,
	}), nil
}
