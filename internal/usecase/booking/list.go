package booking

import (
	"context"
	"fmt"
	"time"

	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/dto"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

const DefaultUpcomingLimit = 5

type ListBookings struct {
	repo  domain.Repository
	clock clock
}

func NewListBookings(repo domain.Repository) *ListBookings {
	return &ListBookings{repo: repo}
}

func (uc *ListBookings) location(ctx context.Context, companyID uint) (*time.Location, error) {
	company, err := uc.repo.GetCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	return timezone.Location(company.Timezone), nil
}

// ByDate lists one local calendar day.
func (uc *ListBookings) ByDate(ctx context.Context, f domain.Filter, date string) ([]dto.BookingListDTO, error) {
	loc, err := uc.location(ctx, f.CompanyID)
	if err != nil {
		return nil, err
	}
	day, err := time.ParseInLocation(timezone.DateLayout, date, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	f.From = day
	f.To = day.AddDate(0, 0, 1)
	return uc.list(ctx, f)
}

// ByMonth lists a local calendar month.
func (uc *ListBookings) ByMonth(ctx context.Context, f domain.Filter, year, month int) ([]dto.BookingListDTO, error) {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return nil, httperr.ErrBusiness("invalid_month")
	}
	loc, err := uc.location(ctx, f.CompanyID)
	if err != nil {
		return nil, err
	}

	f.From = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	f.To = f.From.AddDate(0, 1, 0)
	return uc.list(ctx, f)
}

// ByRange lists [from, to] inclusive of both local days.
func (uc *ListBookings) ByRange(ctx context.Context, f domain.Filter, from, to string) ([]dto.BookingListDTO, error) {
	loc, err := uc.location(ctx, f.CompanyID)
	if err != nil {
		return nil, err
	}
	start, err1 := time.ParseInLocation(timezone.DateLayout, from, loc)
	end, err2 := time.ParseInLocation(timezone.DateLayout, to, loc)
	if err1 != nil || err2 != nil || end.Before(start) {
		return nil, httperr.ErrBusiness("invalid_range")
	}

	f.From = start
	f.To = end.AddDate(0, 0, 1)
	return uc.list(ctx, f)
}

func (uc *ListBookings) All(ctx context.Context, f domain.Filter) ([]dto.BookingListDTO, error) {
	return uc.list(ctx, f)
}

// Upcoming returns pending or confirmed bookings starting from now, soonest
// first. clientID 0 means every client.
func (uc *ListBookings) Upcoming(ctx context.Context, companyID, clientID uint, limit int) ([]dto.BookingListDTO, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	bookings, err := uc.repo.ListUpcoming(ctx, companyID, clientID, uc.clock.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming: %w", err)
	}
	return dto.BookingLists(bookings), nil
}

func (uc *ListBookings) list(ctx context.Context, f domain.Filter) ([]dto.BookingListDTO, error) {
	bookings, err := uc.repo.ListBookings(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return dto.BookingLists(bookings), nil
}

// Get loads one booking visible to actor.
func (uc *ListBookings) Get(ctx context.Context, actor Actor, bookingID uint) (*models.Booking, error) {
	return loadOwned(ctx, uc.repo, actor, bookingID)
}
