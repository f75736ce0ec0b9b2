// Package dashboard aggregates the numbers shown on the staff and portal
// home screens. Results are cached briefly because the screens poll.
package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	bookingdomain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	invoicedomain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/invoice"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/dto"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/cache"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/money"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

const upcomingLimit = 5

type StaffSummary struct {
	TodayBookings      []dto.BookingListDTO `json:"today_bookings"`
	Upcoming           []dto.BookingListDTO `json:"upcoming"`
	ActiveClients      int64                `json:"active_clients"`
	ActiveEmployees    int64                `json:"active_employees"`
	RevenueThisMonth   float64              `json:"revenue_this_month"`
	OutstandingBalance float64              `json:"outstanding_balance"`
	PendingReviews     int64                `json:"pending_reviews"`
	GeneratedAt        time.Time            `json:"generated_at"`
}

type Balance struct {
	Amount       float64 `json:"amount"`
	DaysUntilDue *int    `json:"days_until_due"`
}

type PortalSummary struct {
	NextService         *dto.BookingListDTO `json:"next_service"`
	Balance             Balance             `json:"balance"`
	UnreadMessages      int64               `json:"unread_messages"`
	UnreadNotifications int64               `json:"unread_notifications"`
	GeneratedAt         time.Time           `json:"generated_at"`
}

type Service struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewService(db *gorm.DB, c cache.Cache, ttl time.Duration) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{db: db, cache: c, ttl: ttl, now: time.Now}
}

func staffKey(companyID uint) string { return fmt.Sprintf("dashboard:staff:%d", companyID) }

func portalKey(companyID, clientID uint) string {
	return fmt.Sprintf("dashboard:portal:%d:%d", companyID, clientID)
}

// Invalidate drops cached summaries for a company and, when clientID is
// non-zero, for that client.
func (s *Service) Invalidate(ctx context.Context, companyID, clientID uint) {
	if s == nil {
		return
	}
	keys := []string{staffKey(companyID)}
	if clientID != 0 {
		keys = append(keys, portalKey(companyID, clientID))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		zap.L().Warn("dashboard cache invalidate failed", zap.Error(err))
	}
}

// ======================================================
// STAFF
// ======================================================

func (s *Service) Staff(ctx context.Context, companyID uint) (*StaffSummary, error) {
	var cached StaffSummary
	if ok, err := s.cache.Get(ctx, staffKey(companyID), &cached); err == nil && ok {
		return &cached, nil
	}

	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, companyID).Error; err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	loc := timezone.Location(company.Timezone)
	now := s.now().In(loc)
	today := timezone.StartOfDay(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	out := &StaffSummary{GeneratedAt: now.UTC()}
	g, gctx := errgroup.WithContext(ctx)
	db := s.db.WithContext(gctx)

	g.Go(func() error {
		var rows []models.Booking
		err := db.Preload("Client").Preload("Service").
			Where("company_id = ? AND start_time >= ? AND start_time < ? AND status <> ?",
				companyID, today.UTC(), today.AddDate(0, 0, 1).UTC(), string(bookingdomain.StatusCancelled)).
			Order("start_time ASC").
			Find(&rows).Error
		out.TodayBookings = dto.BookingLists(rows)
		return err
	})

	g.Go(func() error {
		var rows []models.Booking
		err := db.Preload("Client").Preload("Service").
			Where("company_id = ? AND status IN ? AND start_time >= ?",
				companyID, bookingdomain.ActiveStatuses, now.UTC()).
			Order("start_time ASC").
			Limit(upcomingLimit).
			Find(&rows).Error
		out.Upcoming = dto.BookingLists(rows)
		return err
	})

	g.Go(func() error {
		return db.Model(&models.Client{}).
			Where("company_id = ? AND is_active = ?", companyID, true).
			Count(&out.ActiveClients).Error
	})

	g.Go(func() error {
		return db.Model(&models.Employee{}).
			Where("company_id = ? AND employment_status = ?", companyID, "active").
			Count(&out.ActiveEmployees).Error
	})

	g.Go(func() error {
		v, err := sumInvoices(db.Where("company_id = ? AND status = ? AND paid_at >= ?",
			companyID, string(invoicedomain.StatusPaid), monthStart.UTC()))
		out.RevenueThisMonth = v
		return err
	})

	g.Go(func() error {
		v, err := sumInvoices(db.Where("company_id = ? AND status IN ?",
			companyID, invoicedomain.OutstandingStatuses))
		out.OutstandingBalance = v
		return err
	})

	g.Go(func() error {
		return db.Model(&models.Review{}).
			Where("company_id = ? AND status = ?", companyID, "pending").
			Count(&out.PendingReviews).Error
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("staff dashboard: %w", err)
	}

	s.store(ctx, staffKey(companyID), out)
	return out, nil
}

// ======================================================
// PORTAL
// ======================================================

func (s *Service) Portal(ctx context.Context, companyID, clientID uint) (*PortalSummary, error) {
	key := portalKey(companyID, clientID)

	var cached PortalSummary
	if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
		return &cached, nil
	}

	var company models.Company
	if err := s.db.WithContext(ctx).First(&company, companyID).Error; err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}
	loc := timezone.Location(company.Timezone)
	now := s.now().In(loc)

	out := &PortalSummary{GeneratedAt: now.UTC()}
	g, gctx := errgroup.WithContext(ctx)
	db := s.db.WithContext(gctx)

	g.Go(func() error {
		var rows []models.Booking
		err := db.Preload("Client").Preload("Service").
			Where("company_id = ? AND client_id = ? AND status IN ? AND start_time >= ?",
				companyID, clientID, bookingdomain.ActiveStatuses, now.UTC()).
			Order("start_time ASC").
			Limit(1).
			Find(&rows).Error
		if err == nil && len(rows) == 1 {
			next := dto.BookingList(rows[0])
			out.NextService = &next
		}
		return err
	})

	g.Go(func() error {
		var rows []models.Invoice
		err := db.Select("id", "amount", "due_date").
			Where("company_id = ? AND client_id = ? AND status IN ?",
				companyID, clientID, invoicedomain.OutstandingStatuses).
			Order("due_date ASC").
			Find(&rows).Error
		if err != nil {
			return err
		}
		out.Balance = balanceOf(rows, now)
		return nil
	})

	g.Go(func() error {
		return db.Model(&models.Message{}).
			Where("company_id = ? AND client_id = ? AND sender = ? AND read = ?",
				companyID, clientID, models.SenderCompany, false).
			Count(&out.UnreadMessages).Error
	})

	g.Go(func() error {
		return db.Model(&models.Notification{}).
			Where("company_id = ? AND client_id = ? AND read = ?", companyID, clientID, false).
			Count(&out.UnreadNotifications).Error
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("portal dashboard: %w", err)
	}

	s.store(ctx, key, out)
	return out, nil
}

func (s *Service) store(ctx context.Context, key string, v any) {
	if s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, v, s.ttl); err != nil {
		zap.L().Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func sumInvoices(q *gorm.DB) (float64, error) {
	var total float64
	err := q.Model(&models.Invoice{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return money.Round(total), err
}

// balanceOf totals outstanding invoices sorted by due date and reports the
// days until the earliest one is due. Negative days mean overdue.
func balanceOf(rows []models.Invoice, now time.Time) Balance {
	amounts := make([]float64, 0, len(rows))
	for _, inv := range rows {
		amounts = append(amounts, inv.Amount)
	}

	b := Balance{Amount: money.Sum(amounts...)}
	if len(rows) > 0 {
		due := timezone.StartOfDay(rows[0].DueDate.In(now.Location()))
		days := int(math.Round(due.Sub(timezone.StartOfDay(now)).Hours() / 24))
		b.DaysUntilDue = &days
	}
	return b
}
