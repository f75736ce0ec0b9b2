package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

func (r *BookingGormRepository) WithTx(
	ctx context.Context,
	fn func(domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Company
// --------------------------------------------------

func (r *BookingGormRepository) GetCompany(ctx context.Context, id uint) (*models.Company, error) {
	var c models.Company
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *BookingGormRepository) LockCompany(ctx context.Context, id uint) error {
	return lockCompany(ctx, r.db, id)
}

func (r *BookingGormRepository) ListBusinessHours(ctx context.Context, companyID uint) ([]models.BusinessHours, error) {
	var hours []models.BusinessHours
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {
		return nil, err
	}
	return hours, nil
}

// --------------------------------------------------
// Lookups
// --------------------------------------------------

func (r *BookingGormRepository) GetService(ctx context.Context, companyID, serviceID uint) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", serviceID, companyID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *BookingGormRepository) GetClient(ctx context.Context, companyID, clientID uint) (*models.Client, error) {
	var c models.Client
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", clientID, companyID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *BookingGormRepository) GetEmployee(ctx context.Context, companyID, employeeID uint) (*models.Employee, error) {
	var e models.Employee
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", employeeID, companyID).
		First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *BookingGormRepository) GetTeam(ctx context.Context, companyID, teamID uint) (*models.Team, error) {
	var t models.Team
	if err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", teamID, companyID).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *BookingGormRepository) GetPromotionByCode(ctx context.Context, companyID uint, code string) (*models.Promotion, error) {
	var p models.Promotion
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND code = ?", companyID, code).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *BookingGormRepository) IncrementPromotionUsage(ctx context.Context, promotionID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Promotion{}).
		Where("id = ?", promotionID).
		Update("usage_count", gorm.Expr("usage_count + 1")).Error
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) CreateBooking(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error
}

func (r *BookingGormRepository) UpdateBooking(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error
}

func (r *BookingGormRepository) GetBooking(ctx context.Context, companyID, bookingID uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Preload("AssignedEmployee").
		Preload("AssignedTeam").
		Where("id = ? AND company_id = ?", bookingID, companyID).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) ListActiveOverlapping(
	ctx context.Context,
	companyID uint,
	start, end time.Time,
	excludeID uint,
) ([]models.Booking, error) {

	// Postgres refuses FOR UPDATE with aggregates, so lock the rows and count
	// them in Go.
	var rows []models.Booking
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "start_time", "end_time").
		Where(
			"company_id = ? AND status IN ? AND start_time < ? AND end_time > ? AND id <> ?",
			companyID, domain.ActiveStatuses, end.UTC(), start.UTC(), excludeID,
		).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingGormRepository) ListBookings(ctx context.Context, f domain.Filter) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Preload("AssignedEmployee").
		Preload("AssignedTeam").
		Where("company_id = ?", f.CompanyID)

	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.EmployeeID != 0 {
		q = q.Where("assigned_employee_id = ?", f.EmployeeID)
	}
	if f.TeamID != 0 {
		q = q.Where("assigned_team_id = ?", f.TeamID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if !f.From.IsZero() {
		q = q.Where("start_time >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("start_time < ?", f.To.UTC())
	}

	var bookings []models.Booking
	if err := q.Order("start_time ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingGormRepository) ListUpcoming(
	ctx context.Context,
	companyID, clientID uint,
	now time.Time,
	limit int,
) ([]models.Booking, error) {

	q := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where("company_id = ? AND status IN ? AND start_time >= ?",
			companyID, domain.ActiveStatuses, now.UTC())
	if clientID != 0 {
		q = q.Where("client_id = ?", clientID)
	}

	var bookings []models.Booking
	if err := q.Order("start_time ASC").Limit(limit).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// --------------------------------------------------
// Side effects
// --------------------------------------------------

func (r *BookingGormRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
