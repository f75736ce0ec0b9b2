package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

// Filter narrows booking listings. Zero values are ignored.
type Filter struct {
	CompanyID  uint
	ClientID   uint
	EmployeeID uint
	TeamID     uint
	Status     string
	From       time.Time
	To         time.Time
}

type Repository interface {
	// WithTx runs fn against a repository bound to one transaction.
	WithTx(ctx context.Context, fn func(Repository) error) error

	// -------- Company --------
	GetCompany(ctx context.Context, id uint) (*models.Company, error)
	// LockCompany takes a row lock on the company for the rest of the
	// transaction, serialising slot checks per company.
	LockCompany(ctx context.Context, id uint) error
	ListBusinessHours(ctx context.Context, companyID uint) ([]models.BusinessHours, error)

	// -------- Lookups --------
	GetService(ctx context.Context, companyID, serviceID uint) (*models.Service, error)
	GetClient(ctx context.Context, companyID, clientID uint) (*models.Client, error)
	GetEmployee(ctx context.Context, companyID, employeeID uint) (*models.Employee, error)
	GetTeam(ctx context.Context, companyID, teamID uint) (*models.Team, error)
	GetPromotionByCode(ctx context.Context, companyID uint, code string) (*models.Promotion, error)
	IncrementPromotionUsage(ctx context.Context, promotionID uint) error

	// -------- Booking --------
	CreateBooking(ctx context.Context, b *models.Booking) error
	UpdateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, companyID, bookingID uint) (*models.Booking, error)

	// ListActiveOverlapping locks and returns pending or confirmed bookings
	// intersecting [start, end), skipping excludeID.
	ListActiveOverlapping(ctx context.Context, companyID uint, start, end time.Time, excludeID uint) ([]models.Booking, error)
	ListBookings(ctx context.Context, f Filter) ([]models.Booking, error)
	ListUpcoming(ctx context.Context, companyID, clientID uint, now time.Time, limit int) ([]models.Booking, error)

	// -------- Side effects --------
	CreateNotification(ctx context.Context, n *models.Notification) error
}
