package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/testutil"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

type fixture struct {
	db      *gorm.DB
	repo    *repository.BookingGormRepository
	company models.Company
	client  models.Client
	service models.Service
	day     time.Time
	date    string
	staff   Actor
	portal  Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	company := testutil.Company(t, db)
	client := testutil.Client(t, db, company.ID, "jane@example.com")
	service := testutil.Service(t, db, company.ID)

	day := testutil.NextWeekday(timezone.Location(company.Timezone), time.Tuesday)
	userID := uint(1)

	return &fixture{
		db:      db,
		repo:    repository.NewBookingGormRepository(db),
		company: company,
		client:  client,
		service: service,
		day:     day,
		date:    day.Format(timezone.DateLayout),
		staff:   Actor{CompanyID: company.ID, UserID: &userID},
		portal:  Actor{CompanyID: company.ID, ClientID: client.ID},
	}
}

func (f *fixture) input(actor Actor, clock string) CreateBookingInput {
	return CreateBookingInput{
		Actor:     actor,
		ClientID:  f.client.ID,
		ServiceID: f.service.ID,
		Date:      f.date,
		Time:      clock,
		Bedrooms:  2,
		Bathrooms: 1,
	}
}

func TestCreateBooking_RejectsIncomplete(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateBooking(f.repo, nil)
	ctx := context.Background()

	for name, mutate := range map[string]func(*CreateBookingInput){
		"missing service": func(in *CreateBookingInput) { in.ServiceID = 0 },
		"missing date":    func(in *CreateBookingInput) { in.Date = "" },
		"missing time":    func(in *CreateBookingInput) { in.Time = "" },
	} {
		in := f.input(f.staff, "10:00")
		mutate(&in)

		_, err := uc.Execute(ctx, in)
		assert.True(t, httperr.IsBusiness(err, "incomplete_booking"), name)
	}

	var count int64
	f.db.Model(&models.Booking{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateBooking_StaffIsConfirmedAndPriced(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateBooking(f.repo, nil)

	b, err := uc.Execute(context.Background(), f.input(f.staff, "10:00"))
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusConfirmed), b.Status)
	assert.Equal(t, 165.0, b.EstimatedPrice)
	assert.Equal(t, 2*time.Hour, b.EndTime.Sub(b.StartTime))
	assert.Equal(t, f.client.Address, b.Address)
	assert.NotEmpty(t, b.Reference)

	var n models.Notification
	require.NoError(t, f.db.Where("client_id = ?", f.client.ID).First(&n).Error)
	assert.Equal(t, models.NotificationBooking, n.Type)
}

func TestCreateBooking_PortalIsPending(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateBooking(f.repo, nil)

	b, err := uc.Execute(context.Background(), f.input(f.portal, "10:00"))
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), b.Status)
	assert.Nil(t, b.ConfirmedAt)
}

func TestCreateBooking_WindowRules(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateBooking(f.repo, nil)
	ctx := context.Background()

	_, err := uc.Execute(ctx, f.input(f.staff, "17:00"))
	assert.True(t, httperr.IsBusiness(err, "outside_business_hours"), "service must end by close")

	_, err = uc.Execute(ctx, f.input(f.staff, "07:00"))
	assert.True(t, httperr.IsBusiness(err, "outside_business_hours"))

	uc.clock = func() time.Time { return f.day.Add(9 * time.Hour) }
	_, err = uc.Execute(ctx, f.input(f.staff, "10:00"))
	assert.True(t, httperr.IsBusiness(err, "too_soon"))

	in := f.input(f.staff, "bogus")
	_, err = uc.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, "invalid_date_or_time"))
}

func TestCreateBooking_Capacity(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateBooking(f.repo, nil)
	ctx := context.Background()

	_, err := uc.Execute(ctx, f.input(f.staff, "10:00"))
	require.NoError(t, err)

	_, err = uc.Execute(ctx, f.input(f.staff, "11:00"))
	assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))

	_, err = uc.Execute(ctx, f.input(f.staff, "12:00"))
	assert.NoError(t, err, "back-to-back bookings do not overlap")

	require.NoError(t, f.db.Model(&models.Company{}).
		Where("id = ?", f.company.ID).
		Update("max_concurrent_bookings", 2).Error)

	_, err = uc.Execute(ctx, f.input(f.staff, "10:00"))
	assert.NoError(t, err, "second crew fits the same slot")

	_, err = uc.Execute(ctx, f.input(f.staff, "10:00"))
	assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))
}

func TestCreateBooking_Promotion(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateBooking(f.repo, nil)
	ctx := context.Background()

	promo := models.Promotion{
		CompanyID:  f.company.ID,
		Code:       "SPRING20",
		Discount:   "20% off",
		ValidUntil: f.day.AddDate(0, 1, 0),
	}
	require.NoError(t, f.db.Create(&promo).Error)

	in := f.input(f.staff, "10:00")
	in.PromotionCode = "spring20"

	b, err := uc.Execute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 33.0, b.Discount)
	assert.Equal(t, 132.0, b.Total())

	var stored models.Promotion
	require.NoError(t, f.db.First(&stored, promo.ID).Error)
	assert.Equal(t, 1, stored.UsageCount)

	in = f.input(f.staff, "14:00")
	in.PromotionCode = "NOPE"
	_, err = uc.Execute(ctx, in)
	assert.True(t, httperr.IsBusiness(err, "promotion_not_found"))
}

func TestCreateBooking_InactiveClient(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&models.Client{}).
		Where("id = ?", f.client.ID).
		Update("is_active", false).Error)

	_, err := NewCreateBooking(f.repo, nil).Execute(context.Background(), f.input(f.staff, "10:00"))
	assert.True(t, httperr.IsBusiness(err, "client_inactive"))
}

// lockRecorder records the order of slot-guarding calls made inside a
// transaction.
type lockRecorder struct {
	domain.Repository
	calls *[]string
	inTx  bool
}

func (r lockRecorder) WithTx(ctx context.Context, fn func(domain.Repository) error) error {
	return r.Repository.WithTx(ctx, func(tx domain.Repository) error {
		return fn(lockRecorder{Repository: tx, calls: r.calls, inTx: true})
	})
}

func (r lockRecorder) LockCompany(ctx context.Context, id uint) error {
	if r.inTx {
		*r.calls = append(*r.calls, "lock")
	}
	return r.Repository.LockCompany(ctx, id)
}

func (r lockRecorder) ListActiveOverlapping(ctx context.Context, companyID uint, start, end time.Time, excludeID uint) ([]models.Booking, error) {
	*r.calls = append(*r.calls, "overlap")
	return r.Repository.ListActiveOverlapping(ctx, companyID, start, end, excludeID)
}

func TestCreateBooking_LocksCompanyBeforeCapacityCheck(t *testing.T) {
	f := newFixture(t)
	var calls []string
	uc := NewCreateBooking(lockRecorder{Repository: f.repo, calls: &calls}, nil)

	_, err := uc.Execute(context.Background(), f.input(f.staff, "10:00"))
	require.NoError(t, err)
	assert.Equal(t, []string{"lock", "overlap"}, calls)
}
