package invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/invoice"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/payments"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/testutil"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

type fixture struct {
	db      *gorm.DB
	repo    *repository.InvoiceGormRepository
	company models.Company
	client  models.Client
	service models.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	company := testutil.Company(t, db)
	return &fixture{
		db:      db,
		repo:    repository.NewInvoiceGormRepository(db),
		company: company,
		client:  testutil.Client(t, db, company.ID, "jane@example.com"),
		service: testutil.Service(t, db, company.ID),
	}
}

func (f *fixture) adHoc() GenerateInvoiceInput {
	return GenerateInvoiceInput{
		CompanyID:   f.company.ID,
		ClientID:    f.client.ID,
		ServiceID:   f.service.ID,
		ServiceDate: "2026-03-02",
		Bedrooms:    2,
		Bathrooms:   2,
	}
}

func loc(f *fixture) *time.Location {
	return timezone.Location(f.company.Timezone)
}

func fixedNow(uc *GenerateInvoice) {
	uc.now = func() time.Time { return time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC) }
}

func TestGenerateInvoice_AdHoc(t *testing.T) {
	f := newFixture(t)
	uc := NewGenerateInvoice(f.repo, nil)
	fixedNow(uc)

	in := f.adHoc()
	in.Additional = []domain.Item{{Description: "Fridge", Quantity: 1, UnitPrice: 40}}
	in.DiscountPercent = 10

	inv, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	// 100 + 50 + 30 + 40 = 220, minus 22
	assert.Equal(t, 198.0, inv.Amount)
	assert.Equal(t, "INV-2026-001", inv.Number)
	assert.Equal(t, string(domain.StatusPending), inv.Status)
	assert.Equal(t, "2026-03-16", inv.DueDate.In(loc(f)).Format("2006-01-02"))

	stored, err := f.repo.GetInvoice(context.Background(), f.company.ID, inv.ID)
	require.NoError(t, err)
	require.Len(t, stored.LineItems, 5)
	assert.True(t, domain.Consistent(*stored), "line totals must sum to amount")

	second, err := uc.Execute(context.Background(), f.adHoc())
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-002", second.Number)
}

func TestGenerateInvoice_FromBooking(t *testing.T) {
	f := newFixture(t)
	uc := NewGenerateInvoice(f.repo, nil)
	fixedNow(uc)
	ctx := context.Background()

	b := models.Booking{
		Reference:      "ref-1",
		CompanyID:      f.company.ID,
		ClientID:       f.client.ID,
		ServiceID:      f.service.ID,
		StartTime:      time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2026, 3, 1, 16, 0, 0, 0, time.UTC),
		Bedrooms:       2,
		Bathrooms:      1,
		EstimatedPrice: 165,
		Discount:       16.5,
		PromotionCode:  "TEN",
		Status:         "completed",
	}
	require.NoError(t, f.db.Create(&b).Error)

	inv, err := uc.Execute(ctx, GenerateInvoiceInput{CompanyID: f.company.ID, BookingID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, 148.5, inv.Amount)
	assert.Equal(t, f.client.ID, inv.ClientID)
	require.NotNil(t, inv.BookingID)

	_, err = uc.Execute(ctx, GenerateInvoiceInput{CompanyID: f.company.ID, BookingID: b.ID})
	assert.True(t, httperr.IsBusiness(err, "already_invoiced"))
}

// staleCheck reports no existing invoice, as a concurrent request that ran
// its check before the other one committed would.
type staleCheck struct {
	domain.Repository
}

func (s staleCheck) InvoiceExistsForBooking(context.Context, uint) (bool, error) {
	return false, nil
}

func (s staleCheck) WithTx(ctx context.Context, fn func(domain.Repository) error) error {
	return s.Repository.WithTx(ctx, func(tx domain.Repository) error {
		return fn(staleCheck{tx})
	})
}

func TestGenerateInvoice_OneInvoicePerBookingEnforcedByIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := models.Booking{
		Reference:      "ref-dup",
		CompanyID:      f.company.ID,
		ClientID:       f.client.ID,
		ServiceID:      f.service.ID,
		StartTime:      time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2026, 3, 1, 16, 0, 0, 0, time.UTC),
		EstimatedPrice: 100,
		Status:         "completed",
	}
	require.NoError(t, f.db.Create(&b).Error)

	uc := NewGenerateInvoice(staleCheck{f.repo}, nil)
	fixedNow(uc)

	_, err := uc.Execute(ctx, GenerateInvoiceInput{CompanyID: f.company.ID, BookingID: b.ID})
	require.NoError(t, err)

	_, err = uc.Execute(ctx, GenerateInvoiceInput{CompanyID: f.company.ID, BookingID: b.ID})
	assert.True(t, httperr.IsBusiness(err, "already_invoiced"), "got %v", err)

	var count int64
	require.NoError(t, f.db.Model(&models.Invoice{}).Where("booking_id = ?", b.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// ad-hoc invoices have no booking and are not constrained
	_, err = uc.Execute(ctx, f.adHoc())
	require.NoError(t, err)
	_, err = uc.Execute(ctx, f.adHoc())
	require.NoError(t, err)
}

func TestGenerateInvoice_Incomplete(t *testing.T) {
	f := newFixture(t)
	uc := NewGenerateInvoice(f.repo, nil)

	in := f.adHoc()
	in.ServiceID = 0
	_, err := uc.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, "incomplete_invoice"))
}

func TestUpdateInvoiceStatus_PaidIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gen := NewGenerateInvoice(f.repo, nil)
	inv, err := gen.Execute(ctx, f.adHoc())
	require.NoError(t, err)

	uc := NewUpdateInvoiceStatus(f.repo, nil)

	paid, err := uc.Execute(ctx, f.company.ID, nil, inv.ID, "paid", "cash")
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = uc.Execute(ctx, f.company.ID, nil, inv.ID, "pending", "")
	assert.True(t, httperr.IsBusiness(err, "invoice_already_paid"))

	_, err = uc.Execute(ctx, f.company.ID, nil, inv.ID+99, "paid", "")
	assert.True(t, httperr.IsBusiness(err, "invoice_not_found"))
}

type failingNotifications struct {
	domain.Repository
}

func (failingNotifications) CreateNotification(context.Context, *models.Notification) error {
	return errors.New("notifications table unavailable")
}

func TestUpdateInvoiceStatus_LogsNotificationFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv, err := NewGenerateInvoice(f.repo, nil).Execute(ctx, f.adHoc())
	require.NoError(t, err)

	core, logs := observer.New(zapcore.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	paid, err := NewUpdateInvoiceStatus(failingNotifications{f.repo}, nil).
		Execute(ctx, f.company.ID, nil, inv.ID, "paid", "cash")
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.Status)

	entries := logs.FilterMessage("payment notification failed").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, inv.ID, entries[0].ContextMap()["invoice_id"])
}

func TestSweepOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gen := NewGenerateInvoice(f.repo, nil)
	fixedNow(gen)
	inv, err := gen.Execute(ctx, f.adHoc())
	require.NoError(t, err)

	sweep := NewSweepOverdue(f.repo)

	sweep.now = func() time.Time { return inv.DueDate.Add(12 * time.Hour) }
	require.NoError(t, sweep.Run(ctx))
	got, _ := f.repo.GetInvoice(ctx, f.company.ID, inv.ID)
	assert.Equal(t, "pending", got.Status, "still inside the due day")

	sweep.now = func() time.Time { return inv.DueDate.Add(25 * time.Hour) }
	require.NoError(t, sweep.Run(ctx))
	got, _ = f.repo.GetInvoice(ctx, f.company.ID, inv.ID)
	assert.Equal(t, "overdue", got.Status)
}

type fakeGateway struct {
	created  []payments.CheckoutRequest
	payments map[string]*payments.Payment
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req payments.CheckoutRequest) (*payments.Checkout, error) {
	g.created = append(g.created, req)
	return &payments.Checkout{ID: "pref-1", URL: "https://pay.example/pref-1"}, nil
}

func (g *fakeGateway) GetPayment(_ context.Context, id string) (*payments.Payment, error) {
	p, ok := g.payments[id]
	if !ok {
		return nil, httperr.ErrBusiness("payment_not_found")
	}
	return p, nil
}

func TestCheckoutAndConfirmPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := NewGenerateInvoice(f.repo, nil).Execute(ctx, f.adHoc())
	require.NoError(t, err)

	gw := &fakeGateway{payments: map[string]*payments.Payment{}}

	_, err = NewCheckout(f.repo, gw).Execute(ctx, f.company.ID, f.client.ID+1, inv.ID)
	assert.True(t, httperr.IsBusiness(err, "invoice_not_found"), "other clients cannot pay it")

	co, err := NewCheckout(f.repo, gw).Execute(ctx, f.company.ID, f.client.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/pref-1", co.URL)
	require.Len(t, gw.created, 1)
	assert.Equal(t, inv.Amount, gw.created[0].Amount)
	assert.Equal(t, paymentReference(inv.ID), gw.created[0].Reference)

	confirm := NewConfirmPayment(f.repo, gw, nil)

	gw.payments["77"] = &payments.Payment{ID: "77", Status: payments.StatusPending, Reference: paymentReference(inv.ID)}
	out, err := confirm.Execute(ctx, "77")
	require.NoError(t, err)
	assert.Nil(t, out)

	gw.payments["78"] = &payments.Payment{ID: "78", Status: payments.StatusApproved, Reference: paymentReference(inv.ID)}
	out, err = confirm.Execute(ctx, "78")
	require.NoError(t, err)
	assert.Equal(t, "paid", out.Status)
	assert.Equal(t, "78", out.PaymentReference)

	again, err := confirm.Execute(ctx, "78")
	require.NoError(t, err)
	assert.Equal(t, "78", again.PaymentReference)

	_, err = NewCheckout(f.repo, gw).Execute(ctx, f.company.ID, f.client.ID, inv.ID)
	assert.True(t, httperr.IsBusiness(err, "invoice_already_paid"))
}

func TestParseReference(t *testing.T) {
	id, ok := parseReference("invoice:42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	_, ok = parseReference("booking:42")
	assert.False(t, ok)
}
