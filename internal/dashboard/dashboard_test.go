package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/infra/cache"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/testutil"
)

func TestStaffSummary(t *testing.T) {
	db := testutil.NewDB(t)
	company := testutil.Company(t, db)
	client := testutil.Client(t, db, company.ID, "a@example.com")
	service := testutil.Service(t, db, company.ID)
	testutil.Employee(t, db, company.ID, "Ana Lima")

	inactive := testutil.Client(t, db, company.ID, "b@example.com")
	require.NoError(t, db.Model(&inactive).Update("is_active", false).Error)

	now := time.Now().UTC()
	for i, status := range []string{"pending", "confirmed", "cancelled"} {
		b := models.Booking{
			Reference: "r" + status, CompanyID: company.ID, ClientID: client.ID, ServiceID: service.ID,
			StartTime: now.Add(time.Duration(48+i) * time.Hour), EndTime: now.Add(time.Duration(50+i) * time.Hour),
			Status: status,
		}
		require.NoError(t, db.Create(&b).Error)
	}

	paidAt := now
	invoices := []models.Invoice{
		{CompanyID: company.ID, Number: "INV-1", ClientID: client.ID, Amount: 120, Status: "paid", PaidAt: &paidAt, DueDate: now},
		{CompanyID: company.ID, Number: "INV-2", ClientID: client.ID, Amount: 80.25, Status: "pending", DueDate: now},
		{CompanyID: company.ID, Number: "INV-3", ClientID: client.ID, Amount: 19.75, Status: "overdue", DueDate: now},
	}
	require.NoError(t, db.Create(&invoices).Error)
	require.NoError(t, db.Create(&models.Review{CompanyID: company.ID, ClientID: client.ID, BookingID: 1, Rating: 5, Status: "pending"}).Error)

	svc := NewService(db, cache.NewMemory(), time.Minute)
	ctx := context.Background()

	got, err := svc.Staff(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ActiveClients)
	assert.Equal(t, int64(1), got.ActiveEmployees)
	assert.Len(t, got.Upcoming, 2)
	assert.Equal(t, 120.0, got.RevenueThisMonth)
	assert.Equal(t, 100.0, got.OutstandingBalance)
	assert.Equal(t, int64(1), got.PendingReviews)

	// Served from cache until invalidated.
	testutil.Client(t, db, company.ID, "c@example.com")
	got, err = svc.Staff(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ActiveClients)

	svc.Invalidate(ctx, company.ID, 0)
	got, err = svc.Staff(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ActiveClients)
}

func TestPortalSummary(t *testing.T) {
	db := testutil.NewDB(t)
	company := testutil.Company(t, db)
	client := testutil.Client(t, db, company.ID, "a@example.com")
	service := testutil.Service(t, db, company.ID)

	now := time.Now().UTC()
	b := models.Booking{
		Reference: "r1", CompanyID: company.ID, ClientID: client.ID, ServiceID: service.ID,
		StartTime: now.Add(72 * time.Hour), EndTime: now.Add(74 * time.Hour), Status: "confirmed",
	}
	require.NoError(t, db.Create(&b).Error)

	require.NoError(t, db.Create(&[]models.Invoice{
		{CompanyID: company.ID, Number: "INV-1", ClientID: client.ID, Amount: 50, Status: "pending", DueDate: now.AddDate(0, 0, 10)},
		{CompanyID: company.ID, Number: "INV-2", ClientID: client.ID, Amount: 25, Status: "pending", DueDate: now.AddDate(0, 0, 3)},
	}).Error)
	require.NoError(t, db.Create(&models.Message{CompanyID: company.ID, ClientID: client.ID, Sender: models.SenderCompany, Body: "hi"}).Error)
	require.NoError(t, db.Create(&models.Message{CompanyID: company.ID, ClientID: client.ID, Sender: models.SenderClient, Body: "hello"}).Error)
	require.NoError(t, db.Create(&models.Notification{CompanyID: company.ID, ClientID: client.ID, Title: "x"}).Error)

	svc := NewService(db, nil, 0)
	got, err := svc.Portal(context.Background(), company.ID, client.ID)
	require.NoError(t, err)

	require.NotNil(t, got.NextService)
	assert.Equal(t, b.ID, got.NextService.ID)
	assert.Equal(t, 75.0, got.Balance.Amount)
	require.NotNil(t, got.Balance.DaysUntilDue)
	assert.InDelta(t, 3, *got.Balance.DaysUntilDue, 1)
	assert.Equal(t, int64(1), got.UnreadMessages)
	assert.Equal(t, int64(1), got.UnreadNotifications)
}

func TestBalanceOf_Empty(t *testing.T) {
	b := balanceOf(nil, time.Now())
	assert.Equal(t, 0.0, b.Amount)
	assert.Nil(t, b.DaysUntilDue)
}
