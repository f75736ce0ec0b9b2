package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

func TestCancelBooking_ExcludedFromUpcoming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	create := NewCreateBooking(f.repo, nil)
	first, err := create.Execute(ctx, f.input(f.staff, "09:00"))
	require.NoError(t, err)
	second, err := create.Execute(ctx, f.input(f.staff, "13:00"))
	require.NoError(t, err)

	list := NewListBookings(f.repo)
	upcoming, err := list.Upcoming(ctx, f.company.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, first.ID, upcoming[0].ID, "soonest first")

	cancelled, err := NewCancelBooking(f.repo, nil).Execute(ctx, f.staff, first.ID, "client request")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), cancelled.Status)

	upcoming, err = list.Upcoming(ctx, f.company.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, second.ID, upcoming[0].ID)

	_, err = NewCancelBooking(f.repo, nil).Execute(ctx, f.staff, first.ID, "")
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
}

func TestCancelBooking_PortalOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := NewCreateBooking(f.repo, nil).Execute(ctx, f.input(f.portal, "09:00"))
	require.NoError(t, err)

	stranger := Actor{CompanyID: f.company.ID, ClientID: f.client.ID + 100}
	_, err = NewCancelBooking(f.repo, nil).Execute(ctx, stranger, b.ID, "")
	assert.True(t, httperr.IsBusiness(err, "booking_not_found"))

	_, err = NewCancelBooking(f.repo, nil).Execute(ctx, f.portal, b.ID, "")
	assert.NoError(t, err)
}

func TestConfirmThenComplete_Recurring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input(f.portal, "10:00")
	in.RecurringType = domain.RecurWeekly
	b, err := NewCreateBooking(f.repo, nil).Execute(ctx, in)
	require.NoError(t, err)

	_, err = NewCompleteBooking(f.repo, nil).Execute(ctx, f.staff, b.ID)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"), "pending cannot be completed")

	_, err = NewConfirmBooking(f.repo, nil).Execute(ctx, f.staff, b.ID)
	require.NoError(t, err)

	out, err := NewCompleteBooking(f.repo, nil).Execute(ctx, f.staff, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), out.Booking.Status)
	require.NotNil(t, out.Next)

	loc := timezone.Location(f.company.Timezone)
	assert.Equal(t, string(domain.StatusPending), out.Next.Status)
	assert.Equal(t, "10:00", out.Next.StartTime.In(loc).Format(timezone.ClockLayout))
	assert.Equal(t, f.day.AddDate(0, 0, 7).Format(timezone.DateLayout), out.Next.StartTime.In(loc).Format(timezone.DateLayout))
	require.NotNil(t, out.Next.ParentBookingID)
	assert.Equal(t, b.ID, *out.Next.ParentBookingID)
}

func TestRescheduleBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := NewCreateBooking(f.repo, nil).Execute(ctx, f.input(f.staff, "09:00"))
	require.NoError(t, err)
	_, err = NewCreateBooking(f.repo, nil).Execute(ctx, f.input(f.staff, "14:00"))
	require.NoError(t, err)

	uc := NewRescheduleBooking(f.repo, nil)

	_, err = uc.Execute(ctx, RescheduleBookingInput{Actor: f.staff, BookingID: b.ID, Date: f.date, Time: "13:00"})
	assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))

	moved, err := uc.Execute(ctx, RescheduleBookingInput{Actor: f.staff, BookingID: b.ID, Date: f.date, Time: "10:00"})
	require.NoError(t, err, "overlapping its own old slot is fine")
	assert.Equal(t, string(domain.StatusConfirmed), moved.Status)

	moved, err = uc.Execute(ctx, RescheduleBookingInput{Actor: f.portal, BookingID: b.ID, Date: f.date, Time: "11:00"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), moved.Status)
}

func TestAssignBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := NewCreateBooking(f.repo, nil).Execute(ctx, f.input(f.staff, "09:00"))
	require.NoError(t, err)

	active := createEmployee(t, f, "Ana Lima", "active")
	gone := createEmployee(t, f, "Bo Reyes", "terminated")

	uc := NewAssignBooking(f.repo, nil)

	_, err = uc.Execute(ctx, AssignBookingInput{Actor: f.staff, BookingID: b.ID, EmployeeID: &gone})
	assert.True(t, httperr.IsBusiness(err, "employee_inactive"))

	out, err := uc.Execute(ctx, AssignBookingInput{Actor: f.staff, BookingID: b.ID, EmployeeID: &active})
	require.NoError(t, err)
	require.NotNil(t, out.AssignedEmployeeID)

	list, err := NewListBookings(f.repo).ByDate(ctx, domain.Filter{CompanyID: f.company.ID, EmployeeID: active}, f.date)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana Lima", list[0].AssignedEmployee)
}

func createEmployee(t *testing.T, f *fixture, name, status string) uint {
	t.Helper()
	e := models.Employee{CompanyID: f.company.ID, Name: name, EmploymentStatus: status}
	require.NoError(t, f.db.Create(&e).Error)
	return e.ID
}
