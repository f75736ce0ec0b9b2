package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusConfirmed, InitialStatus(SourceStaff))
	assert.Equal(t, StatusPending, InitialStatus(SourcePortal))
}

func TestTransitions(t *testing.T) {
	now := time.Now()

	b := &models.Booking{Status: string(StatusPending)}
	assert.True(t, httperr.IsBusiness(Complete(b, now), "invalid_state"), "pending cannot complete")

	require.NoError(t, Confirm(b, now))
	assert.Equal(t, string(StatusConfirmed), b.Status)
	assert.NotNil(t, b.ConfirmedAt)
	assert.True(t, httperr.IsBusiness(Confirm(b, now), "invalid_state"))

	require.NoError(t, Complete(b, now))
	assert.Equal(t, string(StatusCompleted), b.Status)
	assert.True(t, httperr.IsBusiness(Cancel(b, "", now), "invalid_state"), "completed is terminal")
}

func TestCancel_SetsStatus(t *testing.T) {
	now := time.Now()
	for _, s := range []Status{StatusPending, StatusConfirmed} {
		b := &models.Booking{Status: string(s)}
		require.NoError(t, Cancel(b, "client request", now))
		assert.Equal(t, string(StatusCancelled), b.Status)
		assert.Equal(t, "client request", b.CancelReason)
		require.NotNil(t, b.CancelledAt)
	}
}

func TestReschedule_PortalGoesBackToPending(t *testing.T) {
	start := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	b := &models.Booking{Status: string(StatusConfirmed)}
	require.NoError(t, Reschedule(b, start, end, SourceStaff))
	assert.Equal(t, string(StatusConfirmed), b.Status)

	require.NoError(t, Reschedule(b, start, end, SourcePortal))
	assert.Equal(t, string(StatusPending), b.Status)
	assert.Equal(t, start, b.StartTime)

	b.Status = string(StatusCancelled)
	assert.Error(t, Reschedule(b, start, end, SourceStaff))
}

func TestNextOccurrence(t *testing.T) {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	next, ok := NextOccurrence(RecurWeekly, start)
	assert.True(t, ok)
	assert.Equal(t, start.AddDate(0, 0, 7), next)

	next, _ = NextOccurrence(RecurBiweekly, start)
	assert.Equal(t, 19, next.Day())

	next, _ = NextOccurrence(RecurMonthly, start)
	assert.Equal(t, time.February, next.Month())

	_, ok = NextOccurrence(RecurNone, start)
	assert.False(t, ok)

	assert.Error(t, ValidRecurrence("daily"))
}
