package employee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

func TestChangeStatus(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e := &models.Employee{EmploymentStatus: StatusActive, StartDate: start}

	err := ChangeStatus(e, StatusTerminated, "", nil)
	assert.True(t, httperr.IsBusiness(err, "termination_details_required"))

	before := start.AddDate(0, 0, -1)
	err = ChangeStatus(e, StatusResigned, "moving", &before)
	assert.True(t, httperr.IsBusiness(err, "termination_before_start"))

	date := start.AddDate(1, 0, 0)
	require.NoError(t, ChangeStatus(e, StatusLaidOff, " seasonal ", &date))
	assert.Equal(t, StatusLaidOff, e.EmploymentStatus)
	assert.Equal(t, "seasonal", e.TerminationReason)

	require.NoError(t, ChangeStatus(e, StatusActive, "", nil))
	assert.Nil(t, e.TerminationDate)
	assert.Empty(t, e.TerminationReason)

	assert.True(t, httperr.IsBusiness(ChangeStatus(e, "fired", "x", &date), "invalid_status"))
}

func TestHours(t *testing.T) {
	h, err := Hours(models.TimeEntry{WorkDate: "2026-03-02", StartTime: "08:00", EndTime: "16:30", BreakMinutes: 30})
	require.NoError(t, err)
	assert.Equal(t, 8.0, h)

	_, err = Hours(models.TimeEntry{WorkDate: "2026-03-02", StartTime: "10:00", EndTime: "09:00"})
	assert.True(t, httperr.IsBusiness(err, "end_before_start"))

	_, err = Hours(models.TimeEntry{WorkDate: "2026-03-02", StartTime: "10:00", EndTime: "11:00", BreakMinutes: 60})
	assert.True(t, httperr.IsBusiness(err, "invalid_break"))

	_, err = Hours(models.TimeEntry{WorkDate: "03/02/2026", StartTime: "10:00", EndTime: "11:00"})
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))
}

func TestComputePayroll(t *testing.T) {
	e := models.Employee{ID: 4, HourlyRate: 22.5}
	entries := []models.TimeEntry{
		{WorkDate: "2026-03-02", StartTime: "08:00", EndTime: "12:00", Status: EntryApproved},
		{WorkDate: "2026-03-03", StartTime: "08:00", EndTime: "17:00", BreakMinutes: 60, Status: EntryApproved},
		{WorkDate: "2026-03-04", StartTime: "08:00", EndTime: "10:00", Status: EntryPending},
		{WorkDate: "2026-03-05", StartTime: "08:00", EndTime: "10:00", Status: EntryRejected},
		{WorkDate: "2026-02-27", StartTime: "08:00", EndTime: "18:00", Status: EntryApproved},
	}

	p := ComputePayroll(e, entries, "2026-03")
	assert.Equal(t, 12.0, p.Hours)
	assert.Equal(t, 2.0, p.PendingHrs)
	assert.Equal(t, 270.0, p.Earnings)
	assert.Equal(t, 2, p.EntriesUsed)
}

func TestTrainingStatus(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(1, 0, 0)

	assert.Equal(t, TrainingExpired, TrainingStatus(models.TrainingRecord{CompletionDate: &past, ExpiryDate: &past}, now))
	assert.Equal(t, TrainingCompleted, TrainingStatus(models.TrainingRecord{CompletionDate: &past, ExpiryDate: &future}, now))
	assert.Equal(t, TrainingInProgress, TrainingStatus(models.TrainingRecord{}, now))
}
