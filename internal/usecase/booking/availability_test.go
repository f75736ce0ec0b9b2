package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
)

func TestGetAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	uc := NewGetAvailability(f.repo)

	slots, err := uc.Execute(ctx, f.company.ID, f.service.ID, f.date)
	require.NoError(t, err)
	// 08:00..16:00 for a two hour service closing at 18:00.
	require.Len(t, slots, 9)
	assert.Equal(t, "08:00", slots[0].Start)
	assert.Equal(t, "16:00", slots[8].Start)

	_, err = NewCreateBooking(f.repo, nil).Execute(ctx, f.input(f.staff, "10:00"))
	require.NoError(t, err)

	slots, err = uc.Execute(ctx, f.company.ID, f.service.ID, f.date)
	require.NoError(t, err)
	starts := make([]string, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.Start)
	}
	assert.NotContains(t, starts, "09:00")
	assert.NotContains(t, starts, "10:00")
	assert.NotContains(t, starts, "11:00")
	assert.Contains(t, starts, "12:00")

	_, err = uc.Execute(ctx, f.company.ID, f.service.ID, "31-12-2026")
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))
}

func TestGetQuote(t *testing.T) {
	f := newFixture(t)
	uc := NewGetQuote(f.repo)

	q, err := uc.Execute(context.Background(), QuoteInput{
		CompanyID: f.company.ID, ServiceID: f.service.ID, Bedrooms: 3, Bathrooms: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 205.0, q.Estimate)
	assert.Equal(t, 75.0, q.BedroomTotal)
	assert.Equal(t, 30.0, q.BathroomTotal)
}
