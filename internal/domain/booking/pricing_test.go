package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

func TestEstimate(t *testing.T) {
	s := models.Service{BasePrice: 100, BedroomPrice: 25, BathroomPrice: 15}

	cases := []struct {
		bed, bath int
		want      float64
	}{
		{0, 0, 100},
		{2, 1, 165},
		{3, 2, 205},
		{20, 20, 900},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Estimate(s, tc.bed, tc.bath))
	}
}

func TestEstimate_RoundsToCents(t *testing.T) {
	s := models.Service{BasePrice: 0.1, BedroomPrice: 0.2, BathroomPrice: 0}
	assert.Equal(t, 0.3, Estimate(s, 1, 0))
}

func TestNewQuote(t *testing.T) {
	s := models.Service{BasePrice: 80, BedroomPrice: 20, BathroomPrice: 10}

	q, err := NewQuote(s, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 40.0, q.BedroomTotal)
	assert.Equal(t, 20.0, q.BathroomTotal)
	assert.Equal(t, 140.0, q.Estimate)
	assert.Equal(t, 140.0, q.Total)

	q = q.WithDiscount(28)
	assert.Equal(t, 112.0, q.Total)

	q = q.WithDiscount(500)
	assert.Equal(t, 0.0, q.Total)

	_, err = NewQuote(s, -1, 0)
	assert.True(t, httperr.IsBusiness(err, "invalid_room_count"))
	_, err = NewQuote(s, 0, 21)
	assert.True(t, httperr.IsBusiness(err, "invalid_room_count"))
}
