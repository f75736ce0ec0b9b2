package promotion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Discount
	}{
		{"20% off", Discount{Percent, 20}},
		{"15%", Discount{Percent, 15}},
		{"$10 off", Discount{Fixed, 10}},
		{" $7.5 OFF ", Discount{Fixed, 7.5}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "free", "120% off", "$0 off", "10"} {
		_, err := Parse(bad)
		assert.True(t, httperr.IsBusiness(err, "invalid_discount"), bad)
	}
}

func TestApply_CapsAtAmount(t *testing.T) {
	assert.Equal(t, 30.0, Discount{Percent, 20}.Apply(150))
	assert.Equal(t, 10.0, Discount{Fixed, 10}.Apply(150))
	assert.Equal(t, 5.0, Discount{Fixed, 10}.Apply(5))
}

func TestStatusAt(t *testing.T) {
	loc := time.UTC
	p := models.Promotion{ValidUntil: time.Date(2026, 3, 10, 0, 0, 0, 0, loc)}

	assert.Equal(t, StatusActive, StatusAt(p, time.Date(2026, 3, 10, 23, 0, 0, 0, loc), loc))
	assert.Equal(t, StatusExpired, StatusAt(p, time.Date(2026, 3, 11, 0, 0, 1, 0, loc), loc))

	_, err := Redeem(p, 100, time.Date(2026, 4, 1, 0, 0, 0, 0, loc), loc)
	assert.True(t, httperr.IsBusiness(err, "promotion_expired"))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SPRING20", NormalizeCode("  spring20 "))
}
