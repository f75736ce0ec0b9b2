package booking

import (
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/money"
)

const MaxRooms = 20

type Quote struct {
	BasePrice     float64 `json:"base_price"`
	Bedrooms      int     `json:"bedrooms"`
	BedroomPrice  float64 `json:"bedroom_price"`
	BedroomTotal  float64 `json:"bedroom_total"`
	Bathrooms     int     `json:"bathrooms"`
	BathroomPrice float64 `json:"bathroom_price"`
	BathroomTotal float64 `json:"bathroom_total"`
	Estimate      float64 `json:"estimate"`
	Discount      float64 `json:"discount"`
	Total         float64 `json:"total"`
}

func ValidateRooms(bedrooms, bathrooms int) error {
	if bedrooms < 0 || bedrooms > MaxRooms || bathrooms < 0 || bathrooms > MaxRooms {
		return httperr.ErrBusiness("invalid_room_count")
	}
	return nil
}

// Estimate is base + bedrooms x bedroom rate + bathrooms x bathroom rate.
func Estimate(s models.Service, bedrooms, bathrooms int) float64 {
	return money.Round(
		s.BasePrice +
			float64(bedrooms)*s.BedroomPrice +
			float64(bathrooms)*s.BathroomPrice,
	)
}

func NewQuote(s models.Service, bedrooms, bathrooms int) (Quote, error) {
	if err := ValidateRooms(bedrooms, bathrooms); err != nil {
		return Quote{}, err
	}

	q := Quote{
		BasePrice:     s.BasePrice,
		Bedrooms:      bedrooms,
		BedroomPrice:  s.BedroomPrice,
		BedroomTotal:  money.Round(float64(bedrooms) * s.BedroomPrice),
		Bathrooms:     bathrooms,
		BathroomPrice: s.BathroomPrice,
		BathroomTotal: money.Round(float64(bathrooms) * s.BathroomPrice),
		Estimate:      Estimate(s, bedrooms, bathrooms),
	}
	q.Total = q.Estimate
	return q, nil
}

// WithDiscount applies a discount already computed against the estimate.
func (q Quote) WithDiscount(d float64) Quote {
	if d > q.Estimate {
		d = q.Estimate
	}
	if d < 0 {
		d = 0
	}
	q.Discount = money.Round(d)
	q.Total = money.Round(q.Estimate - q.Discount)
	return q
}
