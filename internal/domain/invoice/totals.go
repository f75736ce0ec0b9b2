package invoice

import (
	"fmt"
	"strings"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/money"
)

type Item struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Charges describe what an invoice bills for before line items are built.
type Charges struct {
	ServiceName     string
	BasePrice       float64
	Bedrooms        int
	BedroomPrice    float64
	Bathrooms       int
	BathroomPrice   float64
	Additional      []Item
	DiscountPercent float64
	DiscountAmount  float64
	DiscountLabel   string
}

// ChargesFromBooking bills a booking at the rates it was priced with.
func ChargesFromBooking(b models.Booking, s models.Service) Charges {
	c := Charges{
		ServiceName:   s.Name,
		BasePrice:     s.BasePrice,
		Bedrooms:      b.Bedrooms,
		BedroomPrice:  s.BedroomPrice,
		Bathrooms:     b.Bathrooms,
		BathroomPrice: s.BathroomPrice,
	}
	// Rates may have changed since the booking was priced; keep the quoted
	// estimate by folding the difference into the base line.
	rooms := money.Round(float64(b.Bedrooms)*s.BedroomPrice + float64(b.Bathrooms)*s.BathroomPrice)
	c.BasePrice = money.Round(b.EstimatedPrice - rooms)

	if b.Discount > 0 {
		c.DiscountAmount = b.Discount
		c.DiscountLabel = "Promotion " + b.PromotionCode
	}
	return c
}

// BuildLineItems expands charges into line items. Discounts are negative
// lines so that the amount is always the plain sum of line totals.
func BuildLineItems(c Charges) ([]models.InvoiceLineItem, float64, error) {
	if strings.TrimSpace(c.ServiceName) == "" {
		return nil, 0, httperr.ErrBusiness("service_required")
	}
	if c.DiscountPercent < 0 || c.DiscountPercent > 100 {
		return nil, 0, httperr.ErrBusiness("invalid_discount")
	}
	if c.Bedrooms < 0 || c.Bathrooms < 0 {
		return nil, 0, httperr.ErrBusiness("invalid_room_count")
	}

	var items []models.InvoiceLineItem
	add := func(desc string, qty int, unit float64) {
		items = append(items, models.InvoiceLineItem{
			Position:    len(items) + 1,
			Description: desc,
			Quantity:    qty,
			UnitPrice:   money.Round(unit),
			Total:       money.Round(float64(qty) * unit),
		})
	}

	add(c.ServiceName, 1, c.BasePrice)
	if c.Bedrooms > 0 {
		add("Bedrooms", c.Bedrooms, c.BedroomPrice)
	}
	if c.Bathrooms > 0 {
		add("Bathrooms", c.Bathrooms, c.BathroomPrice)
	}
	for _, it := range c.Additional {
		if strings.TrimSpace(it.Description) == "" || it.Quantity <= 0 || it.UnitPrice < 0 {
			return nil, 0, httperr.ErrBusiness("invalid_line_item")
		}
		add(it.Description, it.Quantity, it.UnitPrice)
	}

	// A promotion agreed at booking time stays its own line; a percent
	// discount applies to what remains after it.
	if c.DiscountAmount > 0 {
		discount := c.DiscountAmount
		if subtotal := sumTotals(items); discount > subtotal {
			discount = subtotal
		}
		label := c.DiscountLabel
		if label == "" {
			label = "Discount"
		}
		if discount > 0 {
			add(label, 1, -discount)
		}
	}
	if c.DiscountPercent > 0 {
		discount := money.Round(sumTotals(items) * c.DiscountPercent / 100)
		if discount > 0 {
			add(fmt.Sprintf("Discount (%g%%)", c.DiscountPercent), 1, -discount)
		}
	}

	return items, sumTotals(items), nil
}

func sumTotals(items []models.InvoiceLineItem) float64 {
	totals := make([]float64, 0, len(items))
	for _, it := range items {
		totals = append(totals, it.Total)
	}
	return money.Sum(totals...)
}

// Consistent reports whether the stored amount matches its line items.
func Consistent(inv models.Invoice) bool {
	return money.Round(inv.Amount) == sumTotals(inv.LineItems)
}
