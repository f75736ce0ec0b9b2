// Package promotion parses discount texts such as "20% off" or "$10 off" and
// applies them to an amount.
package promotion

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/models"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/money"
)

const (
	StatusActive  = "active"
	StatusExpired = "expired"
)

type Kind int

const (
	Percent Kind = iota + 1
	Fixed
)

type Discount struct {
	Kind  Kind
	Value float64
}

var (
	percentRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*%(?:\s*off)?$`)
	fixedRe   = regexp.MustCompile(`^\$\s*(\d+(?:\.\d+)?)(?:\s*off)?$`)
)

func Parse(text string) (Discount, error) {
	s := strings.ToLower(strings.TrimSpace(text))

	if m := percentRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		if v <= 0 || v > 100 {
			return Discount{}, httperr.ErrBusiness("invalid_discount")
		}
		return Discount{Kind: Percent, Value: v}, nil
	}
	if m := fixedRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		if v <= 0 {
			return Discount{}, httperr.ErrBusiness("invalid_discount")
		}
		return Discount{Kind: Fixed, Value: v}, nil
	}
	return Discount{}, httperr.ErrBusiness("invalid_discount")
}

// Apply returns the discount amount for amount, never more than amount.
func (d Discount) Apply(amount float64) float64 {
	var off float64
	switch d.Kind {
	case Percent:
		off = amount * d.Value / 100
	case Fixed:
		off = d.Value
	}
	if off > amount {
		off = amount
	}
	return money.Round(off)
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// StatusAt derives the status from the validity date. A promotion is valid
// through the whole ValidUntil day in loc.
func StatusAt(p models.Promotion, now time.Time, loc *time.Location) string {
	u := p.ValidUntil.In(loc)
	endOfDay := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	if now.Before(endOfDay) {
		return StatusActive
	}
	return StatusExpired
}

// Redeem checks validity and computes the discount on amount.
func Redeem(p models.Promotion, amount float64, now time.Time, loc *time.Location) (float64, error) {
	if StatusAt(p, now, loc) != StatusActive {
		return 0, httperr.ErrBusiness("promotion_expired")
	}
	d, err := Parse(p.Discount)
	if err != nil {
		return 0, err
	}
	return d.Apply(amount), nil
}
