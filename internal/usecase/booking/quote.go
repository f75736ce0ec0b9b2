package booking

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/cleaning-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/domain/promotion"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
	"github.com/BruksfildServices01/cleaning-scheduler/internal/timezone"
)

type QuoteInput struct {
	CompanyID     uint
	ServiceID     uint
	Bedrooms      int
	Bathrooms     int
	PromotionCode string
}

type GetQuote struct {
	repo  domain.Repository
	clock clock
}

func NewGetQuote(repo domain.Repository) *GetQuote {
	return &GetQuote{repo: repo}
}

func (uc *GetQuote) Execute(ctx context.Context, in QuoteInput) (*domain.Quote, error) {
	service, err := uc.repo.GetService(ctx, in.CompanyID, in.ServiceID)
	if err != nil || !service.Active {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	q, err := domain.NewQuote(*service, in.Bedrooms, in.Bathrooms)
	if err != nil {
		return nil, err
	}

	if in.PromotionCode != "" {
		company, err := uc.repo.GetCompany(ctx, in.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("load company: %w", err)
		}
		loc := timezone.Location(company.Timezone)

		promo, err := uc.repo.GetPromotionByCode(ctx, in.CompanyID, promotion.NormalizeCode(in.PromotionCode))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, httperr.ErrBusiness("promotion_not_found")
			}
			return nil, err
		}
		discount, err := promotion.Redeem(*promo, q.Estimate, uc.clock.now(), loc)
		if err != nil {
			return nil, err
		}
		q = q.WithDiscount(discount)
	}

	return &q, nil
}
