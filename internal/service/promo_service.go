package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/saifpatel9/dropme/internal/models"
	"github.com/saifpatel9/dropme/internal/repository"

	apperrors "github.com/saifpatel9/dropme/internal/errors"
)

type PromoService interface {
	// Apply validates the code against its window and usage caps, records the
	// usage, and returns the discounted fare.
	Apply(ctx context.Context, passengerID, code string, fare float64) (*models.ApplyPromoResponse, error)
}

type promoService struct {
	promoRepo repository.PromoRepository
}

func NewPromoService(promoRepo repository.PromoRepository) PromoService {
	return &promoService{promoRepo: promoRepo}
}

func (s *promoService) Apply(ctx context.Context, passengerID, code string, fare float64) (*models.ApplyPromoResponse, error) {
	promo, err := s.promoRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.BadRequest("invalid promo code")
		}
		return nil, err
	}

	now := time.Now()
	if promo.StartTime != nil && now.Before(*promo.StartTime) {
		return nil, apperrors.BadRequest("promo code is not active yet")
	}
	if promo.ExpiryTime != nil && now.After(*promo.ExpiryTime) {
		return nil, apperrors.BadRequest("promo code has expired")
	}
	if promo.Type != models.PromoTypeFlat && promo.Type != models.PromoTypePercent {
		return nil, apperrors.BadRequest("invalid promo type")
	}

	discount := computeDiscount(promo, fare)
	if discount <= 0 {
		return &models.ApplyPromoResponse{DiscountedFare: fare, Discount: 0}, nil
	}

	if err := s.promoRepo.ApplyUsage(ctx, promo, passengerID, discount); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.BadRequest("promo code usage limit reached")
		}
		return nil, err
	}

	discounted := fare - discount
	if discounted < 0 {
		discounted = 0
	}
	return &models.ApplyPromoResponse{DiscountedFare: discounted, Discount: discount}, nil
}

// computeDiscount never returns more than the fare itself. Percent promos use
// discount_amount as an absolute cap when it is set.
func computeDiscount(promo *models.PromoCode, fare float64) float64 {
	var discount float64
	switch promo.Type {
	case models.PromoTypePercent:
		discount = fare * promo.PercentageValue / 100
		if promo.DiscountAmount > 0 && discount > promo.DiscountAmount {
			discount = promo.DiscountAmount
		}
	case models.PromoTypeFlat:
		discount = promo.DiscountAmount
	}
	if discount > fare {
		discount = fare
	}
	return math.Floor(discount*100) / 100
}
