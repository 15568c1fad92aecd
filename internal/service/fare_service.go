package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/saifpatel9/dropme/internal/models"
	"github.com/saifpatel9/dropme/internal/observability"
	"github.com/saifpatel9/dropme/internal/repository"

	apperrors "github.com/saifpatel9/dropme/internal/errors"
)

// FareService prices trips. All fares are computed server side; client
// supplied fares are never trusted.
type FareService interface {
	// Quote returns per-vehicle-class estimates for the derived ride type.
	Quote(ctx context.Context, req *models.QuoteRequest) (*models.QuoteResponse, error)
	// PriceTrip computes the fare for one service type, used when creating a
	// ride request.
	PriceTrip(ctx context.Context, st *models.ServiceType, rideType string, distanceKm, durationMin float64, rentalPackageID string) (float64, error)
	CommissionSplit(fare float64, st *models.ServiceType) PricingBreakdown
}

// PricingBreakdown is the shared decomposition of a gross fare. Earnings and
// settlement both go through this so the two can never disagree.
type PricingBreakdown struct {
	Subtotal       float64
	CommissionBase float64
	DriverShare    float64
	AdminShare     float64
}

type fareService struct {
	tariffRepo repository.TariffRepository
	rules      RideRuleConfig
}

func NewFareService(tariffRepo repository.TariffRepository, rules RideRuleConfig) FareService {
	return &fareService{tariffRepo: tariffRepo, rules: rules}
}

// ApplyTax adds the percentage tax and rounds the total up to a whole unit.
func ApplyTax(subtotal, taxPercent float64) float64 {
	return math.Ceil(subtotal * (1 + taxPercent/100))
}

func roundHalfUp2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

func (s *fareService) Quote(ctx context.Context, req *models.QuoteRequest) (*models.QuoteResponse, error) {
	start := time.Now()
	defer func() {
		observability.QuoteDuration.Observe(time.Since(start).Seconds())
	}()

	pickup := LocalityMeta{City: req.PickupCity, District: req.PickupDistrict, State: req.PickupState}
	drop := LocalityMeta{City: req.DropCity, District: req.DropDistrict, State: req.DropState}
	decision := DeriveRideType(req.RideType, pickup, drop, req.DistanceKm, s.rules)

	types, err := s.tariffRepo.ListActiveServiceTypes(ctx)
	if err != nil {
		return nil, err
	}

	resp := &models.QuoteResponse{
		RideType: decision.RideType,
		Reason:   decision.Reason,
	}
	if decision.RideType == models.RideTypeOutstation && decision.Reason == RideReasonDistance {
		resp.Notice = "This trip exceeds the local distance limit and is booked as outstation."
	}

	for _, st := range types {
		if !serviceSupports(st, decision.RideType) {
			continue
		}
		if !IsVehicleAllowed(s.rules, st.Name, decision.RideType) {
			continue
		}

		var fare float64
		switch decision.RideType {
		case models.RideTypeRental:
			if req.RentalPackageID == "" {
				continue
			}
			fare, err = s.priceRental(ctx, st, req.RentalPackageID)
		default:
			if req.DistanceKm == nil || req.DurationMin == nil {
				return nil, apperrors.BadRequest("distance_km and duration_min are required")
			}
			fare, err = s.priceMetered(ctx, st, decision.RideType, *req.DistanceKm, *req.DurationMin)
		}
		if err != nil {
			if errors.Is(err, apperrors.ErrFareUnavailable) {
				continue
			}
			return nil, err
		}

		resp.Quotes = append(resp.Quotes, models.FareQuote{
			ServiceName:   st.Name,
			NumberOfSeats: st.NumberOfSeats,
			Fare:          fare,
		})
	}

	if len(resp.Quotes) == 0 {
		return nil, apperrors.FareUnavailable()
	}
	return resp, nil
}

func serviceSupports(st *models.ServiceType, rideType string) bool {
	switch rideType {
	case models.RideTypeRental:
		return st.RentalService
	case models.RideTypeOutstation:
		return st.OutstationService
	default:
		return st.DailyService
	}
}

func (s *fareService) PriceTrip(ctx context.Context, st *models.ServiceType, rideType string, distanceKm, durationMin float64, rentalPackageID string) (float64, error) {
	if rideType == models.RideTypeRental {
		return s.priceRental(ctx, st, rentalPackageID)
	}
	return s.priceMetered(ctx, st, rideType, distanceKm, durationMin)
}

// priceMetered prices daily and outstation trips. A distance slab overrides
// the flat tariff when one covers the trip.
func (s *fareService) priceMetered(ctx context.Context, st *models.ServiceType, rideType string, distanceKm, durationMin float64) (float64, error) {
	var base, perKm, perMin float64

	slab, err := s.tariffRepo.GetSlab(ctx, st.ID, distanceKm)
	switch {
	case err == nil:
		base = slab.BaseFare
		perKm = slab.RatePerKm
		perMin = slab.RatePerMinute
	case errors.Is(err, apperrors.ErrNotFound):
		base = st.BaseFare
		perKm = st.PricePerKm
		perMin = st.PricePerMinute
	default:
		return 0, err
	}

	subtotal := base + perKm*distanceKm + perMin*durationMin + st.BookingFee
	total := ApplyTax(subtotal, st.TaxPercentage)

	// The minimum fare floor applies to local trips only.
	if rideType == models.RideTypeDaily && total < st.MinFare {
		total = st.MinFare
	}
	return total, nil
}

func (s *fareService) priceRental(ctx context.Context, st *models.ServiceType, rentalPackageID string) (float64, error) {
	if rentalPackageID == "" {
		return 0, apperrors.BadRequest("rental_package_id is required for rental rides")
	}
	rs, err := s.tariffRepo.GetRentalService(ctx, st.ID, rentalPackageID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, apperrors.ErrFareUnavailable
		}
		return 0, err
	}
	pkg, err := s.tariffRepo.GetRentalPackage(ctx, rentalPackageID)
	if err != nil {
		return 0, err
	}

	subtotal := rs.BaseFare + rs.PerKmRate*pkg.DistanceKm + rs.PerMinuteRate*pkg.TimeHours*60 + rs.BookingFee
	return ApplyTax(subtotal, st.TaxPercentage), nil
}

// CommissionSplit backs the tax and booking fee out of the gross fare and
// splits what remains between driver and platform.
func (s *fareService) CommissionSplit(fare float64, st *models.ServiceType) PricingBreakdown {
	subtotal := fare / (1 + st.TaxPercentage/100)
	commissionBase := subtotal - st.BookingFee
	if commissionBase < 0 {
		commissionBase = 0
	}

	driverShare := roundHalfUp2(commissionBase * st.ProviderCommission / 100)
	adminShare := roundHalfUp2(commissionBase - driverShare)

	return PricingBreakdown{
		Subtotal:       roundHalfUp2(subtotal),
		CommissionBase: roundHalfUp2(commissionBase),
		DriverShare:    driverShare,
		AdminShare:     adminShare,
	}
}
