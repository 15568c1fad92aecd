package service

import (
	"context"
	"errors"
	"time"

	"github.com/saifpatel9/dropme/internal/models"
	"github.com/saifpatel9/dropme/internal/repository"

	apperrors "github.com/saifpatel9/dropme/internal/errors"
)

// EarningsSummary buckets a driver's take-home by calendar period in the
// service's local timezone.
type EarningsSummary struct {
	DriverID   string        `json:"driver_id"`
	Today      float64       `json:"today"`
	ThisWeek   float64       `json:"this_week"`
	ThisMonth  float64       `json:"this_month"`
	ThisYear   float64       `json:"this_year"`
	Total      float64       `json:"total"`
	TotalRides int           `json:"total_rides"`
	Rides      []RideEarning `json:"rides"`
}

type RideEarning struct {
	BookingID   string    `json:"booking_id"`
	Fare        float64   `json:"fare"`
	DriverShare float64   `json:"driver_share"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type EarningsService interface {
	DriverEarnings(ctx context.Context, driverID string) (*EarningsSummary, error)
}

type earningsService struct {
	bookingRepo repository.BookingRepository
	driverRepo  repository.DriverRepository
	tariffRepo  repository.TariffRepository
	fareService FareService
	location    *time.Location
	now         func() time.Time
}

func NewEarningsService(
	bookingRepo repository.BookingRepository,
	driverRepo repository.DriverRepository,
	tariffRepo repository.TariffRepository,
	fareService FareService,
	location *time.Location,
) EarningsService {
	if location == nil {
		location = time.Local
	}
	return &earningsService{
		bookingRepo: bookingRepo,
		driverRepo:  driverRepo,
		tariffRepo:  tariffRepo,
		fareService: fareService,
		location:    location,
		now:         time.Now,
	}
}

// weekStart returns midnight on the Monday of now's week.
func weekStart(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(now.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

func (s *earningsService) DriverEarnings(ctx context.Context, driverID string) (*EarningsSummary, error) {
	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("driver")
		}
		return nil, err
	}

	bookings, err := s.bookingRepo.GetCompletedByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.location)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	wkStart := weekStart(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, s.location)

	summary := &EarningsSummary{
		DriverID: driverID,
		Rides:    make([]RideEarning, 0, len(bookings)),
	}

	// Tariffs rarely change per driver session; memoize per service type.
	tariffs := make(map[string]*models.ServiceType)

	for _, b := range bookings {
		st, ok := tariffs[b.ServiceTypeID]
		if !ok {
			st, err = s.tariffRepo.GetServiceTypeByID(ctx, b.ServiceTypeID)
			if err != nil {
				return nil, err
			}
			tariffs[b.ServiceTypeID] = st
		}

		share := s.fareService.CommissionSplit(b.Fare, st).DriverShare
		// Bucketing keys off the ride's scheduled time in local time, so
		// "today" follows the service timezone rather than UTC.
		scheduledAt := b.ScheduledTime.In(s.location)

		summary.Total += share
		summary.TotalRides++
		if !scheduledAt.Before(dayStart) {
			summary.Today += share
		}
		if !scheduledAt.Before(wkStart) {
			summary.ThisWeek += share
		}
		if !scheduledAt.Before(monthStart) {
			summary.ThisMonth += share
		}
		if !scheduledAt.Before(yearStart) {
			summary.ThisYear += share
		}

		summary.Rides = append(summary.Rides, RideEarning{
			BookingID:   b.ID,
			Fare:        b.Fare,
			DriverShare: share,
			ScheduledAt: scheduledAt,
		})
	}

	summary.Today = roundHalfUp2(summary.Today)
	summary.ThisWeek = roundHalfUp2(summary.ThisWeek)
	summary.ThisMonth = roundHalfUp2(summary.ThisMonth)
	summary.ThisYear = roundHalfUp2(summary.ThisYear)
	summary.Total = roundHalfUp2(summary.Total)
	return summary, nil
}
