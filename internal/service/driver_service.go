package service

import (
	"context"
	"errors"

	"github.com/saifpatel9/dropme/internal/models"
	"github.com/saifpatel9/dropme/internal/repository"

	apperrors "github.com/saifpatel9/dropme/internal/errors"
)

// rideHistoryLimit caps the per-ride rows returned with a history view.
const rideHistoryLimit = 100

type DriverService interface {
	GetDriver(ctx context.Context, id string) (*models.Driver, error)
	// SetAvailability toggles whether the driver receives offers.
	SetAvailability(ctx context.Context, id string, available bool) error
	// RideHistory returns recent bookings and per-status counts.
	RideHistory(ctx context.Context, id string) (*DriverHistory, error)
}

type DriverHistory struct {
	DriverID   string                    `json:"driver_id"`
	Counts     map[string]int            `json:"counts"`
	TotalRides int                       `json:"total_rides"`
	Rides      []*models.BookingResponse `json:"rides"`
}

type driverService struct {
	driverRepo  repository.DriverRepository
	bookingRepo repository.BookingRepository
}

func NewDriverService(driverRepo repository.DriverRepository, bookingRepo repository.BookingRepository) DriverService {
	return &driverService{driverRepo: driverRepo, bookingRepo: bookingRepo}
}

func (s *driverService) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	driver, err := s.driverRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("driver")
		}
		return nil, err
	}
	return driver, nil
}

func (s *driverService) SetAvailability(ctx context.Context, id string, available bool) error {
	if err := s.driverRepo.UpdateAvailability(ctx, id, available); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("driver")
		}
		return err
	}
	return nil
}

func (s *driverService) RideHistory(ctx context.Context, id string) (*DriverHistory, error) {
	if _, err := s.driverRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("driver")
		}
		return nil, err
	}

	bookings, err := s.bookingRepo.GetByDriver(ctx, id, rideHistoryLimit)
	if err != nil {
		return nil, err
	}

	history := &DriverHistory{
		DriverID: id,
		Counts:   make(map[string]int),
		Rides:    make([]*models.BookingResponse, 0, len(bookings)),
	}
	for _, b := range bookings {
		history.Counts[b.Status]++
		history.TotalRides++
		history.Rides = append(history.Rides, b.ToResponse())
	}
	return history, nil
}
