package service

import (
	"context"
	"errors"
	"time"

	"github.com/saifpatel9/dropme/internal/models"
	"github.com/saifpatel9/dropme/internal/repository"
	"github.com/saifpatel9/dropme/pkg/utils"

	apperrors "github.com/saifpatel9/dropme/internal/errors"
)

type RatingService interface {
	// Submit records one side's rating of a completed booking. Each side can
	// rate once.
	Submit(ctx context.Context, req *models.SubmitRatingRequest) (*models.Rating, error)
}

type ratingService struct {
	ratingRepo  repository.RatingRepository
	bookingRepo repository.BookingRepository
}

func NewRatingService(ratingRepo repository.RatingRepository, bookingRepo repository.BookingRepository) RatingService {
	return &ratingService{ratingRepo: ratingRepo, bookingRepo: bookingRepo}
}

func (s *ratingService) Submit(ctx context.Context, req *models.SubmitRatingRequest) (*models.Rating, error) {
	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("booking")
		}
		return nil, err
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, apperrors.Conflict("only completed rides can be rated")
	}
	if booking.DriverID == nil {
		return nil, apperrors.Conflict("booking has no driver to rate")
	}

	// The rater must be the party they claim to be.
	switch req.GivenBy {
	case models.RatingByPassenger:
		if booking.PassengerID != req.RaterID {
			return nil, apperrors.NotFound("booking")
		}
	case models.RatingByDriver:
		if *booking.DriverID != req.RaterID {
			return nil, apperrors.NotFound("booking")
		}
	default:
		return nil, apperrors.BadRequest("given_by must be passenger or driver")
	}

	if _, err := s.ratingRepo.GetByBookingAndSide(ctx, req.BookingID, req.GivenBy); err == nil {
		return nil, apperrors.Conflict("this ride has already been rated")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	rating := &models.Rating{
		ID:          utils.GenerateID(),
		BookingID:   req.BookingID,
		PassengerID: booking.PassengerID,
		DriverID:    *booking.DriverID,
		Score:       req.Score,
		Comment:     req.Comment,
		GivenBy:     req.GivenBy,
		CreatedAt:   time.Now(),
	}
	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		return nil, err
	}

	// Refresh the denormalized driver rating used for queue ordering.
	if req.GivenBy == models.RatingByPassenger {
		if avg, count, err := s.ratingRepo.AverageForDriver(ctx, rating.DriverID); err == nil && count > 0 {
			_ = s.ratingRepo.UpdateDriverRating(ctx, rating.DriverID, avg)
		}
	}
	return rating, nil
}
