package service

import (
	"context"
	"testing"
	"time"

	"github.com/saifpatel9/dropme/internal/models"
)

func ratedBooking(status string) *models.Booking {
	d1 := "d1"
	return &models.Booking{
		ID:          "b1",
		PassengerID: "p1",
		DriverID:    &d1,
		Status:      status,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestSubmitRating(t *testing.T) {
	ratings := &fakeRatingRepo{}
	bookings := newFakeBookingRepo(ratedBooking(models.BookingStatusCompleted))
	svc := NewRatingService(ratings, bookings)

	rating, err := svc.Submit(context.Background(), &models.SubmitRatingRequest{
		BookingID: "b1",
		RaterID:   "p1",
		GivenBy:   models.RatingByPassenger,
		Score:     5,
		Comment:   "smooth ride",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rating.DriverID != "d1" || rating.PassengerID != "p1" {
		t.Errorf("rating parties = %+v", rating)
	}

	view := rating.View()
	if view.Subject() != "p1" || view.Target() != "d1" || view.Score() != 5 {
		t.Errorf("view = subject %q target %q score %d", view.Subject(), view.Target(), view.Score())
	}

	// Same side cannot rate twice.
	if _, err := svc.Submit(context.Background(), &models.SubmitRatingRequest{
		BookingID: "b1", RaterID: "p1", GivenBy: models.RatingByPassenger, Score: 4,
	}); err == nil {
		t.Error("duplicate rating accepted")
	}

	// The driver side is independent.
	driverRating, err := svc.Submit(context.Background(), &models.SubmitRatingRequest{
		BookingID: "b1", RaterID: "d1", GivenBy: models.RatingByDriver, Score: 4,
	})
	if err != nil {
		t.Fatalf("driver rating: %v", err)
	}
	dv := driverRating.View()
	if dv.Subject() != "d1" || dv.Target() != "p1" {
		t.Errorf("driver view = subject %q target %q", dv.Subject(), dv.Target())
	}
}

func TestSubmitRatingGuards(t *testing.T) {
	ratings := &fakeRatingRepo{}
	bookings := newFakeBookingRepo(ratedBooking(models.BookingStatusOngoing))
	svc := NewRatingService(ratings, bookings)

	// Only completed rides can be rated.
	if _, err := svc.Submit(context.Background(), &models.SubmitRatingRequest{
		BookingID: "b1", RaterID: "p1", GivenBy: models.RatingByPassenger, Score: 5,
	}); err == nil {
		t.Error("rated an ongoing ride")
	}

	bookings = newFakeBookingRepo(ratedBooking(models.BookingStatusCompleted))
	svc = NewRatingService(&fakeRatingRepo{}, bookings)

	// Impersonation reads as missing.
	if _, err := svc.Submit(context.Background(), &models.SubmitRatingRequest{
		BookingID: "b1", RaterID: "someone-else", GivenBy: models.RatingByPassenger, Score: 5,
	}); err == nil {
		t.Error("impersonator rated the ride")
	}
}

func TestPassengerAverageFeedsDriverOffers(t *testing.T) {
	ratings := &fakeRatingRepo{}
	bookings := newFakeBookingRepo(ratedBooking(models.BookingStatusCompleted))
	svc := NewRatingService(ratings, bookings)

	if _, err := svc.Submit(context.Background(), &models.SubmitRatingRequest{
		BookingID: "b1", RaterID: "d1", GivenBy: models.RatingByDriver, Score: 3,
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	avg, count, err := ratings.AverageForPassenger(context.Background(), "p1")
	if err != nil || count != 1 || avg != 3 {
		t.Errorf("passenger average = %v (count %d, err %v), want 3", avg, count, err)
	}
}
