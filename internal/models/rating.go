package models

import (
	"time"
)

// Rating sides. One table stores both directions; the Go surface exposes a
// tagged variant instead of string-tag checks in every consumer.
const (
	RatingByPassenger = "passenger"
	RatingByDriver    = "driver"
)

// Shown to drivers when a passenger has no ratings yet.
const DefaultPassengerRating = 4.5

type Rating struct {
	ID          string    `db:"id" json:"id"`
	BookingID   string    `db:"booking_id" json:"booking_id"`
	PassengerID string    `db:"passenger_id" json:"passenger_id"`
	DriverID    string    `db:"driver_id" json:"driver_id"`
	Score       int       `db:"score" json:"score"`
	Comment     string    `db:"comment" json:"comment,omitempty"`
	GivenBy     string    `db:"given_by" json:"given_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RatingView is the direction-agnostic view of a rating row: who gave it,
// who received it, and the score.
type RatingView interface {
	Subject() string
	Target() string
	Score() int
	Comment() string
}

// PassengerRating is a rating given by a passenger to a driver.
type PassengerRating struct{ Rating }

func (r PassengerRating) Subject() string { return r.PassengerID }
func (r PassengerRating) Target() string  { return r.DriverID }
func (r PassengerRating) Score() int      { return r.Rating.Score }
func (r PassengerRating) Comment() string { return r.Rating.Comment }

// DriverRating is a rating given by a driver to a passenger.
type DriverRating struct{ Rating }

func (r DriverRating) Subject() string { return r.DriverID }
func (r DriverRating) Target() string  { return r.PassengerID }
func (r DriverRating) Score() int      { return r.Rating.Score }
func (r DriverRating) Comment() string { return r.Rating.Comment }

// View returns the tagged variant for this row.
func (r Rating) View() RatingView {
	if r.GivenBy == RatingByDriver {
		return DriverRating{r}
	}
	return PassengerRating{r}
}

type SubmitRatingRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
	RaterID   string `json:"rater_id" validate:"required,uuid"`
	GivenBy   string `json:"given_by" validate:"required,oneof=passenger driver"`
	Score     int    `json:"score" validate:"required,min=1,max=5"`
	Comment   string `json:"comment,omitempty"`
}
