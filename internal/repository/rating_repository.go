package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/saifpatel9/dropme/internal/database"
	apperrors "github.com/saifpatel9/dropme/internal/errors"
	"github.com/saifpatel9/dropme/internal/models"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	GetByBookingAndSide(ctx context.Context, bookingID, givenBy string) (*models.Rating, error)
	AverageForDriver(ctx context.Context, driverID string) (float64, int, error)
	AverageForPassenger(ctx context.Context, passengerID string) (float64, int, error)
	UpdateDriverRating(ctx context.Context, driverID string, rating float64) error
}

type ratingRepository struct {
	db *database.PostgresDB
}

func NewRatingRepository(db *database.PostgresDB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	query := `INSERT INTO ratings (id, booking_id, passenger_id, driver_id, score, comment, given_by, created_at)
	          VALUES (:id, :booking_id, :passenger_id, :driver_id, :score, :comment, :given_by, :created_at)`
	_, err := r.db.NamedExecContext(ctx, query, rating)
	return err
}

func (r *ratingRepository) GetByBookingAndSide(ctx context.Context, bookingID, givenBy string) (*models.Rating, error) {
	var rating models.Rating
	query := `SELECT * FROM ratings WHERE booking_id = $1 AND given_by = $2`
	if err := r.db.GetContext(ctx, &rating, query, bookingID, givenBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) AverageForDriver(ctx context.Context, driverID string) (float64, int, error) {
	return r.average(ctx,
		`SELECT COALESCE(AVG(score), 0), COUNT(*) FROM ratings WHERE driver_id = $1 AND given_by = $2`,
		driverID, models.RatingByPassenger)
}

func (r *ratingRepository) AverageForPassenger(ctx context.Context, passengerID string) (float64, int, error) {
	return r.average(ctx,
		`SELECT COALESCE(AVG(score), 0), COUNT(*) FROM ratings WHERE passenger_id = $1 AND given_by = $2`,
		passengerID, models.RatingByDriver)
}

func (r *ratingRepository) average(ctx context.Context, query string, args ...interface{}) (float64, int, error) {
	var avg float64
	var count int
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&avg, &count); err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}

// UpdateDriverRating writes the denormalized average used for queue ordering.
func (r *ratingRepository) UpdateDriverRating(ctx context.Context, driverID string, rating float64) error {
	query := `UPDATE drivers SET rating = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, rating, driverID)
	return err
}
