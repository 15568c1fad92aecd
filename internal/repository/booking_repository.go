package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/saifpatel9/dropme/internal/database"
	apperrors "github.com/saifpatel9/dropme/internal/errors"
	"github.com/saifpatel9/dropme/internal/models"
)

type BookingRepository interface {
	CreateTx(ctx context.Context, tx *sqlx.Tx, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Cancel(ctx context.Context, id, status, cancelledBy, reason, stage string) error
	GetCompletedByDriver(ctx context.Context, driverID string) ([]*models.Booking, error)
	GetByDriver(ctx context.Context, driverID string, limit int) ([]*models.Booking, error)
	GetActiveByPassenger(ctx context.Context, passengerID string) ([]*models.Booking, error)
	GetByPassenger(ctx context.Context, passengerID string, limit int) ([]*models.Booking, error)
}

type bookingRepository struct {
	db *database.PostgresDB
}

func NewBookingRepository(db *database.PostgresDB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, booking *models.Booking) error {
	query := `INSERT INTO bookings (id, passenger_id, driver_id, pickup_location, dropoff_location,
	            pickup_lat, pickup_lng, drop_lat, drop_lng, scheduled_time, status, fare,
	            distance_km, duration_min, service_type_id, payment_mode, is_immediate,
	            created_at, updated_at)
	          VALUES (:id, :passenger_id, :driver_id, :pickup_location, :dropoff_location,
	            :pickup_lat, :pickup_lng, :drop_lat, :drop_lng, :scheduled_time, :status, :fare,
	            :distance_km, :duration_min, :service_type_id, :payment_mode, :is_immediate,
	            :created_at, :updated_at)`
	_, err := tx.NamedExecContext(ctx, query, booking)
	return err
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	query := `SELECT * FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Cancel records who cancelled, why, and from which stage the booking left
// the normal flow. The driver reference is cleared with the cancellation.
func (r *bookingRepository) Cancel(ctx context.Context, id, status, cancelledBy, reason, stage string) error {
	now := time.Now()
	query := `UPDATE bookings
	          SET status = $1, driver_id = NULL, cancelled_by = $2,
	              cancellation_reason = $3, cancellation_stage = $4,
	              cancelled_at = $5, updated_at = $5
	          WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query, status, cancelledBy, reason, stage, now, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *bookingRepository) GetCompletedByDriver(ctx context.Context, driverID string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	query := `SELECT * FROM bookings
	          WHERE driver_id = $1 AND status = $2
	          ORDER BY updated_at DESC`
	if err := r.db.SelectContext(ctx, &bookings, query, driverID, models.BookingStatusCompleted); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) GetByDriver(ctx context.Context, driverID string, limit int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	query := `SELECT * FROM bookings
	          WHERE driver_id = $1
	          ORDER BY created_at DESC
	          LIMIT $2`
	if err := r.db.SelectContext(ctx, &bookings, query, driverID, limit); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) GetActiveByPassenger(ctx context.Context, passengerID string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	query := `SELECT * FROM bookings
	          WHERE passenger_id = $1
	            AND status IN ($2, $3, $4, $5)
	          ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &bookings, query, passengerID,
		models.BookingStatusPending, models.BookingStatusConfirmed,
		models.BookingStatusArrived, models.BookingStatusOngoing); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) GetByPassenger(ctx context.Context, passengerID string, limit int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	query := `SELECT * FROM bookings
	          WHERE passenger_id = $1
	          ORDER BY created_at DESC
	          LIMIT $2`
	if err := r.db.SelectContext(ctx, &bookings, query, passengerID, limit); err != nil {
		return nil, err
	}
	return bookings, nil
}
