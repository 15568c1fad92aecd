package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/saifpatel9/dropme/internal/database"
	apperrors "github.com/saifpatel9/dropme/internal/errors"
	"github.com/saifpatel9/dropme/internal/models"
)

type RideRequestRepository interface {
	Create(ctx context.Context, req *models.RideRequest) error
	GetByID(ctx context.Context, id string) (*models.RideRequest, error)
	// GetByIDForUpdate locks the row inside tx so concurrent accepts serialize.
	GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.RideRequest, error)
	UpdateStatus(ctx context.Context, id, status string) error
	AssignDriver(ctx context.Context, id string, driverID *string) error
	LinkBooking(ctx context.Context, tx *sqlx.Tx, id, driverID, bookingID string) error
	GetAssignedRequested(ctx context.Context, driverID string) ([]*models.RideRequest, error)
}

type rideRequestRepository struct {
	db *database.PostgresDB
}

func NewRideRequestRepository(db *database.PostgresDB) RideRequestRepository {
	return &rideRequestRepository{db: db}
}

func (r *rideRequestRepository) Create(ctx context.Context, req *models.RideRequest) error {
	query := `INSERT INTO ride_requests (id, passenger_id, driver_id, booking_id,
	            pickup_location, dropoff_location, pickup_lat, pickup_lng, drop_lat, drop_lng,
	            ride_type, distance_km, duration_min, fare, service_type_id, status,
	            payment_mode, scheduled_time, created_at)
	          VALUES (:id, :passenger_id, :driver_id, :booking_id,
	            :pickup_location, :dropoff_location, :pickup_lat, :pickup_lng, :drop_lat, :drop_lng,
	            :ride_type, :distance_km, :duration_min, :fare, :service_type_id, :status,
	            :payment_mode, :scheduled_time, :created_at)`
	_, err := r.db.NamedExecContext(ctx, query, req)
	return err
}

func (r *rideRequestRepository) GetByID(ctx context.Context, id string) (*models.RideRequest, error) {
	var req models.RideRequest
	query := `SELECT * FROM ride_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *rideRequestRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.RideRequest, error) {
	var req models.RideRequest
	query := `SELECT * FROM ride_requests WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *rideRequestRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE ride_requests SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
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

// AssignDriver soft-assigns the head of the candidate queue. Passing nil
// clears the assignment when the queue runs dry.
func (r *rideRequestRepository) AssignDriver(ctx context.Context, id string, driverID *string) error {
	query := `UPDATE ride_requests SET driver_id = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, driverID, id)
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

// LinkBooking finalizes the request inside the accept transaction.
func (r *rideRequestRepository) LinkBooking(ctx context.Context, tx *sqlx.Tx, id, driverID, bookingID string) error {
	query := `UPDATE ride_requests SET driver_id = $1, booking_id = $2, status = $3 WHERE id = $4`
	_, err := tx.ExecContext(ctx, query, driverID, bookingID, models.RideRequestStatusAccepted, id)
	return err
}

// GetAssignedRequested lists open requests currently offered to this driver.
func (r *rideRequestRepository) GetAssignedRequested(ctx context.Context, driverID string) ([]*models.RideRequest, error) {
	var reqs []*models.RideRequest
	query := `SELECT * FROM ride_requests
	          WHERE driver_id = $1 AND status = $2 AND booking_id IS NULL
	          ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &reqs, query, driverID, models.RideRequestStatusRequested); err != nil {
		return nil, err
	}
	return reqs, nil
}
