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

type RidePinRepository interface {
	Create(ctx context.Context, pin *models.RidePin) error
	CreateTx(ctx context.Context, tx *sqlx.Tx, pin *models.RidePin) error
	GetByBookingID(ctx context.Context, bookingID string) (*models.RidePin, error)
	Update(ctx context.Context, pin *models.RidePin) error
	Deactivate(ctx context.Context, bookingID string) error
}

type ridePinRepository struct {
	db *database.PostgresDB
}

func NewRidePinRepository(db *database.PostgresDB) RidePinRepository {
	return &ridePinRepository{db: db}
}

const insertRidePinQuery = `INSERT INTO ride_pins (id, booking_id, pin_hash, pin_plain,
	attempts, locked_until, is_active, is_verified, created_at, updated_at)
	VALUES (:id, :booking_id, :pin_hash, :pin_plain,
	:attempts, :locked_until, :is_active, :is_verified, :created_at, :updated_at)`

func (r *ridePinRepository) Create(ctx context.Context, pin *models.RidePin) error {
	_, err := r.db.NamedExecContext(ctx, insertRidePinQuery, pin)
	return err
}

func (r *ridePinRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, pin *models.RidePin) error {
	_, err := tx.NamedExecContext(ctx, insertRidePinQuery, pin)
	return err
}

// GetByBookingID returns the active pin for the booking. Legacy bookings may
// have none.
func (r *ridePinRepository) GetByBookingID(ctx context.Context, bookingID string) (*models.RidePin, error) {
	var pin models.RidePin
	query := `SELECT * FROM ride_pins WHERE booking_id = $1 AND is_active = true
	          ORDER BY created_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &pin, query, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &pin, nil
}

func (r *ridePinRepository) Update(ctx context.Context, pin *models.RidePin) error {
	pin.UpdatedAt = time.Now()
	query := `UPDATE ride_pins
	          SET attempts = :attempts, locked_until = :locked_until,
	              is_active = :is_active, is_verified = :is_verified, updated_at = :updated_at
	          WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, pin)
	return err
}

// Deactivate retires the pin and erases the plaintext. Idempotent.
func (r *ridePinRepository) Deactivate(ctx context.Context, bookingID string) error {
	query := `UPDATE ride_pins SET is_active = false, pin_plain = '', updated_at = $1
	          WHERE booking_id = $2 AND is_active = true`
	_, err := r.db.ExecContext(ctx, query, time.Now(), bookingID)
	return err
}
