package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/saifpatel9/dropme/internal/database"
	apperrors "github.com/saifpatel9/dropme/internal/errors"
	"github.com/saifpatel9/dropme/internal/models"
)

type DriverRepository interface {
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	GetEligibleByVehicleType(ctx context.Context, vehicleType string) ([]*models.Driver, error)
	UpdateAvailability(ctx context.Context, id string, available bool) error
	Create(ctx context.Context, driver *models.Driver) error
}

type driverRepository struct {
	db *database.PostgresDB
}

func NewDriverRepository(db *database.PostgresDB) DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	var driver models.Driver
	query := `SELECT * FROM drivers WHERE id = $1 AND is_deleted = false`
	if err := r.db.GetContext(ctx, &driver, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}

// GetEligibleByVehicleType returns available active drivers of the given
// vehicle class, best rated first. Ordering within equal ratings is decided
// later by the queue builder.
func (r *driverRepository) GetEligibleByVehicleType(ctx context.Context, vehicleType string) ([]*models.Driver, error) {
	var drivers []*models.Driver
	query := `SELECT * FROM drivers
	          WHERE vehicle_type = $1
	            AND availability = true
	            AND status = $2
	            AND is_deleted = false
	          ORDER BY rating DESC`
	if err := r.db.SelectContext(ctx, &drivers, query, vehicleType, models.DriverStatusActive); err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *driverRepository) UpdateAvailability(ctx context.Context, id string, available bool) error {
	query := `UPDATE drivers SET availability = $1 WHERE id = $2 AND is_deleted = false`
	result, err := r.db.ExecContext(ctx, query, available, id)
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

func (r *driverRepository) Create(ctx context.Context, driver *models.Driver) error {
	query := `INSERT INTO drivers (id, first_name, last_name, email, phone, vehicle_type,
	            plate_number, manufacturer, color, rating, availability, status, is_deleted, created_at)
	          VALUES (:id, :first_name, :last_name, :email, :phone, :vehicle_type,
	            :plate_number, :manufacturer, :color, :rating, :availability, :status, :is_deleted, :created_at)`
	_, err := r.db.NamedExecContext(ctx, query, driver)
	return err
}
