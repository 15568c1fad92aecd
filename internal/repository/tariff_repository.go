package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/saifpatel9/dropme/internal/database"
	apperrors "github.com/saifpatel9/dropme/internal/errors"
	"github.com/saifpatel9/dropme/internal/models"
)

type TariffRepository interface {
	GetServiceTypeByID(ctx context.Context, id string) (*models.ServiceType, error)
	GetServiceTypeByName(ctx context.Context, name string) (*models.ServiceType, error)
	ListActiveServiceTypes(ctx context.Context) ([]*models.ServiceType, error)
	// GetSlab returns the slab covering the distance, or ErrNotFound when the
	// service type has no matching slab and the flat tariff applies.
	GetSlab(ctx context.Context, serviceTypeID string, distanceKm float64) (*models.FareSlab, error)
	GetRentalPackage(ctx context.Context, id string) (*models.RentalPackage, error)
	GetRentalService(ctx context.Context, serviceTypeID, packageID string) (*models.RentalService, error)
	ListRentalServicesByPackage(ctx context.Context, packageID string) ([]*models.RentalService, error)
	CreateServiceType(ctx context.Context, st *models.ServiceType) error
	CreateSlab(ctx context.Context, slab *models.FareSlab) error
	CreateRentalPackage(ctx context.Context, pkg *models.RentalPackage) error
	CreateRentalService(ctx context.Context, rs *models.RentalService) error
}

type tariffRepository struct {
	db *database.PostgresDB
}

func NewTariffRepository(db *database.PostgresDB) TariffRepository {
	return &tariffRepository{db: db}
}

func (r *tariffRepository) GetServiceTypeByID(ctx context.Context, id string) (*models.ServiceType, error) {
	var st models.ServiceType
	query := `SELECT * FROM service_types WHERE id = $1`
	if err := r.db.GetContext(ctx, &st, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

// GetServiceTypeByName matches case-insensitively so clients can send
// "sedan" or "Sedan".
func (r *tariffRepository) GetServiceTypeByName(ctx context.Context, name string) (*models.ServiceType, error) {
	var st models.ServiceType
	query := `SELECT * FROM service_types WHERE LOWER(name) = LOWER($1) AND status = $2`
	if err := r.db.GetContext(ctx, &st, query, name, models.ServiceStatusActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (r *tariffRepository) ListActiveServiceTypes(ctx context.Context) ([]*models.ServiceType, error) {
	var types []*models.ServiceType
	query := `SELECT * FROM service_types WHERE status = $1 ORDER BY name`
	if err := r.db.SelectContext(ctx, &types, query, models.ServiceStatusActive); err != nil {
		return nil, err
	}
	return types, nil
}

func (r *tariffRepository) GetSlab(ctx context.Context, serviceTypeID string, distanceKm float64) (*models.FareSlab, error) {
	var slab models.FareSlab
	query := `SELECT * FROM fare_slabs
	          WHERE service_type_id = $1 AND km_from <= $2 AND km_to >= $2
	          ORDER BY km_from LIMIT 1`
	if err := r.db.GetContext(ctx, &slab, query, serviceTypeID, distanceKm); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &slab, nil
}

func (r *tariffRepository) GetRentalPackage(ctx context.Context, id string) (*models.RentalPackage, error) {
	var pkg models.RentalPackage
	query := `SELECT * FROM rental_packages WHERE id = $1`
	if err := r.db.GetContext(ctx, &pkg, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *tariffRepository) GetRentalService(ctx context.Context, serviceTypeID, packageID string) (*models.RentalService, error) {
	var rs models.RentalService
	query := `SELECT * FROM rental_services WHERE service_type_id = $1 AND package_id = $2`
	if err := r.db.GetContext(ctx, &rs, query, serviceTypeID, packageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &rs, nil
}

func (r *tariffRepository) ListRentalServicesByPackage(ctx context.Context, packageID string) ([]*models.RentalService, error) {
	var services []*models.RentalService
	query := `SELECT * FROM rental_services WHERE package_id = $1`
	if err := r.db.SelectContext(ctx, &services, query, packageID); err != nil {
		return nil, err
	}
	return services, nil
}

func (r *tariffRepository) CreateServiceType(ctx context.Context, st *models.ServiceType) error {
	query := `INSERT INTO service_types (id, name, number_of_seats, base_fare, min_fare,
	            booking_fee, tax_percentage, price_per_minute, price_per_km,
	            daily_service, rental_service, outstation_service,
	            provider_commission, admin_commission, driver_cash_limit, status, created_at)
	          VALUES (:id, :name, :number_of_seats, :base_fare, :min_fare,
	            :booking_fee, :tax_percentage, :price_per_minute, :price_per_km,
	            :daily_service, :rental_service, :outstation_service,
	            :provider_commission, :admin_commission, :driver_cash_limit, :status, :created_at)`
	_, err := r.db.NamedExecContext(ctx, query, st)
	return err
}

func (r *tariffRepository) CreateSlab(ctx context.Context, slab *models.FareSlab) error {
	query := `INSERT INTO fare_slabs (id, service_type_id, km_from, km_to, base_fare, rate_per_km, rate_per_minute)
	          VALUES (:id, :service_type_id, :km_from, :km_to, :base_fare, :rate_per_km, :rate_per_minute)`
	_, err := r.db.NamedExecContext(ctx, query, slab)
	return err
}

func (r *tariffRepository) CreateRentalPackage(ctx context.Context, pkg *models.RentalPackage) error {
	query := `INSERT INTO rental_packages (id, distance_km, time_hours)
	          VALUES (:id, :distance_km, :time_hours)`
	_, err := r.db.NamedExecContext(ctx, query, pkg)
	return err
}

func (r *tariffRepository) CreateRentalService(ctx context.Context, rs *models.RentalService) error {
	query := `INSERT INTO rental_services (id, service_type_id, package_id, base_fare, booking_fee, per_km_rate, per_minute_rate)
	          VALUES (:id, :service_type_id, :package_id, :base_fare, :booking_fee, :per_km_rate, :per_minute_rate)`
	_, err := r.db.NamedExecContext(ctx, query, rs)
	return err
}
