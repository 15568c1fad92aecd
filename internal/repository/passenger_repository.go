package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/saifpatel9/dropme/internal/database"
	apperrors "github.com/saifpatel9/dropme/internal/errors"
	"github.com/saifpatel9/dropme/internal/models"
)

type PassengerRepository interface {
	GetByID(ctx context.Context, id string) (*models.Passenger, error)
	Create(ctx context.Context, passenger *models.Passenger) error
}

type passengerRepository struct {
	db *database.PostgresDB
}

func NewPassengerRepository(db *database.PostgresDB) PassengerRepository {
	return &passengerRepository{db: db}
}

func (r *passengerRepository) GetByID(ctx context.Context, id string) (*models.Passenger, error) {
	var passenger models.Passenger
	query := `SELECT * FROM passengers WHERE id = $1`
	if err := r.db.GetContext(ctx, &passenger, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &passenger, nil
}

func (r *passengerRepository) Create(ctx context.Context, passenger *models.Passenger) error {
	query := `INSERT INTO passengers (id, first_name, last_name, email, phone, created_at)
	          VALUES (:id, :first_name, :last_name, :email, :phone, :created_at)`
	_, err := r.db.NamedExecContext(ctx, query, passenger)
	return err
}
