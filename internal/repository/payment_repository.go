package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/saifpatel9/dropme/internal/database"
	apperrors "github.com/saifpatel9/dropme/internal/errors"
	"github.com/saifpatel9/dropme/internal/models"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByBookingID(ctx context.Context, bookingID string) (*models.Payment, error)
	MarkCompleted(ctx context.Context, bookingID string, paidAt time.Time) error
}

type paymentRepository struct {
	db *database.PostgresDB
}

func NewPaymentRepository(db *database.PostgresDB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `INSERT INTO payments (id, passenger_id, booking_id, payment_mode, amount, status, paid_at, created_at)
	          VALUES (:id, :passenger_id, :booking_id, :payment_mode, :amount, :status, :paid_at, :created_at)`
	_, err := r.db.NamedExecContext(ctx, query, payment)
	return err
}

func (r *paymentRepository) GetByBookingID(ctx context.Context, bookingID string) (*models.Payment, error) {
	var payment models.Payment
	query := `SELECT * FROM payments WHERE booking_id = $1 ORDER BY created_at DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &payment, query, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) MarkCompleted(ctx context.Context, bookingID string, paidAt time.Time) error {
	query := `UPDATE payments SET status = $1, paid_at = $2 WHERE booking_id = $3`
	_, err := r.db.ExecContext(ctx, query, models.PaymentStatusCompleted, paidAt, bookingID)
	return err
}
