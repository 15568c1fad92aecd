package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/saifpatel9/dropme/internal/database"
	apperrors "github.com/saifpatel9/dropme/internal/errors"
	"github.com/saifpatel9/dropme/internal/models"
	"github.com/saifpatel9/dropme/pkg/utils"
)

type PromoRepository interface {
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	// ApplyUsage checks usage caps and records the usage in one transaction so
	// concurrent applications cannot overshoot max_usage.
	ApplyUsage(ctx context.Context, promo *models.PromoCode, passengerID string, discount float64) error
}

type promoRepository struct {
	db *database.PostgresDB
}

func NewPromoRepository(db *database.PostgresDB) PromoRepository {
	return &promoRepository{db: db}
}

func (r *promoRepository) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	query := `SELECT * FROM promo_codes WHERE LOWER(code) = LOWER($1)`
	if err := r.db.GetContext(ctx, &promo, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &promo, nil
}

func (r *promoRepository) ApplyUsage(ctx context.Context, promo *models.PromoCode, passengerID string, discount float64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Lock the promo row while counting so two passengers cannot both claim
	// the last slot.
	var locked models.PromoCode
	if err := tx.GetContext(ctx, &locked, `SELECT * FROM promo_codes WHERE id = $1 FOR UPDATE`, promo.ID); err != nil {
		return err
	}

	if locked.MaxUsage != nil {
		var total int
		if err := tx.GetContext(ctx, &total,
			`SELECT COUNT(*) FROM promo_code_usages WHERE promo_id = $1`, locked.ID); err != nil {
			return err
		}
		if total >= *locked.MaxUsage {
			return apperrors.ErrConflict
		}
	}

	if locked.MaxUsagePerUser != nil {
		var byUser int
		if err := tx.GetContext(ctx, &byUser,
			`SELECT COUNT(*) FROM promo_code_usages WHERE promo_id = $1 AND passenger_id = $2`,
			locked.ID, passengerID); err != nil {
			return err
		}
		if byUser >= *locked.MaxUsagePerUser {
			return apperrors.ErrConflict
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO promo_code_usages (id, promo_id, passenger_id, discount_applied, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		utils.GenerateID(), locked.ID, passengerID, discount, time.Now())
	if err != nil {
		return err
	}

	return tx.Commit()
}
