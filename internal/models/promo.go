package models

import (
	"time"
)

// Promo type constants
const (
	PromoTypeFlat    = "Flat"
	PromoTypePercent = "Percent"
)

type PromoCode struct {
	ID              string     `db:"id" json:"id"`
	Code            string     `db:"code" json:"code"`
	Type            string     `db:"type" json:"type"`
	DiscountAmount  float64    `db:"discount_amount" json:"discount_amount"`
	PercentageValue float64    `db:"percentage_value" json:"percentage_value"`
	StartTime       *time.Time `db:"start_time" json:"start_time,omitempty"`
	ExpiryTime      *time.Time `db:"expiry_time" json:"expiry_time,omitempty"`
	MaxUsage        *int       `db:"max_usage" json:"max_usage,omitempty"`
	MaxUsagePerUser *int       `db:"max_usage_per_user" json:"max_usage_per_user,omitempty"`
	Description     string     `db:"description" json:"description,omitempty"`
}

type PromoCodeUsage struct {
	ID              string    `db:"id" json:"id"`
	PromoID         string    `db:"promo_id" json:"promo_id"`
	PassengerID     string    `db:"passenger_id" json:"passenger_id"`
	DiscountApplied float64   `db:"discount_applied" json:"discount_applied"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type ApplyPromoRequest struct {
	PassengerID string  `json:"passenger_id" validate:"required,uuid"`
	PromoCode   string  `json:"promo_code" validate:"required"`
	Fare        float64 `json:"fare" validate:"required,gt=0"`
}

type ApplyPromoResponse struct {
	DiscountedFare float64 `json:"discounted_fare"`
	Discount       float64 `json:"discount"`
}
