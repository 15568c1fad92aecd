package models

import (
	"time"
)

// Payment status constants
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

type Payment struct {
	ID          string     `db:"id" json:"id"`
	PassengerID string     `db:"passenger_id" json:"passenger_id"`
	BookingID   string     `db:"booking_id" json:"booking_id"`
	PaymentMode string     `db:"payment_mode" json:"payment_mode"`
	Amount      float64    `db:"amount" json:"amount"`
	Status      string     `db:"status" json:"status"`
	PaidAt      *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

type PaymentResponse struct {
	ID          string  `json:"id"`
	BookingID   string  `json:"booking_id"`
	PaymentMode string  `json:"payment_mode"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
}

func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		ID:          p.ID,
		BookingID:   p.BookingID,
		PaymentMode: p.PaymentMode,
		Amount:      p.Amount,
		Status:      p.Status,
	}
}
