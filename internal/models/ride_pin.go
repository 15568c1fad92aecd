package models

import (
	"time"
)

// RidePin gates the Confirmed/Arrived -> Ongoing transition. The plaintext
// exists only for passenger display and is erased when the pin is deactivated.
type RidePin struct {
	ID          string     `db:"id" json:"id"`
	BookingID   string     `db:"booking_id" json:"booking_id"`
	PinHash     string     `db:"pin_hash" json:"-"`
	PinPlain    string     `db:"pin_plain" json:"-"`
	Attempts    int        `db:"attempts" json:"attempts"`
	LockedUntil *time.Time `db:"locked_until" json:"locked_until,omitempty"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	IsVerified  bool       `db:"is_verified" json:"is_verified"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

type VerifyPinRequest struct {
	Code string `json:"code" validate:"required"`
}

type PinVerifyResult struct {
	Verified     bool       `json:"verified"`
	AttemptsLeft int        `json:"attempts_left,omitempty"`
	LockedUntil  *time.Time `json:"locked_until,omitempty"`
}

// IsLocked reports whether a lockout is set and still in the future.
func (p *RidePin) IsLocked(now time.Time) bool {
	return p.LockedUntil != nil && now.Before(*p.LockedUntil)
}
