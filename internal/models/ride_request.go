package models

import (
	"time"
)

// Ride request status constants
const (
	RideRequestStatusRequested = "Requested"
	RideRequestStatusAccepted  = "Accepted"
	RideRequestStatusRejected  = "Rejected"
	RideRequestStatusExpired   = "Expired"
)

// Ride type constants
const (
	RideTypeDaily      = "daily"
	RideTypeRental     = "rental"
	RideTypeOutstation = "outstation"
)

// Payment modes accepted from the passenger side
const (
	PaymentModeCash   = "cash"
	PaymentModeWallet = "wallet"
	PaymentModeCard   = "card"
	PaymentModeUPI    = "upi"
)

type RideRequest struct {
	ID              string    `db:"id" json:"id"`
	PassengerID     string    `db:"passenger_id" json:"passenger_id"`
	DriverID        *string   `db:"driver_id" json:"driver_id,omitempty"`
	BookingID       *string   `db:"booking_id" json:"booking_id,omitempty"`
	PickupLocation  string    `db:"pickup_location" json:"pickup_location"`
	DropoffLocation string    `db:"dropoff_location" json:"dropoff_location"`
	PickupLat       float64   `db:"pickup_lat" json:"pickup_lat"`
	PickupLng       float64   `db:"pickup_lng" json:"pickup_lng"`
	DropLat         float64   `db:"drop_lat" json:"drop_lat"`
	DropLng         float64   `db:"drop_lng" json:"drop_lng"`
	RideType        string    `db:"ride_type" json:"ride_type"`
	DistanceKm      float64   `db:"distance_km" json:"distance_km"`
	DurationMin     float64   `db:"duration_min" json:"duration_min"`
	Fare            float64   `db:"fare" json:"fare"`
	ServiceTypeID   string    `db:"service_type_id" json:"service_type_id"`
	Status          string    `db:"status" json:"status"`
	PaymentMode     string    `db:"payment_mode" json:"payment_mode"`
	ScheduledTime   time.Time `db:"scheduled_time" json:"scheduled_time"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type CreateRideRequestInput struct {
	PassengerID     string  `json:"passenger_id" validate:"required,uuid"`
	VehicleType     string  `json:"vehicle_type" validate:"required"`
	RideType        string  `json:"ride_type,omitempty"`
	PickupLocation  string  `json:"pickup" validate:"required"`
	DropoffLocation string  `json:"dropoff" validate:"required"`
	PickupLat       float64 `json:"pickup_lat,omitempty"`
	PickupLng       float64 `json:"pickup_lng,omitempty"`
	DropLat         float64 `json:"drop_lat,omitempty"`
	DropLng         float64 `json:"drop_lng,omitempty"`
	PickupCity      string  `json:"pickup_city,omitempty"`
	PickupDistrict  string  `json:"pickup_district,omitempty"`
	PickupState     string  `json:"pickup_state,omitempty"`
	DropCity        string  `json:"drop_city,omitempty"`
	DropDistrict    string  `json:"drop_district,omitempty"`
	DropState       string  `json:"drop_state,omitempty"`
	DistanceKm      float64 `json:"distance_km" validate:"required,gt=0"`
	DurationMin     float64 `json:"duration_min" validate:"required,gt=0"`
	PaymentMode     string  `json:"payment_mode" validate:"required,oneof=cash wallet card upi"`
	PromoCode       string  `json:"promo_code,omitempty"`
	RentalPackageID string  `json:"rental_package_id,omitempty"`
	ScheduledAt     string  `json:"scheduled_at,omitempty"` // RFC3339; empty means now
}

type RideRequestResponse struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	RideType  string          `json:"ride_type"`
	Fare      float64         `json:"fare"`
	DriverID  *string         `json:"driver_id,omitempty"`
	Driver    *DriverResponse `json:"driver,omitempty"`
	BookingID *string         `json:"booking_id,omitempty"`
	Notice    string          `json:"notice,omitempty"`
}

// IsResolved reports whether the request reached a terminal outcome or
// already produced a booking. Reassignment is a no-op for resolved requests.
func (r *RideRequest) IsResolved() bool {
	return r.Status != RideRequestStatusRequested || r.BookingID != nil
}

func IsValidPaymentMode(mode string) bool {
	return mode == PaymentModeCash || mode == PaymentModeWallet ||
		mode == PaymentModeCard || mode == PaymentModeUPI
}
