package models

import (
	"time"
)

// Booking status constants
const (
	BookingStatusPending              = "Pending"
	BookingStatusConfirmed            = "Confirmed"
	BookingStatusArrived              = "Arrived"
	BookingStatusOngoing              = "Ongoing"
	BookingStatusCompleted            = "Completed"
	BookingStatusCancelled            = "Cancelled"
	BookingStatusCancelledByDriver    = "CancelledByDriver"
	BookingStatusCancelledByPassenger = "CancelledByPassenger"
)

// Cancellation actors
const (
	CancelledByPassenger = "passenger"
	CancelledByDriver    = "driver"
	CancelledByAdmin     = "admin"
)

// Valid booking state transitions. Cancellation is reachable from every
// non-terminal state; the ride path itself is monotonic.
var ValidBookingTransitions = map[string][]string{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusArrived, BookingStatusCancelled, BookingStatusCancelledByDriver, BookingStatusCancelledByPassenger},
	BookingStatusConfirmed: {BookingStatusArrived, BookingStatusOngoing, BookingStatusCancelled, BookingStatusCancelledByDriver, BookingStatusCancelledByPassenger},
	BookingStatusArrived:   {BookingStatusOngoing, BookingStatusCancelled, BookingStatusCancelledByDriver, BookingStatusCancelledByPassenger},
	BookingStatusOngoing:   {BookingStatusCompleted, BookingStatusCancelled, BookingStatusCancelledByDriver, BookingStatusCancelledByPassenger},

	BookingStatusCompleted:            {},
	BookingStatusCancelled:            {},
	BookingStatusCancelledByDriver:    {},
	BookingStatusCancelledByPassenger: {},
}

type Booking struct {
	ID                 string     `db:"id" json:"id"`
	PassengerID        string     `db:"passenger_id" json:"passenger_id"`
	DriverID           *string    `db:"driver_id" json:"driver_id,omitempty"`
	PickupLocation     string     `db:"pickup_location" json:"pickup_location"`
	DropoffLocation    string     `db:"dropoff_location" json:"dropoff_location"`
	PickupLat          float64    `db:"pickup_lat" json:"pickup_lat"`
	PickupLng          float64    `db:"pickup_lng" json:"pickup_lng"`
	DropLat            float64    `db:"drop_lat" json:"drop_lat"`
	DropLng            float64    `db:"drop_lng" json:"drop_lng"`
	ScheduledTime      time.Time  `db:"scheduled_time" json:"scheduled_time"`
	Status             string     `db:"status" json:"status"`
	Fare               float64    `db:"fare" json:"fare"`
	DistanceKm         float64    `db:"distance_km" json:"distance_km"`
	DurationMin        float64    `db:"duration_min" json:"duration_min"`
	ServiceTypeID      string     `db:"service_type_id" json:"service_type_id"`
	PaymentMode        string     `db:"payment_mode" json:"payment_mode"`
	IsImmediate        bool       `db:"is_immediate" json:"is_immediate"`
	CancelledBy        *string    `db:"cancelled_by" json:"cancelled_by,omitempty"`
	CancellationReason *string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CancellationStage  *string    `db:"cancellation_stage" json:"cancellation_stage,omitempty"`
	CancelledAt        *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

type BookingResponse struct {
	ID              string             `json:"id"`
	Status          string             `json:"status"`
	PickupLocation  string             `json:"pickup"`
	DropoffLocation string             `json:"dropoff"`
	Fare            float64            `json:"fare"`
	ServiceType     string             `json:"service_type,omitempty"`
	PaymentMode     string             `json:"payment_mode"`
	ScheduledTime   time.Time          `json:"scheduled_time"`
	Driver          *DriverResponse    `json:"driver,omitempty"`
	Passenger       *PassengerResponse `json:"passenger,omitempty"`
}

type CancelBookingRequest struct {
	PassengerID string `json:"passenger_id" validate:"required,uuid"`
	Reason      string `json:"reason,omitempty"`
}

func (b *Booking) ToResponse() *BookingResponse {
	return &BookingResponse{
		ID:              b.ID,
		Status:          b.Status,
		PickupLocation:  b.PickupLocation,
		DropoffLocation: b.DropoffLocation,
		Fare:            b.Fare,
		PaymentMode:     b.PaymentMode,
		ScheduledTime:   b.ScheduledTime,
	}
}

// CanTransitionTo checks if a booking can move to a new status
func (b *Booking) CanTransitionTo(newStatus string) bool {
	validNextStates, exists := ValidBookingTransitions[b.Status]
	if !exists {
		return false
	}

	for _, state := range validNextStates {
		if state == newStatus {
			return true
		}
	}
	return false
}

// IsTerminal returns true for completed and cancelled bookings
func (b *Booking) IsTerminal() bool {
	return len(ValidBookingTransitions[b.Status]) == 0
}

func IsCancelledStatus(status string) bool {
	return status == BookingStatusCancelled ||
		status == BookingStatusCancelledByDriver ||
		status == BookingStatusCancelledByPassenger
}
