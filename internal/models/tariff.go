package models

import (
	"time"
)

// Service type status constants
const (
	ServiceStatusActive   = "active"
	ServiceStatusInactive = "inactive"
)

// ServiceType is the rate card for one vehicle class.
type ServiceType struct {
	ID                 string    `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	NumberOfSeats      int       `db:"number_of_seats" json:"number_of_seats"`
	BaseFare           float64   `db:"base_fare" json:"base_fare"`
	MinFare            float64   `db:"min_fare" json:"min_fare"`
	BookingFee         float64   `db:"booking_fee" json:"booking_fee"`
	TaxPercentage      float64   `db:"tax_percentage" json:"tax_percentage"`
	PricePerMinute     float64   `db:"price_per_minute" json:"price_per_minute"`
	PricePerKm         float64   `db:"price_per_km" json:"price_per_km"`
	DailyService       bool      `db:"daily_service" json:"daily_service"`
	RentalService      bool      `db:"rental_service" json:"rental_service"`
	OutstationService  bool      `db:"outstation_service" json:"outstation_service"`
	ProviderCommission float64   `db:"provider_commission" json:"provider_commission"`
	AdminCommission    float64   `db:"admin_commission" json:"admin_commission"`
	DriverCashLimit    float64   `db:"driver_cash_limit" json:"driver_cash_limit"`
	Status             string    `db:"status" json:"status"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// FareSlab is a distance-banded override of the base tariff. A slab applies
// when km_from <= distance <= km_to for its service type.
type FareSlab struct {
	ID            string  `db:"id" json:"id"`
	ServiceTypeID string  `db:"service_type_id" json:"service_type_id"`
	KmFrom        float64 `db:"km_from" json:"km_from"`
	KmTo          float64 `db:"km_to" json:"km_to"`
	BaseFare      float64 `db:"base_fare" json:"base_fare"`
	RatePerKm     float64 `db:"rate_per_km" json:"rate_per_km"`
	RatePerMinute float64 `db:"rate_per_minute" json:"rate_per_minute"`
}

// Covers reports whether the slab's distance band includes the given distance.
func (s *FareSlab) Covers(distanceKm float64) bool {
	return s.KmFrom <= distanceKm && distanceKm <= s.KmTo
}

// RentalPackage is a fixed distance/time bundle offered for rental rides.
type RentalPackage struct {
	ID         string  `db:"id" json:"id"`
	DistanceKm float64 `db:"distance_km" json:"distance_km"`
	TimeHours  float64 `db:"time_hours" json:"time_hours"`
}

// RentalService prices one rental package for one vehicle class.
type RentalService struct {
	ID            string  `db:"id" json:"id"`
	ServiceTypeID string  `db:"service_type_id" json:"service_type_id"`
	PackageID     string  `db:"package_id" json:"package_id"`
	BaseFare      float64 `db:"base_fare" json:"base_fare"`
	BookingFee    float64 `db:"booking_fee" json:"booking_fee"`
	PerKmRate     float64 `db:"per_km_rate" json:"per_km_rate"`
	PerMinuteRate float64 `db:"per_minute_rate" json:"per_minute_rate"`
}
