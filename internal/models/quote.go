package models

// QuoteRequest carries everything the fare engine needs for an estimate.
// Distance and duration come from the caller's routing provider; this service
// never computes geographic distance itself.
type QuoteRequest struct {
	RideType        string   `json:"ride_type,omitempty"`
	PickupCity      string   `json:"pickup_city,omitempty"`
	PickupDistrict  string   `json:"pickup_district,omitempty"`
	PickupState     string   `json:"pickup_state,omitempty"`
	DropCity        string   `json:"drop_city,omitempty"`
	DropDistrict    string   `json:"drop_district,omitempty"`
	DropState       string   `json:"drop_state,omitempty"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	DurationMin     *float64 `json:"duration_min,omitempty"`
	RentalPackageID string   `json:"rental_package_id,omitempty"`
}

type FareQuote struct {
	ServiceName   string  `json:"service_name"`
	NumberOfSeats int     `json:"number_of_seats"`
	Fare          float64 `json:"fare"`
}

type QuoteResponse struct {
	RideType string      `json:"ride_type"`
	Reason   string      `json:"reason"`
	Notice   string      `json:"notice,omitempty"`
	Quotes   []FareQuote `json:"quotes"`
}
