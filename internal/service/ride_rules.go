package service

import (
	"strings"
)

// Ride type derivation reasons, surfaced to clients so they can explain an
// override ("this trip is 52 km, booked as outstation").
const (
	RideReasonRequested = "requested"
	RideReasonDistance  = "distance"
	RideReasonLocality  = "locality"
	RideReasonFallback  = "fallback"
)

// LocalityMeta is the administrative location of one trip endpoint.
type LocalityMeta struct {
	City     string
	District string
	State    string
}

// RideRuleConfig holds the tunables for ride type derivation.
type RideRuleConfig struct {
	// Trips at or beyond this distance become outstation.
	ThresholdKm float64
	// Vehicle classes that never serve outstation trips.
	DisallowedVehicles []string
	// Optional allow-lists. Empty means every city/state counts as local.
	AllowedCities []string
	AllowedStates []string
}

type RideTypeDecision struct {
	RideType string
	Reason   string
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsFold(list []string, value string) bool {
	v := normalize(value)
	for _, item := range list {
		if normalize(item) == v {
			return true
		}
	}
	return false
}

// IsVehicleAllowed reports whether the vehicle class may serve the ride type.
func IsVehicleAllowed(cfg RideRuleConfig, vehicleType, rideType string) bool {
	if rideType != "outstation" {
		return true
	}
	return !containsFold(cfg.DisallowedVehicles, vehicleType)
}

// primaryLocality prefers the city name, falling back to the district.
func primaryLocality(m LocalityMeta) string {
	if strings.TrimSpace(m.City) != "" {
		return m.City
	}
	return m.District
}

// localityDaily decides whether both endpoints read as local. Returns nil
// when any of the four locality/state fields is blank; a partial address
// must never decide the ride type on its own.
//
// A trip is daily when the endpoints share a locality and state, or when
// both localities appear in the admin allow-list, or when both endpoints
// sit in one state that is itself allow-listed. The allow-lists grant
// locality, they never revoke it.
func localityDaily(cfg RideRuleConfig, pickup, drop LocalityMeta) *bool {
	pickupCity := normalize(primaryLocality(pickup))
	dropCity := normalize(primaryLocality(drop))
	pickupState := normalize(pickup.State)
	dropState := normalize(drop.State)

	if pickupCity == "" || dropCity == "" || pickupState == "" || dropState == "" {
		return nil
	}

	sameCity := pickupCity == dropCity && pickupState == dropState
	bothCitiesAllowed := len(cfg.AllowedCities) > 0 &&
		containsFold(cfg.AllowedCities, pickupCity) &&
		containsFold(cfg.AllowedCities, dropCity)
	sameAllowedState := len(cfg.AllowedStates) > 0 &&
		pickupState == dropState &&
		containsFold(cfg.AllowedStates, pickupState)

	allowed := sameCity || bothCitiesAllowed || sameAllowedState
	return &allowed
}

// DeriveRideType decides the effective ride type for a trip.
//
// Precedence: an explicit rental request always wins; then the distance
// threshold; then locality metadata. When the locality decision is
// indeterminate an explicit outstation request is kept, and everything else
// falls back to daily so sparse metadata never blocks a booking.
func DeriveRideType(requested string, pickup, drop LocalityMeta, distanceKm *float64, cfg RideRuleConfig) RideTypeDecision {
	req := normalize(requested)
	if req == "rental" {
		return RideTypeDecision{RideType: "rental", Reason: RideReasonRequested}
	}

	if distanceKm != nil && cfg.ThresholdKm > 0 && *distanceKm >= cfg.ThresholdKm {
		return RideTypeDecision{RideType: "outstation", Reason: RideReasonDistance}
	}

	if daily := localityDaily(cfg, pickup, drop); daily != nil {
		if *daily {
			return RideTypeDecision{RideType: "daily", Reason: RideReasonLocality}
		}
		return RideTypeDecision{RideType: "outstation", Reason: RideReasonLocality}
	}

	if req == "outstation" {
		return RideTypeDecision{RideType: "outstation", Reason: RideReasonRequested}
	}
	return RideTypeDecision{RideType: "daily", Reason: RideReasonFallback}
}
