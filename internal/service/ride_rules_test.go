package service

import "testing"

func testRules() RideRuleConfig {
	return RideRuleConfig{
		ThresholdKm:        40,
		DisallowedVehicles: []string{"Bike", "Auto"},
	}
}

func TestDeriveRideType(t *testing.T) {
	pune := LocalityMeta{City: "Pune", District: "Pune", State: "Maharashtra"}
	puneSuburb := LocalityMeta{City: "Pune", District: "Pune", State: "Maharashtra"}
	mumbai := LocalityMeta{City: "Mumbai", District: "Mumbai Suburban", State: "Maharashtra"}
	blank := LocalityMeta{}

	km := func(v float64) *float64 { return &v }

	tests := []struct {
		name       string
		requested  string
		pickup     LocalityMeta
		drop       LocalityMeta
		distanceKm *float64
		wantType   string
		wantReason string
	}{
		{
			name:       "rental request wins over distance",
			requested:  "rental",
			pickup:     pune,
			drop:       mumbai,
			distanceKm: km(150),
			wantType:   "rental",
			wantReason: RideReasonRequested,
		},
		{
			name:       "distance at threshold forces outstation",
			pickup:     pune,
			drop:       puneSuburb,
			distanceKm: km(40),
			wantType:   "outstation",
			wantReason: RideReasonDistance,
		},
		{
			name:       "short trip same city is daily",
			pickup:     pune,
			drop:       puneSuburb,
			distanceKm: km(8),
			wantType:   "daily",
			wantReason: RideReasonLocality,
		},
		{
			name:       "different cities below threshold is outstation",
			pickup:     pune,
			drop:       mumbai,
			distanceKm: km(30),
			wantType:   "outstation",
			wantReason: RideReasonLocality,
		},
		{
			name:       "no metadata falls back to daily",
			pickup:     blank,
			drop:       blank,
			distanceKm: km(12),
			wantType:   "daily",
			wantReason: RideReasonFallback,
		},
		{
			name:       "one blank side is indeterminate, falls back",
			pickup:     pune,
			drop:       blank,
			distanceKm: km(12),
			wantType:   "daily",
			wantReason: RideReasonFallback,
		},
		{
			name:       "requested outstation kept when metadata is sparse",
			requested:  "outstation",
			pickup:     blank,
			drop:       blank,
			distanceKm: km(12),
			wantType:   "outstation",
			wantReason: RideReasonRequested,
		},
		{
			name:       "case insensitive city match",
			pickup:     LocalityMeta{City: "PUNE", State: "MAHARASHTRA"},
			drop:       LocalityMeta{City: "pune", State: "maharashtra"},
			distanceKm: km(10),
			wantType:   "daily",
			wantReason: RideReasonLocality,
		},
		{
			name:       "district stands in for a missing city",
			pickup:     LocalityMeta{District: "Thane", State: "Maharashtra"},
			drop:       LocalityMeta{District: "Thane", State: "Maharashtra"},
			distanceKm: km(15),
			wantType:   "daily",
			wantReason: RideReasonLocality,
		},
		{
			name:       "same city name across states is not local",
			pickup:     LocalityMeta{City: "Aurangabad", State: "Maharashtra"},
			drop:       LocalityMeta{City: "Aurangabad", State: "Bihar"},
			distanceKm: km(20),
			wantType:   "outstation",
			wantReason: RideReasonLocality,
		},
		{
			name:       "missing state is indeterminate, falls back",
			pickup:     LocalityMeta{City: "Pune"},
			drop:       LocalityMeta{City: "Pune"},
			distanceKm: km(10),
			wantType:   "daily",
			wantReason: RideReasonFallback,
		},
		{
			name:       "no distance provided, locality decides",
			pickup:     pune,
			drop:       mumbai,
			distanceKm: nil,
			wantType:   "outstation",
			wantReason: RideReasonLocality,
		},
		{
			name:       "daily request cannot override distance",
			requested:  "daily",
			pickup:     pune,
			drop:       mumbai,
			distanceKm: km(150),
			wantType:   "outstation",
			wantReason: RideReasonDistance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveRideType(tt.requested, tt.pickup, tt.drop, tt.distanceKm, testRules())
			if got.RideType != tt.wantType {
				t.Errorf("ride type = %q, want %q", got.RideType, tt.wantType)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestDeriveRideTypeAllowLists(t *testing.T) {
	pune := LocalityMeta{City: "Pune", State: "Maharashtra"}
	mumbai := LocalityMeta{City: "Mumbai", State: "Maharashtra"}
	nashik := LocalityMeta{City: "Nashik", State: "Maharashtra"}
	indore := LocalityMeta{City: "Indore", State: "Madhya Pradesh"}
	km := func(v float64) *float64 { return &v }

	// Both cities on the allow-list read as local even across city lines.
	cfg := testRules()
	cfg.AllowedCities = []string{"Pune", "Mumbai"}
	got := DeriveRideType("", pune, mumbai, km(20), cfg)
	if got.RideType != "daily" || got.Reason != RideReasonLocality {
		t.Errorf("allow-listed cross-city trip = %+v, want daily/locality", got)
	}

	// One endpoint off the list gets no grant.
	got = DeriveRideType("", pune, nashik, km(20), cfg)
	if got.RideType != "outstation" || got.Reason != RideReasonLocality {
		t.Errorf("half-listed cross-city trip = %+v, want outstation/locality", got)
	}

	// A same-city trip never needs the list.
	got = DeriveRideType("", nashik, nashik, km(5), cfg)
	if got.RideType != "daily" || got.Reason != RideReasonLocality {
		t.Errorf("same-city trip in unlisted city = %+v, want daily/locality", got)
	}

	// A shared allow-listed state grants locality on its own.
	cfg = testRules()
	cfg.AllowedStates = []string{"Maharashtra"}
	got = DeriveRideType("", pune, nashik, km(30), cfg)
	if got.RideType != "daily" || got.Reason != RideReasonLocality {
		t.Errorf("shared allowed state trip = %+v, want daily/locality", got)
	}
	got = DeriveRideType("", pune, indore, km(30), cfg)
	if got.RideType != "outstation" || got.Reason != RideReasonLocality {
		t.Errorf("cross-state trip = %+v, want outstation/locality", got)
	}
}

func TestIsVehicleAllowed(t *testing.T) {
	cfg := testRules()

	tests := []struct {
		vehicle  string
		rideType string
		want     bool
	}{
		{"Bike", "outstation", false},
		{"auto", "outstation", false},
		{"Sedan", "outstation", true},
		{"Bike", "daily", true},
		{"Bike", "rental", true},
	}
	for _, tt := range tests {
		if got := IsVehicleAllowed(cfg, tt.vehicle, tt.rideType); got != tt.want {
			t.Errorf("IsVehicleAllowed(%q, %q) = %v, want %v", tt.vehicle, tt.rideType, got, tt.want)
		}
	}
}
