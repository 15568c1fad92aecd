package service

import (
	"context"
	"testing"

	"github.com/saifpatel9/dropme/internal/models"
)

func sedanTariff() *models.ServiceType {
	return &models.ServiceType{
		ID:                 "st-sedan",
		Name:               "Sedan",
		NumberOfSeats:      4,
		BaseFare:           40,
		MinFare:            60,
		BookingFee:         5,
		TaxPercentage:      5,
		PricePerMinute:     1.5,
		PricePerKm:         11,
		DailyService:       true,
		RentalService:      true,
		OutstationService:  true,
		ProviderCommission: 80,
		AdminCommission:    20,
		Status:             models.ServiceStatusActive,
	}
}

func TestApplyTax(t *testing.T) {
	tests := []struct {
		subtotal float64
		taxPct   float64
		want     float64
	}{
		{118.10, 5, 125},
		{100, 5, 105},
		{100, 0, 100},
		{46.5, 5, 49},
	}
	for _, tt := range tests {
		if got := ApplyTax(tt.subtotal, tt.taxPct); got != tt.want {
			t.Errorf("ApplyTax(%v, %v) = %v, want %v", tt.subtotal, tt.taxPct, got, tt.want)
		}
	}
}

func TestPriceTripFlatTariff(t *testing.T) {
	tariffs := newFakeTariffRepo()
	st := sedanTariff()
	tariffs.CreateServiceType(context.Background(), st)

	svc := NewFareService(tariffs, testRules())

	// 40 + 11*10 + 1.5*20 + 5 = 185, *1.05 = 194.25, ceil = 195
	fare, err := svc.PriceTrip(context.Background(), st, models.RideTypeDaily, 10, 20, "")
	if err != nil {
		t.Fatalf("PriceTrip: %v", err)
	}
	if fare != 195 {
		t.Errorf("fare = %v, want 195", fare)
	}
}

func TestPriceTripMinFareClamp(t *testing.T) {
	tariffs := newFakeTariffRepo()
	st := sedanTariff()
	st.BaseFare = 30
	st.PricePerKm = 9
	st.PricePerMinute = 1.25
	st.MinFare = 50
	tariffs.CreateServiceType(context.Background(), st)

	svc := NewFareService(tariffs, testRules())

	// 30 + 9 + 2.5 + 5 = 46.5, *1.05 = 48.825, ceil = 49, clamped to 50
	fare, err := svc.PriceTrip(context.Background(), st, models.RideTypeDaily, 1, 2, "")
	if err != nil {
		t.Fatalf("PriceTrip: %v", err)
	}
	if fare != 50 {
		t.Errorf("daily fare = %v, want min fare 50", fare)
	}

	// Outstation trips skip the floor.
	fare, err = svc.PriceTrip(context.Background(), st, models.RideTypeOutstation, 1, 2, "")
	if err != nil {
		t.Fatalf("PriceTrip: %v", err)
	}
	if fare != 49 {
		t.Errorf("outstation fare = %v, want 49", fare)
	}
}

func TestPriceTripSlabOverride(t *testing.T) {
	tariffs := newFakeTariffRepo()
	st := sedanTariff()
	tariffs.CreateServiceType(context.Background(), st)
	tariffs.CreateSlab(context.Background(), &models.FareSlab{
		ID:            "slab-1",
		ServiceTypeID: st.ID,
		KmFrom:        40,
		KmTo:          100,
		BaseFare:      100,
		RatePerKm:     10,
		RatePerMinute: 1,
	})

	svc := NewFareService(tariffs, testRules())

	// Slab applies: 100 + 10*50 + 1*60 + 5 = 665, *1.05 = 698.25, ceil = 699
	fare, err := svc.PriceTrip(context.Background(), st, models.RideTypeOutstation, 50, 60, "")
	if err != nil {
		t.Fatalf("PriceTrip: %v", err)
	}
	if fare != 699 {
		t.Errorf("slab fare = %v, want 699", fare)
	}

	// Below the slab band the flat tariff applies.
	fare, err = svc.PriceTrip(context.Background(), st, models.RideTypeDaily, 10, 20, "")
	if err != nil {
		t.Fatalf("PriceTrip: %v", err)
	}
	if fare != 195 {
		t.Errorf("flat fare = %v, want 195", fare)
	}
}

func TestPriceTripRental(t *testing.T) {
	tariffs := newFakeTariffRepo()
	st := sedanTariff()
	tariffs.CreateServiceType(context.Background(), st)
	tariffs.CreateRentalPackage(context.Background(), &models.RentalPackage{
		ID:         "pkg-40",
		DistanceKm: 40,
		TimeHours:  4,
	})
	tariffs.CreateRentalService(context.Background(), &models.RentalService{
		ID:            "rs-1",
		ServiceTypeID: st.ID,
		PackageID:     "pkg-40",
		BaseFare:      50,
		BookingFee:    10,
		PerKmRate:     8,
		PerMinuteRate: 0.5,
	})

	svc := NewFareService(tariffs, testRules())

	// 50 + 8*40 + 0.5*240 + 10 = 500, *1.05 = 525
	fare, err := svc.PriceTrip(context.Background(), st, models.RideTypeRental, 0, 0, "pkg-40")
	if err != nil {
		t.Fatalf("PriceTrip: %v", err)
	}
	if fare != 525 {
		t.Errorf("rental fare = %v, want 525", fare)
	}

	if _, err := svc.PriceTrip(context.Background(), st, models.RideTypeRental, 0, 0, ""); err == nil {
		t.Error("expected error for rental without package")
	}
}

func TestCommissionSplit(t *testing.T) {
	svc := NewFareService(newFakeTariffRepo(), testRules())
	st := sedanTariff()

	// 105 gross at 5% tax backs out to 100; minus 5 booking fee leaves 95;
	// 80% of that is the driver's.
	split := svc.CommissionSplit(105, st)
	if split.Subtotal != 100 {
		t.Errorf("subtotal = %v, want 100", split.Subtotal)
	}
	if split.CommissionBase != 95 {
		t.Errorf("commission base = %v, want 95", split.CommissionBase)
	}
	if split.DriverShare != 76 {
		t.Errorf("driver share = %v, want 76", split.DriverShare)
	}
	if split.AdminShare != 19 {
		t.Errorf("admin share = %v, want 19", split.AdminShare)
	}
}

func TestCommissionSplitNeverNegative(t *testing.T) {
	svc := NewFareService(newFakeTariffRepo(), testRules())
	st := sedanTariff()
	st.BookingFee = 500

	split := svc.CommissionSplit(105, st)
	if split.CommissionBase != 0 || split.DriverShare != 0 {
		t.Errorf("split = %+v, want zero shares when fee exceeds subtotal", split)
	}
}

func TestQuoteFiltersVehicles(t *testing.T) {
	tariffs := newFakeTariffRepo()
	sedan := sedanTariff()
	tariffs.CreateServiceType(context.Background(), sedan)

	bike := &models.ServiceType{
		ID:             "st-bike",
		Name:           "Bike",
		NumberOfSeats:  1,
		BaseFare:       15,
		MinFare:        25,
		BookingFee:     2,
		TaxPercentage:  5,
		PricePerMinute: 0.75,
		PricePerKm:     4,
		DailyService:   true,
		Status:         models.ServiceStatusActive,
	}
	tariffs.CreateServiceType(context.Background(), bike)

	svc := NewFareService(tariffs, testRules())

	distance := 50.0
	duration := 60.0
	resp, err := svc.Quote(context.Background(), &models.QuoteRequest{
		DistanceKm:  &distance,
		DurationMin: &duration,
	})
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if resp.RideType != models.RideTypeOutstation {
		t.Errorf("ride type = %q, want outstation", resp.RideType)
	}
	if resp.Notice == "" {
		t.Error("expected a notice for the distance override")
	}
	for _, q := range resp.Quotes {
		if q.ServiceName == "Bike" {
			t.Error("Bike should not be quoted for outstation trips")
		}
	}
	if len(resp.Quotes) != 1 || resp.Quotes[0].ServiceName != "Sedan" {
		t.Errorf("quotes = %+v, want only Sedan", resp.Quotes)
	}
}
