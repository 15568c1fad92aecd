//go:build ignore

// Seeds service types, fare slabs, rental packages, and sample users for
// local development. Run with: go run scripts/seed_data.go
package main

import (
	"context"
	"log"
	"time"

	"github.com/saifpatel9/dropme/internal/config"
	"github.com/saifpatel9/dropme/internal/database"
	"github.com/saifpatel9/dropme/internal/models"
	"github.com/saifpatel9/dropme/internal/repository"
	"github.com/saifpatel9/dropme/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBMaxIdleConnections)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	tariffRepo := repository.NewTariffRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	passengerRepo := repository.NewPassengerRepository(db)

	now := time.Now()

	type rate struct {
		name       string
		seats      int
		baseFare   float64
		minFare    float64
		bookingFee float64
		perMin     float64
		perKm      float64
		daily      bool
		rental     bool
		outstation bool
	}
	rates := []rate{
		{"Bike", 1, 15, 25, 2, 0.75, 4, true, false, false},
		{"Auto", 3, 20, 30, 3, 1, 6, true, false, false},
		{"Hatchback", 4, 30, 50, 5, 1.25, 9, true, true, true},
		{"Sedan", 4, 40, 60, 5, 1.5, 11, true, true, true},
		{"SUV", 6, 50, 80, 8, 2, 14, true, true, true},
	}

	serviceTypeIDs := make(map[string]string)
	for _, r := range rates {
		st := &models.ServiceType{
			ID:                 utils.GenerateID(),
			Name:               r.name,
			NumberOfSeats:      r.seats,
			BaseFare:           r.baseFare,
			MinFare:            r.minFare,
			BookingFee:         r.bookingFee,
			TaxPercentage:      5,
			PricePerMinute:     r.perMin,
			PricePerKm:         r.perKm,
			DailyService:       r.daily,
			RentalService:      r.rental,
			OutstationService:  r.outstation,
			ProviderCommission: 80,
			AdminCommission:    20,
			DriverCashLimit:    5000,
			Status:             models.ServiceStatusActive,
			CreatedAt:          now,
		}
		if err := tariffRepo.CreateServiceType(ctx, st); err != nil {
			log.Fatalf("Failed to create service type %s: %v", r.name, err)
		}
		serviceTypeIDs[r.name] = st.ID
		log.Printf("Created service type %s", r.name)
	}

	// Long-trip slabs override the flat tariff for outstation-capable classes.
	slabs := []struct {
		service string
		from    float64
		to      float64
		base    float64
		perKm   float64
		perMin  float64
	}{
		{"Sedan", 40, 100, 100, 10, 1},
		{"Sedan", 100, 500, 150, 9, 0.75},
		{"SUV", 40, 100, 140, 13, 1.5},
		{"SUV", 100, 500, 200, 12, 1},
		{"Hatchback", 40, 100, 80, 8, 1},
	}
	for _, s := range slabs {
		slab := &models.FareSlab{
			ID:            utils.GenerateID(),
			ServiceTypeID: serviceTypeIDs[s.service],
			KmFrom:        s.from,
			KmTo:          s.to,
			BaseFare:      s.base,
			RatePerKm:     s.perKm,
			RatePerMinute: s.perMin,
		}
		if err := tariffRepo.CreateSlab(ctx, slab); err != nil {
			log.Fatalf("Failed to create fare slab: %v", err)
		}
	}
	log.Printf("Created %d fare slabs", len(slabs))

	// Rental packages with per-class pricing.
	packages := []struct {
		km    float64
		hours float64
	}{
		{10, 1},
		{40, 4},
		{80, 8},
	}
	for _, p := range packages {
		pkg := &models.RentalPackage{
			ID:         utils.GenerateID(),
			DistanceKm: p.km,
			TimeHours:  p.hours,
		}
		if err := tariffRepo.CreateRentalPackage(ctx, pkg); err != nil {
			log.Fatalf("Failed to create rental package: %v", err)
		}
		for _, name := range []string{"Hatchback", "Sedan", "SUV"} {
			rs := &models.RentalService{
				ID:            utils.GenerateID(),
				ServiceTypeID: serviceTypeIDs[name],
				PackageID:     pkg.ID,
				BaseFare:      50,
				BookingFee:    10,
				PerKmRate:     8,
				PerMinuteRate: 0.5,
			}
			if err := tariffRepo.CreateRentalService(ctx, rs); err != nil {
				log.Fatalf("Failed to create rental service: %v", err)
			}
		}
	}
	log.Printf("Created %d rental packages", len(packages))

	drivers := []struct {
		first   string
		last    string
		vehicle string
		plate   string
		rating  float64
	}{
		{"Ravi", "Sharma", "Sedan", "MH12AB1234", 4.8},
		{"Amit", "Patil", "Sedan", "MH12CD5678", 4.8},
		{"Sunil", "Kumar", "SUV", "MH14EF9012", 4.5},
		{"Vikram", "Singh", "Hatchback", "MH01GH3456", 4.2},
		{"Rohit", "Jadhav", "Bike", "MH02IJ7890", 4.9},
		{"Sanjay", "More", "Auto", "MH03KL2345", 4.0},
	}
	for i, d := range drivers {
		driver := &models.Driver{
			ID:           utils.GenerateID(),
			FirstName:    d.first,
			LastName:     d.last,
			Email:        d.first + ".driver@example.com",
			Phone:        "+9198765432" + string(rune('0'+i)),
			VehicleType:  d.vehicle,
			PlateNumber:  d.plate,
			Manufacturer: "Maruti",
			Color:        "White",
			Rating:       d.rating,
			Availability: true,
			Status:       models.DriverStatusActive,
			CreatedAt:    now,
		}
		if err := driverRepo.Create(ctx, driver); err != nil {
			log.Fatalf("Failed to create driver %s: %v", d.first, err)
		}
	}
	log.Printf("Created %d drivers", len(drivers))

	passengers := []struct {
		first string
		last  string
	}{
		{"Neha", "Gupta"},
		{"Arjun", "Mehta"},
		{"Priya", "Iyer"},
	}
	for i, p := range passengers {
		passenger := &models.Passenger{
			ID:        utils.GenerateID(),
			FirstName: p.first,
			LastName:  p.last,
			Email:     p.first + ".rider@example.com",
			Phone:     "+9191234567" + string(rune('0'+i)),
			CreatedAt: now,
		}
		if err := passengerRepo.Create(ctx, passenger); err != nil {
			log.Fatalf("Failed to create passenger %s: %v", p.first, err)
		}
	}
	log.Printf("Created %d passengers", len(passengers))

	log.Println("Seed complete")
}
