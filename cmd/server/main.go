package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saifpatel9/dropme/internal/cache"
	"github.com/saifpatel9/dropme/internal/config"
	"github.com/saifpatel9/dropme/internal/database"
	"github.com/saifpatel9/dropme/internal/events"
	"github.com/saifpatel9/dropme/internal/handler"
	"github.com/saifpatel9/dropme/internal/middleware"
	"github.com/saifpatel9/dropme/internal/repository"
	"github.com/saifpatel9/dropme/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize New Relic (optional)
	var nrApp *newrelic.Application
	if cfg.NewRelicEnabled && cfg.NewRelicLicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelicAppName),
			newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
			newrelic.ConfigInfoLogger(os.Stdout),
		)
		if err != nil {
			log.Printf("Warning: Failed to initialize New Relic: %v", err)
		} else if err := nrApp.WaitForConnection(10 * time.Second); err != nil {
			log.Printf("Warning: New Relic connection timeout: %v", err)
		} else {
			log.Println("New Relic connected")
		}
	}

	// Initialize PostgreSQL
	db, err := database.NewPostgres(
		cfg.DatabaseURL,
		cfg.DBMaxConnections,
		cfg.DBMaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis
	redis, err := database.NewRedis(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()
	log.Println("Connected to Redis")

	// Initialize Kafka producer (optional)
	var producer events.Producer = events.NoopProducer{}
	if cfg.KafkaEnabled {
		kafkaProducer := events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaProducer.Close()
		producer = kafkaProducer
		log.Printf("Kafka producer configured for topic %s", cfg.KafkaTopic)
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("Warning: unknown timezone %q, using local time", cfg.Timezone)
		location = time.Local
	}

	// Initialize cache
	dispatchCache := cache.NewRedisDispatchCache(redis.Client)

	// Initialize repositories
	passengerRepo := repository.NewPassengerRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	rideRequestRepo := repository.NewRideRequestRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	ridePinRepo := repository.NewRidePinRepository(db)
	tariffRepo := repository.NewTariffRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	promoRepo := repository.NewPromoRepository(db)
	ratingRepo := repository.NewRatingRepository(db)

	// Initialize services
	rules := service.RideRuleConfig{
		ThresholdKm:        cfg.OutstationThresholdKm,
		DisallowedVehicles: cfg.OutstationDisallowedVehicles,
		AllowedCities:      cfg.AllowedCities,
		AllowedStates:      cfg.AllowedStates,
	}
	fareService := service.NewFareService(tariffRepo, rules)
	promoService := service.NewPromoService(promoRepo)
	queueService := service.NewQueueService(driverRepo, rideRequestRepo, dispatchCache)
	pinService := service.NewPinService(ridePinRepo, bookingRepo)
	driverService := service.NewDriverService(driverRepo, bookingRepo)
	earningsService := service.NewEarningsService(bookingRepo, driverRepo, tariffRepo, fareService, location)
	ratingService := service.NewRatingService(ratingRepo, bookingRepo)
	dispatchService := service.NewDispatchService(
		db, rideRequestRepo, bookingRepo, driverRepo, passengerRepo,
		tariffRepo, paymentRepo, ridePinRepo, ratingRepo,
		dispatchCache, fareService, promoService, queueService, pinService,
		producer, rules,
	)

	// Initialize handlers
	passengerHandler := handler.NewPassengerHandler(dispatchService, fareService, promoService, pinService, ratingService)
	driverHandler := handler.NewDriverHandler(dispatchService, driverService, earningsService)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// New Relic middleware
	if nrApp != nil {
		r.Use(middleware.NewRelicMiddleware(nrApp))
	}

	// Rate limiter (100 requests per minute per IP)
	rateLimiter := middleware.NewRateLimiter(redis.Client, 100, time.Minute)
	r.Use(rateLimiter.Handler)

	// Idempotency middleware
	idempotencyMw := middleware.NewIdempotencyMiddleware(redis.Client)
	r.Use(idempotencyMw.Handler)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := db.Health(ctx); err != nil {
			http.Error(w, "database unhealthy", http.StatusServiceUnavailable)
			return
		}
		if err := redis.Health(ctx); err != nil {
			http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","services":{"database":"up","redis":"up"}}`))
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		passengerHandler.RegisterRoutes(r)
		driverHandler.RegisterRoutes(r)
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	log.Println("API endpoints:")
	log.Println("  POST /v1/quotes                        - Fare quotes")
	log.Println("  POST /v1/ride-requests                 - Create ride request")
	log.Println("  POST /v1/ride-requests/{id}/reassign   - Next driver")
	log.Println("  POST /v1/drivers/{id}/accept           - Accept ride")
	log.Println("  POST /v1/drivers/{id}/bookings/{b}/verify-pin - Verify ride pin")
	log.Println("  GET  /v1/drivers/{id}/earnings         - Driver earnings")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped gracefully")
}
