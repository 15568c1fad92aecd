package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/saifpatel9/dropme/internal/cache"
	"github.com/saifpatel9/dropme/internal/events"
	"github.com/saifpatel9/dropme/internal/models"
	"github.com/saifpatel9/dropme/internal/observability"
	"github.com/saifpatel9/dropme/internal/repository"
	"github.com/saifpatel9/dropme/pkg/utils"

	apperrors "github.com/saifpatel9/dropme/internal/errors"
)

// DispatchService runs the booking lifecycle from ride request through
// completion.
type DispatchService interface {
	CreateRideRequest(ctx context.Context, input *models.CreateRideRequestInput) (*models.RideRequestResponse, error)
	GetAssignment(ctx context.Context, passengerID, rideRequestID string) (*models.RideRequestResponse, error)
	PassengerBookings(ctx context.Context, passengerID string) ([]*models.BookingResponse, error)
	Reassign(ctx context.Context, passengerID, rideRequestID string) (*models.RideRequestResponse, error)
	AcceptRide(ctx context.Context, driverID, rideRequestID string) (*models.Booking, error)
	RejectRide(ctx context.Context, driverID, rideRequestID string) error
	OpenRequestsForDriver(ctx context.Context, driverID string) ([]*DriverRequestView, error)
	MarkArrived(ctx context.Context, driverID, bookingID string) error
	VerifyPin(ctx context.Context, driverID, bookingID, code string) (*models.PinVerifyResult, error)
	StartRide(ctx context.Context, driverID, bookingID string) error
	EndRide(ctx context.Context, driverID, bookingID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID string, req *models.CancelBookingRequest) error
	BookingStatus(ctx context.Context, bookingID string) (*BookingStatusView, error)
}

// DriverRequestView is what a driver sees when polling for open offers.
type DriverRequestView struct {
	RideRequestID   string  `json:"ride_request_id"`
	PassengerName   string  `json:"passenger_name"`
	PassengerRating float64 `json:"passenger_rating"`
	PickupLocation  string  `json:"pickup"`
	DropoffLocation string  `json:"dropoff"`
	DistanceKm      float64 `json:"distance_km"`
	Fare            float64 `json:"fare"`
	RideType        string  `json:"ride_type"`
	PaymentMode     string  `json:"payment_mode"`
}

type BookingStatusView struct {
	BookingID     string                 `json:"booking_id"`
	Status        string                 `json:"status"`
	DriverArrived bool                   `json:"driver_arrived"`
	Driver        *models.DriverResponse `json:"driver,omitempty"`
}

// TxRunner executes fn inside a database transaction, rolling back when fn
// returns an error. *database.PostgresDB satisfies it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type dispatchService struct {
	db              TxRunner
	rideRequestRepo repository.RideRequestRepository
	bookingRepo     repository.BookingRepository
	driverRepo      repository.DriverRepository
	passengerRepo   repository.PassengerRepository
	tariffRepo      repository.TariffRepository
	paymentRepo     repository.PaymentRepository
	pinRepo         repository.RidePinRepository
	ratingRepo      repository.RatingRepository
	dispatchCache   cache.DispatchCache
	fareService     FareService
	promoService    PromoService
	queueService    QueueService
	pinService      PinService
	producer        events.Producer
	rules           RideRuleConfig
}

func NewDispatchService(
	db TxRunner,
	rideRequestRepo repository.RideRequestRepository,
	bookingRepo repository.BookingRepository,
	driverRepo repository.DriverRepository,
	passengerRepo repository.PassengerRepository,
	tariffRepo repository.TariffRepository,
	paymentRepo repository.PaymentRepository,
	pinRepo repository.RidePinRepository,
	ratingRepo repository.RatingRepository,
	dispatchCache cache.DispatchCache,
	fareService FareService,
	promoService PromoService,
	queueService QueueService,
	pinService PinService,
	producer events.Producer,
	rules RideRuleConfig,
) DispatchService {
	return &dispatchService{
		db:              db,
		rideRequestRepo: rideRequestRepo,
		bookingRepo:     bookingRepo,
		driverRepo:      driverRepo,
		passengerRepo:   passengerRepo,
		tariffRepo:      tariffRepo,
		paymentRepo:     paymentRepo,
		pinRepo:         pinRepo,
		ratingRepo:      ratingRepo,
		dispatchCache:   dispatchCache,
		fareService:     fareService,
		promoService:    promoService,
		queueService:    queueService,
		pinService:      pinService,
		producer:        producer,
		rules:           rules,
	}
}

func (s *dispatchService) CreateRideRequest(ctx context.Context, input *models.CreateRideRequestInput) (*models.RideRequestResponse, error) {
	if input.DistanceKm <= 0 || input.DurationMin <= 0 {
		return nil, apperrors.BadRequest("distance_km and duration_min must be positive")
	}
	if !models.IsValidPaymentMode(input.PaymentMode) {
		return nil, apperrors.BadRequest("unsupported payment mode")
	}

	if _, err := s.passengerRepo.GetByID(ctx, input.PassengerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("passenger")
		}
		return nil, err
	}

	st, err := s.tariffRepo.GetServiceTypeByName(ctx, input.VehicleType)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.BadRequest("unknown vehicle type")
		}
		return nil, err
	}

	pickup := LocalityMeta{City: input.PickupCity, District: input.PickupDistrict, State: input.PickupState}
	drop := LocalityMeta{City: input.DropCity, District: input.DropDistrict, State: input.DropState}
	distance := input.DistanceKm
	decision := DeriveRideType(input.RideType, pickup, drop, &distance, s.rules)

	// A trip the rules classify as outstation must never book under a vehicle
	// class excluded from outstation service.
	if decision.RideType == models.RideTypeOutstation && !IsVehicleAllowed(s.rules, st.Name, decision.RideType) {
		return nil, apperrors.VehicleNotAllowed(st.Name)
	}

	fare, err := s.fareService.PriceTrip(ctx, st, decision.RideType, input.DistanceKm, input.DurationMin, input.RentalPackageID)
	if err != nil {
		if errors.Is(err, apperrors.ErrFareUnavailable) {
			return nil, apperrors.FareUnavailable()
		}
		return nil, err
	}

	if input.PromoCode != "" {
		applied, err := s.promoService.Apply(ctx, input.PassengerID, input.PromoCode, fare)
		if err != nil {
			return nil, err
		}
		fare = applied.DiscountedFare
	}

	scheduled := time.Now()
	if input.ScheduledAt != "" {
		parsed, err := time.Parse(time.RFC3339, input.ScheduledAt)
		if err != nil {
			return nil, apperrors.BadRequest("scheduled_at must be RFC3339")
		}
		scheduled = parsed
	}

	req := &models.RideRequest{
		ID:              utils.GenerateID(),
		PassengerID:     input.PassengerID,
		PickupLocation:  input.PickupLocation,
		DropoffLocation: input.DropoffLocation,
		PickupLat:       input.PickupLat,
		PickupLng:       input.PickupLng,
		DropLat:         input.DropLat,
		DropLng:         input.DropLng,
		RideType:        decision.RideType,
		DistanceKm:      input.DistanceKm,
		DurationMin:     input.DurationMin,
		Fare:            fare,
		ServiceTypeID:   st.ID,
		Status:          models.RideRequestStatusRequested,
		PaymentMode:     input.PaymentMode,
		ScheduledTime:   scheduled,
		CreatedAt:       time.Now(),
	}
	if err := s.rideRequestRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	observability.RideRequestsTotal.WithLabelValues(decision.RideType).Inc()

	head, err := s.queueService.BuildQueue(ctx, req.ID, st.Name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoDriversAvailable) {
			if updErr := s.rideRequestRepo.UpdateStatus(ctx, req.ID, models.RideRequestStatusExpired); updErr != nil {
				log.Printf("failed to expire ride request %s: %v", req.ID, updErr)
			}
			return nil, apperrors.NoDriversAvailable()
		}
		return nil, err
	}

	resp := &models.RideRequestResponse{
		ID:       req.ID,
		Status:   req.Status,
		RideType: req.RideType,
		Fare:     req.Fare,
		DriverID: &head,
	}
	if decision.Reason == RideReasonDistance {
		resp.Notice = "This trip exceeds the local distance limit and is booked as outstation."
	}
	return resp, nil
}

func (s *dispatchService) GetAssignment(ctx context.Context, passengerID, rideRequestID string) (*models.RideRequestResponse, error) {
	req, err := s.rideRequestRepo.GetByID(ctx, rideRequestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("ride request")
		}
		return nil, err
	}
	if req.PassengerID != passengerID {
		return nil, apperrors.NotFound("ride request")
	}

	resp := &models.RideRequestResponse{
		ID:        req.ID,
		Status:    req.Status,
		RideType:  req.RideType,
		Fare:      req.Fare,
		DriverID:  req.DriverID,
		BookingID: req.BookingID,
	}
	if req.DriverID != nil {
		if driver, err := s.driverRepo.GetByID(ctx, *req.DriverID); err == nil {
			resp.Driver = driver.ToResponse()
		}
	}
	return resp, nil
}

// PassengerBookings lists a passenger's recent bookings, newest first.
func (s *dispatchService) PassengerBookings(ctx context.Context, passengerID string) ([]*models.BookingResponse, error) {
	if _, err := s.passengerRepo.GetByID(ctx, passengerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("passenger")
		}
		return nil, err
	}

	bookings, err := s.bookingRepo.GetByPassenger(ctx, passengerID, 100)
	if err != nil {
		return nil, err
	}
	out := make([]*models.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ToResponse())
	}
	return out, nil
}

func (s *dispatchService) Reassign(ctx context.Context, passengerID, rideRequestID string) (*models.RideRequestResponse, error) {
	result, err := s.queueService.ReassignNext(ctx, passengerID, rideRequestID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, apperrors.NotFound("ride request")
		case errors.Is(err, apperrors.ErrQueueExpired):
			return nil, apperrors.QueueExhausted()
		}
		return nil, err
	}
	if result.AlreadyResolved {
		return nil, apperrors.AlreadyHandled("ride request already resolved")
	}
	if result.Exhausted {
		return nil, apperrors.QueueExhausted()
	}
	return &models.RideRequestResponse{
		ID:       rideRequestID,
		Status:   models.RideRequestStatusRequested,
		DriverID: &result.DriverID,
	}, nil
}

// AcceptRide converts a ride request into a booking. The request row is
// locked so exactly one driver wins a race.
func (s *dispatchService) AcceptRide(ctx context.Context, driverID, rideRequestID string) (*models.Booking, error) {
	now := time.Now()
	var booking *models.Booking

	err := s.db.RunInTx(ctx, func(tx *sqlx.Tx) error {
		req, err := s.rideRequestRepo.GetByIDForUpdate(ctx, tx, rideRequestID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NotFound("ride request")
			}
			return err
		}

		// Only the currently assigned driver may accept; anyone else sees
		// the request as missing.
		if req.DriverID == nil || *req.DriverID != driverID {
			return apperrors.NotFound("ride request")
		}
		if req.BookingID != nil {
			return apperrors.AlreadyHandled("ride already accepted")
		}
		if req.Status != models.RideRequestStatusRequested {
			return apperrors.AlreadyHandled("ride request already resolved")
		}

		booking = &models.Booking{
			ID:              utils.GenerateID(),
			PassengerID:     req.PassengerID,
			DriverID:        &driverID,
			PickupLocation:  req.PickupLocation,
			DropoffLocation: req.DropoffLocation,
			PickupLat:       req.PickupLat,
			PickupLng:       req.PickupLng,
			DropLat:         req.DropLat,
			DropLng:         req.DropLng,
			ScheduledTime:   req.ScheduledTime,
			Status:          models.BookingStatusConfirmed,
			Fare:            req.Fare,
			DistanceKm:      req.DistanceKm,
			DurationMin:     req.DurationMin,
			ServiceTypeID:   req.ServiceTypeID,
			PaymentMode:     req.PaymentMode,
			IsImmediate:     !req.ScheduledTime.After(now.Add(time.Minute)),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.bookingRepo.CreateTx(ctx, tx, booking); err != nil {
			return err
		}

		pin, err := s.pinService.Generate(booking.ID)
		if err != nil {
			return err
		}
		if err := s.pinRepo.CreateTx(ctx, tx, pin); err != nil {
			return err
		}

		return s.rideRequestRepo.LinkBooking(ctx, tx, rideRequestID, driverID, booking.ID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.dispatchCache.DeleteDriverQueue(ctx, rideRequestID); err != nil {
		log.Printf("failed to drop driver queue for %s: %v", rideRequestID, err)
	}
	if err := s.driverRepo.UpdateAvailability(ctx, driverID, false); err != nil {
		log.Printf("failed to mark driver %s busy: %v", driverID, err)
	}

	observability.BookingsTotal.WithLabelValues(booking.Status).Inc()
	events.Publish(s.producer, events.BookingEvent{
		BookingID:     booking.ID,
		RideRequestID: rideRequestID,
		Status:        booking.Status,
		DriverID:      driverID,
		PassengerID:   booking.PassengerID,
		OccurredAt:    now,
	})
	return booking, nil
}

func (s *dispatchService) RejectRide(ctx context.Context, driverID, rideRequestID string) error {
	req, err := s.rideRequestRepo.GetByID(ctx, rideRequestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("ride request")
		}
		return err
	}
	if req.DriverID == nil || *req.DriverID != driverID {
		return apperrors.NotFound("ride request")
	}
	if req.IsResolved() {
		return apperrors.AlreadyHandled("ride request already resolved")
	}

	// Rejection is terminal for this request. The queue is left alone; any
	// advance to the next candidate happens from the passenger side.
	if err := s.rideRequestRepo.UpdateStatus(ctx, rideRequestID, models.RideRequestStatusRejected); err != nil {
		return err
	}
	return nil
}

func (s *dispatchService) OpenRequestsForDriver(ctx context.Context, driverID string) ([]*DriverRequestView, error) {
	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("driver")
		}
		return nil, err
	}

	reqs, err := s.rideRequestRepo.GetAssignedRequested(ctx, driverID)
	if err != nil {
		return nil, err
	}

	views := make([]*DriverRequestView, 0, len(reqs))
	for _, req := range reqs {
		view := &DriverRequestView{
			RideRequestID:   req.ID,
			PassengerRating: models.DefaultPassengerRating,
			PickupLocation:  req.PickupLocation,
			DropoffLocation: req.DropoffLocation,
			DistanceKm:      req.DistanceKm,
			Fare:            req.Fare,
			RideType:        req.RideType,
			PaymentMode:     req.PaymentMode,
		}
		if passenger, err := s.passengerRepo.GetByID(ctx, req.PassengerID); err == nil {
			view.PassengerName = passenger.FullName()
		}
		if avg, count, err := s.ratingRepo.AverageForPassenger(ctx, req.PassengerID); err == nil && count > 0 {
			view.PassengerRating = avg
		}
		views = append(views, view)
	}
	return views, nil
}

// driverBooking loads the booking and checks the caller is its driver.
func (s *dispatchService) driverBooking(ctx context.Context, driverID, bookingID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("booking")
		}
		return nil, err
	}
	if booking.DriverID == nil || *booking.DriverID != driverID {
		return nil, apperrors.NotFound("booking")
	}
	return booking, nil
}

func (s *dispatchService) MarkArrived(ctx context.Context, driverID, bookingID string) error {
	booking, err := s.driverBooking(ctx, driverID, bookingID)
	if err != nil {
		return err
	}
	if !booking.CanTransitionTo(models.BookingStatusArrived) {
		return apperrors.InvalidTransition(booking.Status, models.BookingStatusArrived)
	}
	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, models.BookingStatusArrived); err != nil {
		return err
	}
	if err := s.dispatchCache.SetArrived(ctx, bookingID); err != nil {
		log.Printf("failed to cache arrival flag for %s: %v", bookingID, err)
	}

	observability.BookingsTotal.WithLabelValues(models.BookingStatusArrived).Inc()
	events.Publish(s.producer, events.BookingEvent{
		BookingID:   bookingID,
		Status:      models.BookingStatusArrived,
		DriverID:    driverID,
		PassengerID: booking.PassengerID,
		OccurredAt:  time.Now(),
	})
	return nil
}

// VerifyPin checks a driver-entered code. Ownership is confirmed before any
// attempt is counted.
func (s *dispatchService) VerifyPin(ctx context.Context, driverID, bookingID, code string) (*models.PinVerifyResult, error) {
	if _, err := s.driverBooking(ctx, driverID, bookingID); err != nil {
		return nil, err
	}
	result, err := s.pinService.Verify(ctx, bookingID, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("ride pin")
		}
		return nil, err
	}
	return result, nil
}

func (s *dispatchService) StartRide(ctx context.Context, driverID, bookingID string) error {
	booking, err := s.driverBooking(ctx, driverID, bookingID)
	if err != nil {
		return err
	}
	if !booking.CanTransitionTo(models.BookingStatusOngoing) {
		return apperrors.InvalidTransition(booking.Status, models.BookingStatusOngoing)
	}

	verified, err := s.pinService.IsVerified(ctx, bookingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Bookings predating pins start without verification.
			log.Printf("booking %s has no ride pin, starting without verification", bookingID)
		} else {
			return err
		}
	} else if !verified {
		return apperrors.PinNotVerified()
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, models.BookingStatusOngoing); err != nil {
		return err
	}
	if err := s.pinService.Deactivate(ctx, bookingID); err != nil {
		log.Printf("failed to deactivate pin for %s: %v", bookingID, err)
	}

	observability.BookingsTotal.WithLabelValues(models.BookingStatusOngoing).Inc()
	events.Publish(s.producer, events.BookingEvent{
		BookingID:   bookingID,
		Status:      models.BookingStatusOngoing,
		DriverID:    driverID,
		PassengerID: booking.PassengerID,
		OccurredAt:  time.Now(),
	})
	return nil
}

func (s *dispatchService) EndRide(ctx context.Context, driverID, bookingID string) (*models.Booking, error) {
	booking, err := s.driverBooking(ctx, driverID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusOngoing {
		return nil, apperrors.InvalidTransition(booking.Status, models.BookingStatusCompleted)
	}

	now := time.Now()
	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, models.BookingStatusCompleted); err != nil {
		return nil, err
	}

	// Settlement is optimistic: the ride completes regardless of collection.
	payment := &models.Payment{
		ID:          utils.GenerateID(),
		PassengerID: booking.PassengerID,
		BookingID:   bookingID,
		PaymentMode: booking.PaymentMode,
		Amount:      booking.Fare,
		Status:      models.PaymentStatusCompleted,
		PaidAt:      &now,
		CreatedAt:   now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		log.Printf("failed to record payment for %s: %v", bookingID, err)
	}

	// Usually a no-op; ride start already retires the pin.
	if err := s.pinService.Deactivate(ctx, bookingID); err != nil {
		log.Printf("failed to deactivate pin for %s: %v", bookingID, err)
	}

	if err := s.driverRepo.UpdateAvailability(ctx, driverID, true); err != nil {
		log.Printf("failed to free driver %s: %v", driverID, err)
	}

	booking.Status = models.BookingStatusCompleted
	booking.UpdatedAt = now

	observability.BookingsTotal.WithLabelValues(models.BookingStatusCompleted).Inc()
	events.Publish(s.producer, events.BookingEvent{
		BookingID:   bookingID,
		Status:      models.BookingStatusCompleted,
		DriverID:    driverID,
		PassengerID: booking.PassengerID,
		OccurredAt:  now,
	})
	return booking, nil
}

func (s *dispatchService) CancelBooking(ctx context.Context, bookingID string, req *models.CancelBookingRequest) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("booking")
		}
		return err
	}
	if booking.PassengerID != req.PassengerID {
		return apperrors.NotFound("booking")
	}
	if booking.IsTerminal() {
		return apperrors.Conflict("booking is already " + booking.Status)
	}

	stage := booking.Status
	if err := s.bookingRepo.Cancel(ctx, bookingID, models.BookingStatusCancelledByPassenger,
		models.CancelledByPassenger, req.Reason, stage); err != nil {
		return err
	}
	if err := s.pinService.Deactivate(ctx, bookingID); err != nil {
		log.Printf("failed to deactivate pin for %s: %v", bookingID, err)
	}
	if booking.DriverID != nil {
		if err := s.driverRepo.UpdateAvailability(ctx, *booking.DriverID, true); err != nil {
			log.Printf("failed to free driver %s: %v", *booking.DriverID, err)
		}
	}

	observability.BookingsTotal.WithLabelValues(models.BookingStatusCancelledByPassenger).Inc()
	events.Publish(s.producer, events.BookingEvent{
		BookingID:   bookingID,
		Status:      models.BookingStatusCancelledByPassenger,
		PassengerID: booking.PassengerID,
		OccurredAt:  time.Now(),
	})
	return nil
}

func (s *dispatchService) BookingStatus(ctx context.Context, bookingID string) (*BookingStatusView, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("booking")
		}
		return nil, err
	}

	arrived, err := s.dispatchCache.GetArrived(ctx, bookingID)
	if err != nil {
		log.Printf("failed to read arrival flag for %s: %v", bookingID, err)
	}
	arrived = arrived || booking.Status == models.BookingStatusArrived

	view := &BookingStatusView{
		BookingID:     booking.ID,
		Status:        booking.Status,
		DriverArrived: arrived,
	}
	if booking.DriverID != nil {
		if driver, err := s.driverRepo.GetByID(ctx, *booking.DriverID); err == nil {
			view.Driver = driver.ToResponse()
		}
	}
	return view, nil
}
