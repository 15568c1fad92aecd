package service

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/saifpatel9/dropme/internal/events"
	"github.com/saifpatel9/dropme/internal/models"

	apperrors "github.com/saifpatel9/dropme/internal/errors"
)

// In-memory doubles for the repository and cache interfaces. They keep just
// enough behavior for the service tests.

// fakeTxRunner runs the function directly; the fake repositories ignore the
// tx argument.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

type fakeDriverRepo struct {
	mu      sync.Mutex
	drivers map[string]*models.Driver
}

func newFakeDriverRepo(drivers ...*models.Driver) *fakeDriverRepo {
	repo := &fakeDriverRepo{drivers: make(map[string]*models.Driver)}
	for _, d := range drivers {
		repo.drivers[d.ID] = d
	}
	return repo
}

func (r *fakeDriverRepo) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok || d.IsDeleted {
		return nil, apperrors.ErrNotFound
	}
	copy := *d
	return &copy, nil
}

func (r *fakeDriverRepo) GetEligibleByVehicleType(ctx context.Context, vehicleType string) ([]*models.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Driver
	for _, d := range r.drivers {
		if d.VehicleType == vehicleType && d.Eligible() {
			copy := *d
			out = append(out, &copy)
		}
	}
	// Rating-desc ordering like the SQL query.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Rating > out[i].Rating {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *fakeDriverRepo) UpdateAvailability(ctx context.Context, id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	d.Availability = available
	return nil
}

func (r *fakeDriverRepo) Create(ctx context.Context, driver *models.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[driver.ID] = driver
	return nil
}

type fakeRideRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*models.RideRequest
}

func newFakeRideRequestRepo(reqs ...*models.RideRequest) *fakeRideRequestRepo {
	repo := &fakeRideRequestRepo{requests: make(map[string]*models.RideRequest)}
	for _, req := range reqs {
		repo.requests[req.ID] = req
	}
	return repo
}

func (r *fakeRideRequestRepo) Create(ctx context.Context, req *models.RideRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.ID] = req
	return nil
}

func (r *fakeRideRequestRepo) GetByID(ctx context.Context, id string) (*models.RideRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copy := *req
	return &copy, nil
}

func (r *fakeRideRequestRepo) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.RideRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeRideRequestRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	req.Status = status
	return nil
}

func (r *fakeRideRequestRepo) AssignDriver(ctx context.Context, id string, driverID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	req.DriverID = driverID
	return nil
}

func (r *fakeRideRequestRepo) LinkBooking(ctx context.Context, tx *sqlx.Tx, id, driverID, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	req.DriverID = &driverID
	req.BookingID = &bookingID
	req.Status = models.RideRequestStatusAccepted
	return nil
}

func (r *fakeRideRequestRepo) GetAssignedRequested(ctx context.Context, driverID string) ([]*models.RideRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.RideRequest
	for _, req := range r.requests {
		if req.DriverID != nil && *req.DriverID == driverID &&
			req.Status == models.RideRequestStatusRequested && req.BookingID == nil {
			copy := *req
			out = append(out, &copy)
		}
	}
	return out, nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newFakeBookingRepo(bookings ...*models.Booking) *fakeBookingRepo {
	repo := &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
	for _, b := range bookings {
		repo.bookings[b.ID] = b
	}
	return repo
}

func (r *fakeBookingRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[booking.ID] = booking
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copy := *b
	return &copy, nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	return nil
}

func (r *fakeBookingRepo) Cancel(ctx context.Context, id, status, cancelledBy, reason, stage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	now := time.Now()
	b.Status = status
	b.DriverID = nil
	b.CancelledBy = &cancelledBy
	b.CancellationReason = &reason
	b.CancellationStage = &stage
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}

func (r *fakeBookingRepo) GetCompletedByDriver(ctx context.Context, driverID string) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.DriverID != nil && *b.DriverID == driverID && b.Status == models.BookingStatusCompleted {
			copy := *b
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) GetByDriver(ctx context.Context, driverID string, limit int) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.DriverID != nil && *b.DriverID == driverID {
			copy := *b
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) GetActiveByPassenger(ctx context.Context, passengerID string) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.PassengerID == passengerID && !b.IsTerminal() {
			copy := *b
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) GetByPassenger(ctx context.Context, passengerID string, limit int) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.bookings {
		if b.PassengerID == passengerID {
			copy := *b
			out = append(out, &copy)
		}
	}
	return out, nil
}

type fakeRidePinRepo struct {
	mu   sync.Mutex
	pins map[string]*models.RidePin // keyed by booking ID
}

func newFakeRidePinRepo(pins ...*models.RidePin) *fakeRidePinRepo {
	repo := &fakeRidePinRepo{pins: make(map[string]*models.RidePin)}
	for _, p := range pins {
		repo.pins[p.BookingID] = p
	}
	return repo
}

func (r *fakeRidePinRepo) Create(ctx context.Context, pin *models.RidePin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pins[pin.BookingID] = pin
	return nil
}

func (r *fakeRidePinRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, pin *models.RidePin) error {
	return r.Create(ctx, pin)
}

func (r *fakeRidePinRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.RidePin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pins[bookingID]
	if !ok || !p.IsActive {
		return nil, apperrors.ErrNotFound
	}
	copy := *p
	return &copy, nil
}

func (r *fakeRidePinRepo) Update(ctx context.Context, pin *models.RidePin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pins[pin.BookingID] = pin
	return nil
}

func (r *fakeRidePinRepo) Deactivate(ctx context.Context, bookingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pins[bookingID]; ok {
		p.IsActive = false
		p.PinPlain = ""
	}
	return nil
}

type fakeTariffRepo struct {
	serviceTypes   map[string]*models.ServiceType
	slabs          []*models.FareSlab
	rentalPackages map[string]*models.RentalPackage
	rentalServices []*models.RentalService
}

func newFakeTariffRepo() *fakeTariffRepo {
	return &fakeTariffRepo{
		serviceTypes:   make(map[string]*models.ServiceType),
		rentalPackages: make(map[string]*models.RentalPackage),
	}
}

func (r *fakeTariffRepo) GetServiceTypeByID(ctx context.Context, id string) (*models.ServiceType, error) {
	st, ok := r.serviceTypes[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return st, nil
}

func (r *fakeTariffRepo) GetServiceTypeByName(ctx context.Context, name string) (*models.ServiceType, error) {
	for _, st := range r.serviceTypes {
		if equalsFold(st.Name, name) && st.Status == models.ServiceStatusActive {
			return st, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func equalsFold(a, b string) bool {
	return normalize(a) == normalize(b)
}

func (r *fakeTariffRepo) ListActiveServiceTypes(ctx context.Context) ([]*models.ServiceType, error) {
	var out []*models.ServiceType
	for _, st := range r.serviceTypes {
		if st.Status == models.ServiceStatusActive {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r *fakeTariffRepo) GetSlab(ctx context.Context, serviceTypeID string, distanceKm float64) (*models.FareSlab, error) {
	for _, slab := range r.slabs {
		if slab.ServiceTypeID == serviceTypeID && slab.Covers(distanceKm) {
			return slab, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeTariffRepo) GetRentalPackage(ctx context.Context, id string) (*models.RentalPackage, error) {
	pkg, ok := r.rentalPackages[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return pkg, nil
}

func (r *fakeTariffRepo) GetRentalService(ctx context.Context, serviceTypeID, packageID string) (*models.RentalService, error) {
	for _, rs := range r.rentalServices {
		if rs.ServiceTypeID == serviceTypeID && rs.PackageID == packageID {
			return rs, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeTariffRepo) ListRentalServicesByPackage(ctx context.Context, packageID string) ([]*models.RentalService, error) {
	var out []*models.RentalService
	for _, rs := range r.rentalServices {
		if rs.PackageID == packageID {
			out = append(out, rs)
		}
	}
	return out, nil
}

func (r *fakeTariffRepo) CreateServiceType(ctx context.Context, st *models.ServiceType) error {
	r.serviceTypes[st.ID] = st
	return nil
}

func (r *fakeTariffRepo) CreateSlab(ctx context.Context, slab *models.FareSlab) error {
	r.slabs = append(r.slabs, slab)
	return nil
}

func (r *fakeTariffRepo) CreateRentalPackage(ctx context.Context, pkg *models.RentalPackage) error {
	r.rentalPackages[pkg.ID] = pkg
	return nil
}

func (r *fakeTariffRepo) CreateRentalService(ctx context.Context, rs *models.RentalService) error {
	r.rentalServices = append(r.rentalServices, rs)
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []*models.Payment
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, payment)
	return nil
}

func (r *fakePaymentRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.BookingID == bookingID {
			return p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakePaymentRepo) MarkCompleted(ctx context.Context, bookingID string, paidAt time.Time) error {
	return nil
}

type promoUsage struct {
	passengerID string
	discount    float64
}

type fakePromoRepo struct {
	mu     sync.Mutex
	promos map[string]*models.PromoCode // keyed by lowercase code
	usages map[string][]promoUsage      // keyed by promo ID
}

func newFakePromoRepo(promos ...*models.PromoCode) *fakePromoRepo {
	repo := &fakePromoRepo{
		promos: make(map[string]*models.PromoCode),
		usages: make(map[string][]promoUsage),
	}
	for _, p := range promos {
		repo.promos[normalize(p.Code)] = p
	}
	return repo
}

func (r *fakePromoRepo) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.promos[normalize(code)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (r *fakePromoRepo) ApplyUsage(ctx context.Context, promo *models.PromoCode, passengerID string, discount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	usages := r.usages[promo.ID]
	if promo.MaxUsage != nil && len(usages) >= *promo.MaxUsage {
		return apperrors.ErrConflict
	}
	if promo.MaxUsagePerUser != nil {
		byUser := 0
		for _, u := range usages {
			if u.passengerID == passengerID {
				byUser++
			}
		}
		if byUser >= *promo.MaxUsagePerUser {
			return apperrors.ErrConflict
		}
	}
	r.usages[promo.ID] = append(usages, promoUsage{passengerID: passengerID, discount: discount})
	return nil
}

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings []*models.Rating
}

func (r *fakeRatingRepo) Create(ctx context.Context, rating *models.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ratings = append(r.ratings, rating)
	return nil
}

func (r *fakeRatingRepo) GetByBookingAndSide(ctx context.Context, bookingID, givenBy string) (*models.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rt := range r.ratings {
		if rt.BookingID == bookingID && rt.GivenBy == givenBy {
			return rt, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeRatingRepo) AverageForDriver(ctx context.Context, driverID string) (float64, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	count := 0
	for _, rt := range r.ratings {
		if rt.DriverID == driverID && rt.GivenBy == models.RatingByPassenger {
			sum += float64(rt.Score)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

func (r *fakeRatingRepo) AverageForPassenger(ctx context.Context, passengerID string) (float64, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	count := 0
	for _, rt := range r.ratings {
		if rt.PassengerID == passengerID && rt.GivenBy == models.RatingByDriver {
			sum += float64(rt.Score)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

func (r *fakeRatingRepo) UpdateDriverRating(ctx context.Context, driverID string, rating float64) error {
	return nil
}

type fakePassengerRepo struct {
	passengers map[string]*models.Passenger
}

func newFakePassengerRepo(passengers ...*models.Passenger) *fakePassengerRepo {
	repo := &fakePassengerRepo{passengers: make(map[string]*models.Passenger)}
	for _, p := range passengers {
		repo.passengers[p.ID] = p
	}
	return repo
}

func (r *fakePassengerRepo) GetByID(ctx context.Context, id string) (*models.Passenger, error) {
	p, ok := r.passengers[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (r *fakePassengerRepo) Create(ctx context.Context, passenger *models.Passenger) error {
	r.passengers[passenger.ID] = passenger
	return nil
}

type fakeDispatchCache struct {
	mu      sync.Mutex
	queues  map[string][]string
	arrived map[string]bool
}

func newFakeDispatchCache() *fakeDispatchCache {
	return &fakeDispatchCache{
		queues:  make(map[string][]string),
		arrived: make(map[string]bool),
	}
}

func (c *fakeDispatchCache) SetDriverQueue(ctx context.Context, rideRequestID string, driverIDs []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queues[rideRequestID] = append([]string(nil), driverIDs...)
	return nil
}

func (c *fakeDispatchCache) GetDriverQueue(ctx context.Context, rideRequestID string) ([]string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.queues[rideRequestID]
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), q...), true, nil
}

func (c *fakeDispatchCache) DeleteDriverQueue(ctx context.Context, rideRequestID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.queues, rideRequestID)
	return nil
}

func (c *fakeDispatchCache) SetArrived(ctx context.Context, bookingID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.arrived[bookingID] = true
	return nil
}

func (c *fakeDispatchCache) GetArrived(ctx context.Context, bookingID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.arrived[bookingID], nil
}

type capturingProducer struct {
	mu     sync.Mutex
	events []events.BookingEvent
}

func (p *capturingProducer) PublishBookingEvent(ctx context.Context, event events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingProducer) Close() error { return nil }
