package service

import (
	"context"
	"errors"
	"log"
	"math/rand"

	"github.com/saifpatel9/dropme/internal/cache"
	"github.com/saifpatel9/dropme/internal/models"
	"github.com/saifpatel9/dropme/internal/observability"
	"github.com/saifpatel9/dropme/internal/repository"

	apperrors "github.com/saifpatel9/dropme/internal/errors"
)

// QueueService owns the per-request driver candidate queue. Candidates are
// offered one at a time; the passenger can skip to the next with a
// reassignment.
type QueueService interface {
	// BuildQueue snapshots eligible drivers, caches the ordering, and
	// soft-assigns the head to the request.
	BuildQueue(ctx context.Context, rideRequestID, vehicleType string) (headDriverID string, err error)
	// ReassignNext pops the current head and assigns the next still-eligible
	// candidate.
	ReassignNext(ctx context.Context, passengerID, rideRequestID string) (*ReassignResult, error)
}

type ReassignResult struct {
	AlreadyResolved bool
	Exhausted       bool
	DriverID        string
}

type queueService struct {
	driverRepo      repository.DriverRepository
	rideRequestRepo repository.RideRequestRepository
	dispatchCache   cache.DispatchCache
}

func NewQueueService(
	driverRepo repository.DriverRepository,
	rideRequestRepo repository.RideRequestRepository,
	dispatchCache cache.DispatchCache,
) QueueService {
	return &queueService{
		driverRepo:      driverRepo,
		rideRequestRepo: rideRequestRepo,
		dispatchCache:   dispatchCache,
	}
}

// orderCandidates sorts drivers by rating descending and shuffles within each
// rating group so equally rated drivers get offers in fair rotation.
func orderCandidates(drivers []*models.Driver) []string {
	groups := make(map[float64][]*models.Driver)
	var ratings []float64
	for _, d := range drivers {
		if _, seen := groups[d.Rating]; !seen {
			ratings = append(ratings, d.Rating)
		}
		groups[d.Rating] = append(groups[d.Rating], d)
	}

	// Input already arrives rating-desc from the repository; preserve that
	// order across groups.
	var ordered []string
	for _, rating := range ratings {
		group := groups[rating]
		rand.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		for _, d := range group {
			ordered = append(ordered, d.ID)
		}
	}
	return ordered
}

func (s *queueService) BuildQueue(ctx context.Context, rideRequestID, vehicleType string) (string, error) {
	drivers, err := s.driverRepo.GetEligibleByVehicleType(ctx, vehicleType)
	if err != nil {
		return "", err
	}
	if len(drivers) == 0 {
		return "", apperrors.ErrNoDriversAvailable
	}

	queue := orderCandidates(drivers)
	if err := s.dispatchCache.SetDriverQueue(ctx, rideRequestID, queue); err != nil {
		return "", err
	}

	head := queue[0]
	if err := s.rideRequestRepo.AssignDriver(ctx, rideRequestID, &head); err != nil {
		return "", err
	}
	return head, nil
}

func (s *queueService) ReassignNext(ctx context.Context, passengerID, rideRequestID string) (*ReassignResult, error) {
	req, err := s.rideRequestRepo.GetByID(ctx, rideRequestID)
	if err != nil {
		return nil, err
	}
	// Ownership mismatch reads the same as a missing request.
	if req.PassengerID != passengerID {
		return nil, apperrors.ErrNotFound
	}
	if req.IsResolved() {
		return &ReassignResult{AlreadyResolved: true}, nil
	}

	observability.ReassignmentsTotal.Inc()

	queue, found, err := s.dispatchCache.GetDriverQueue(ctx, rideRequestID)
	if err != nil {
		return nil, err
	}
	if !found {
		// Queue TTL elapsed; the request is too stale to keep cycling.
		if err := s.expire(ctx, rideRequestID); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrQueueExpired
	}

	// Drop the current head only if it still matches the assignment, so a
	// double-tapped reassign does not skip a driver.
	if len(queue) > 0 && req.DriverID != nil && queue[0] == *req.DriverID {
		queue = queue[1:]
	}

	// Scan forward past drivers that went offline since the snapshot.
	for len(queue) > 0 {
		candidate := queue[0]
		driver, err := s.driverRepo.GetByID(ctx, candidate)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				queue = queue[1:]
				continue
			}
			return nil, err
		}
		if !driver.Eligible() {
			queue = queue[1:]
			continue
		}

		if err := s.dispatchCache.SetDriverQueue(ctx, rideRequestID, queue); err != nil {
			return nil, err
		}
		if err := s.rideRequestRepo.AssignDriver(ctx, rideRequestID, &candidate); err != nil {
			return nil, err
		}
		return &ReassignResult{DriverID: candidate}, nil
	}

	observability.QueueExhaustedTotal.Inc()
	if err := s.expire(ctx, rideRequestID); err != nil {
		return nil, err
	}
	return &ReassignResult{Exhausted: true}, nil
}

func (s *queueService) expire(ctx context.Context, rideRequestID string) error {
	if err := s.dispatchCache.DeleteDriverQueue(ctx, rideRequestID); err != nil {
		log.Printf("failed to delete driver queue for %s: %v", rideRequestID, err)
	}
	if err := s.rideRequestRepo.AssignDriver(ctx, rideRequestID, nil); err != nil {
		return err
	}
	return s.rideRequestRepo.UpdateStatus(ctx, rideRequestID, models.RideRequestStatusExpired)
}
