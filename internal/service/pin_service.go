package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/saifpatel9/dropme/internal/models"
	"github.com/saifpatel9/dropme/internal/observability"
	"github.com/saifpatel9/dropme/internal/repository"
	"github.com/saifpatel9/dropme/pkg/utils"

	apperrors "github.com/saifpatel9/dropme/internal/errors"
)

const (
	maxPinAttempts = 3
	pinLockout     = 5 * time.Minute
)

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// PinService manages the 4-digit pin the passenger reads to the driver
// before the ride starts.
type PinService interface {
	// Generate produces a fresh pin row for a booking, ready for insertion.
	Generate(bookingID string) (*models.RidePin, error)
	// PassengerPin returns the displayable pin for the booking owner.
	PassengerPin(ctx context.Context, passengerID, bookingID string) (string, error)
	// Verify checks a driver-entered code against the booking's pin.
	Verify(ctx context.Context, bookingID, code string) (*models.PinVerifyResult, error)
	// Deactivate retires the pin. Safe to call on bookings without one.
	Deactivate(ctx context.Context, bookingID string) error
	// IsVerified reports whether the booking's pin was verified. Bookings
	// without a pin row report (false, ErrNotFound).
	IsVerified(ctx context.Context, bookingID string) (bool, error)
}

type pinService struct {
	pinRepo     repository.RidePinRepository
	bookingRepo repository.BookingRepository
}

func NewPinService(pinRepo repository.RidePinRepository, bookingRepo repository.BookingRepository) PinService {
	return &pinService{pinRepo: pinRepo, bookingRepo: bookingRepo}
}

// randomPin draws a uniform 4-digit code, zero padded.
func randomPin() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

func (s *pinService) Generate(bookingID string) (*models.RidePin, error) {
	plain, err := randomPin()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &models.RidePin{
		ID:        utils.GenerateID(),
		BookingID: bookingID,
		PinHash:   string(hash),
		PinPlain:  plain,
		Attempts:  0,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *pinService) PassengerPin(ctx context.Context, passengerID, bookingID string) (string, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if booking.PassengerID != passengerID {
		return "", apperrors.ErrNotFound
	}
	if booking.IsTerminal() {
		return "", apperrors.Conflict("booking is no longer active")
	}

	pin, err := s.pinRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Bookings created before pins existed get one lazily.
			fresh, genErr := s.Generate(bookingID)
			if genErr != nil {
				return "", genErr
			}
			if createErr := s.pinRepo.Create(ctx, fresh); createErr != nil {
				return "", createErr
			}
			return fresh.PinPlain, nil
		}
		return "", err
	}
	return pin.PinPlain, nil
}

func (s *pinService) Verify(ctx context.Context, bookingID, code string) (*models.PinVerifyResult, error) {
	pin, err := s.pinRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if pin.IsLocked(now) {
		observability.PinVerificationsTotal.WithLabelValues("locked").Inc()
		minutes := int(time.Until(*pin.LockedUntil).Minutes()) + 1
		return &models.PinVerifyResult{LockedUntil: pin.LockedUntil}, apperrors.PinLocked(minutes)
	}

	// A malformed code is rejected without consuming an attempt.
	if !pinPattern.MatchString(code) {
		observability.PinVerificationsTotal.WithLabelValues("malformed").Inc()
		return nil, apperrors.BadRequest("pin must be exactly 4 digits")
	}

	if bcrypt.CompareHashAndPassword([]byte(pin.PinHash), []byte(code)) == nil {
		pin.IsVerified = true
		pin.Attempts = 0
		pin.LockedUntil = nil
		if err := s.pinRepo.Update(ctx, pin); err != nil {
			return nil, err
		}
		observability.PinVerificationsTotal.WithLabelValues("success").Inc()
		return &models.PinVerifyResult{Verified: true}, nil
	}

	pin.Attempts++
	if pin.Attempts >= maxPinAttempts {
		until := now.Add(pinLockout)
		pin.LockedUntil = &until
		pin.Attempts = 0
		if err := s.pinRepo.Update(ctx, pin); err != nil {
			return nil, err
		}
		observability.PinVerificationsTotal.WithLabelValues("locked_out").Inc()
		return &models.PinVerifyResult{LockedUntil: &until}, apperrors.PinLocked(int(pinLockout.Minutes()))
	}

	if err := s.pinRepo.Update(ctx, pin); err != nil {
		return nil, err
	}
	observability.PinVerificationsTotal.WithLabelValues("wrong").Inc()
	result := &models.PinVerifyResult{AttemptsLeft: maxPinAttempts - pin.Attempts}
	return result, apperrors.BadRequest(fmt.Sprintf("incorrect pin, %d attempt(s) left", result.AttemptsLeft))
}

func (s *pinService) Deactivate(ctx context.Context, bookingID string) error {
	return s.pinRepo.Deactivate(ctx, bookingID)
}

func (s *pinService) IsVerified(ctx context.Context, bookingID string) (bool, error) {
	pin, err := s.pinRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	return pin.IsVerified, nil
}
