package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/saifpatel9/dropme/internal/models"
	"github.com/saifpatel9/dropme/internal/service"
	"github.com/saifpatel9/dropme/pkg/utils"
)

type PassengerHandler struct {
	dispatchService service.DispatchService
	fareService     service.FareService
	promoService    service.PromoService
	pinService      service.PinService
	ratingService   service.RatingService
	validate        *validator.Validate
}

func NewPassengerHandler(
	dispatchService service.DispatchService,
	fareService service.FareService,
	promoService service.PromoService,
	pinService service.PinService,
	ratingService service.RatingService,
) *PassengerHandler {
	return &PassengerHandler{
		dispatchService: dispatchService,
		fareService:     fareService,
		promoService:    promoService,
		pinService:      pinService,
		ratingService:   ratingService,
		validate:        validator.New(),
	}
}

func (h *PassengerHandler) RegisterRoutes(r chi.Router) {
	r.Post("/quotes", h.GetQuotes)
	r.Post("/ride-requests", h.CreateRideRequest)
	r.Get("/ride-requests/{id}/assignment", h.GetAssignment)
	r.Post("/ride-requests/{id}/reassign", h.Reassign)
	r.Get("/bookings/{id}/status", h.BookingStatus)
	r.Get("/bookings/{id}/pin", h.GetPin)
	r.Post("/bookings/{id}/cancel", h.CancelBooking)
	r.Post("/promos/apply", h.ApplyPromo)
	r.Post("/ratings", h.SubmitRating)
	r.Get("/passengers/{id}/bookings", h.PassengerBookings)
}

// GetQuotes returns per-vehicle-class fare estimates and the derived ride type.
func (h *PassengerHandler) GetQuotes(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	resp, err := h.fareService.Quote(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, resp)
}

func (h *PassengerHandler) CreateRideRequest(w http.ResponseWriter, r *http.Request) {
	var input models.CreateRideRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(&input); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	resp, err := h.dispatchService.CreateRideRequest(r.Context(), &input)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Created(w, resp)
}

func (h *PassengerHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	rideRequestID := chi.URLParam(r, "id")
	passengerID := r.URL.Query().Get("passenger_id")
	if passengerID == "" {
		utils.BadRequest(w, "passenger_id is required")
		return
	}

	resp, err := h.dispatchService.GetAssignment(r.Context(), passengerID, rideRequestID)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, resp)
}

func (h *PassengerHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	rideRequestID := chi.URLParam(r, "id")

	var body struct {
		PassengerID string `json:"passenger_id" validate:"required,uuid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	resp, err := h.dispatchService.Reassign(r.Context(), body.PassengerID, rideRequestID)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, resp)
}

func (h *PassengerHandler) BookingStatus(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")

	view, err := h.dispatchService.BookingStatus(r.Context(), bookingID)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, view)
}

// GetPin returns the displayable ride pin for the booking owner.
func (h *PassengerHandler) GetPin(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")
	passengerID := r.URL.Query().Get("passenger_id")
	if passengerID == "" {
		utils.BadRequest(w, "passenger_id is required")
		return
	}

	pin, err := h.pinService.PassengerPin(r.Context(), passengerID, bookingID)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]string{"pin": pin})
}

func (h *PassengerHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")

	var req models.CancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	if err := h.dispatchService.CancelBooking(r.Context(), bookingID, &req); err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]string{"status": models.BookingStatusCancelledByPassenger})
}

func (h *PassengerHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req models.ApplyPromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	resp, err := h.promoService.Apply(r.Context(), req.PassengerID, req.PromoCode, req.Fare)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, resp)
}

func (h *PassengerHandler) PassengerBookings(w http.ResponseWriter, r *http.Request) {
	passengerID := chi.URLParam(r, "id")

	bookings, err := h.dispatchService.PassengerBookings(r.Context(), passengerID)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, bookings)
}

func (h *PassengerHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	rating, err := h.ratingService.Submit(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Created(w, rating)
}
