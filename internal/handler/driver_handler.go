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

type DriverHandler struct {
	dispatchService service.DispatchService
	driverService   service.DriverService
	earningsService service.EarningsService
	validate        *validator.Validate
}

func NewDriverHandler(
	dispatchService service.DispatchService,
	driverService service.DriverService,
	earningsService service.EarningsService,
) *DriverHandler {
	return &DriverHandler{
		dispatchService: dispatchService,
		driverService:   driverService,
		earningsService: earningsService,
		validate:        validator.New(),
	}
}

func (h *DriverHandler) RegisterRoutes(r chi.Router) {
	r.Route("/drivers/{id}", func(r chi.Router) {
		r.Get("/requests", h.OpenRequests)
		r.Post("/accept", h.AcceptRide)
		r.Post("/reject", h.RejectRide)
		r.Post("/availability", h.SetAvailability)
		r.Get("/earnings", h.Earnings)
		r.Get("/rides", h.RideHistory)

		r.Route("/bookings/{bookingID}", func(r chi.Router) {
			r.Post("/arrived", h.MarkArrived)
			r.Post("/verify-pin", h.VerifyPin)
			r.Post("/start", h.StartRide)
			r.Post("/end", h.EndRide)
		})
	})
}

// OpenRequests lists ride requests currently offered to this driver.
func (h *DriverHandler) OpenRequests(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")

	views, err := h.dispatchService.OpenRequestsForDriver(r.Context(), driverID)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, views)
}

func (h *DriverHandler) AcceptRide(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")

	var body struct {
		RideRequestID string `json:"ride_request_id" validate:"required,uuid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	booking, err := h.dispatchService.AcceptRide(r.Context(), driverID, body.RideRequestID)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Created(w, booking.ToResponse())
}

func (h *DriverHandler) RejectRide(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")

	var body struct {
		RideRequestID string `json:"ride_request_id" validate:"required,uuid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	if err := h.dispatchService.RejectRide(r.Context(), driverID, body.RideRequestID); err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *DriverHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")

	var req models.UpdateAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.driverService.SetAvailability(r.Context(), driverID, bool(req.Availability)); err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]bool{"availability": bool(req.Availability)})
}

func (h *DriverHandler) MarkArrived(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")
	bookingID := chi.URLParam(r, "bookingID")

	if err := h.dispatchService.MarkArrived(r.Context(), driverID, bookingID); err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]string{"status": models.BookingStatusArrived})
}

func (h *DriverHandler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")
	bookingID := chi.URLParam(r, "bookingID")

	var req models.VerifyPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.dispatchService.VerifyPin(r.Context(), driverID, bookingID, req.Code)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, result)
}

func (h *DriverHandler) StartRide(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")
	bookingID := chi.URLParam(r, "bookingID")

	if err := h.dispatchService.StartRide(r.Context(), driverID, bookingID); err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]string{"status": models.BookingStatusOngoing})
}

func (h *DriverHandler) EndRide(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")
	bookingID := chi.URLParam(r, "bookingID")

	booking, err := h.dispatchService.EndRide(r.Context(), driverID, bookingID)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, booking.ToResponse())
}

func (h *DriverHandler) RideHistory(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")

	history, err := h.driverService.RideHistory(r.Context(), driverID)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, history)
}

func (h *DriverHandler) Earnings(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "id")

	summary, err := h.earningsService.DriverEarnings(r.Context(), driverID)
	if err != nil {
		handleError(w, err)
		return
	}
	utils.Success(w, http.StatusOK, summary)
}
