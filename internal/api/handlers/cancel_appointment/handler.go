package cancel_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/serenity-spa/booking-agent/internal/api/handlers"
	"github.com/serenity-spa/booking-agent/internal/service/bookings"
)

const (
	msgMissingID    = "missing appointment ID"
	msgNotFound     = "appointment not found"
	msgCannotCancel = "appointment can no longer be cancelled"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID := vars["appointmentId"]
	if appointmentID == "" {
		h.logger.Warn("POST /appointments/{id}/cancel - Missing appointment ID")
		handlers.RespondBadRequest(w, msgMissingID)
		return
	}

	refund, err := h.service.Cancel(r.Context(), appointmentID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/{id}/cancel - Appointment not found: id=%s", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, bookings.ErrCannotCancel):
			h.logger.Warn("POST /appointments/{id}/cancel - Cannot cancel: id=%s", appointmentID)
			handlers.RespondError(w, http.StatusConflict, msgCannotCancel)

		default:
			h.logger.Error("POST /appointments/{id}/cancel - Failed to cancel: id=%s, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/cancel - Appointment cancelled: id=%s, refund=%.2f", appointmentID, refund)
	handlers.RespondJSON(w, http.StatusOK, &CancelResponse{
		ID:           appointmentID,
		Status:       "cancelled",
		RefundAmount: refund,
	})
}
