package get_client_appointments

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/serenity-spa/booking-agent/internal/api/handlers"
	"github.com/serenity-spa/booking-agent/internal/domain"
)

const (
	msgMissingPhone = "missing phone number"
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

// Handle GET /api/v1/appointments/{phone}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	phone := domain.NormalizePhone(vars["phone"])
	if phone == "" {
		h.logger.Warn("GET /appointments/{phone} - Missing phone number")
		handlers.RespondBadRequest(w, msgMissingPhone)
		return
	}

	appts, err := h.service.GetByPhone(r.Context(), phone)
	if err != nil {
		h.logger.Error("GET /appointments/{phone} - Failed to list appointments: phone=%s, error=%v", phone, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomain(phone, appts))
}
