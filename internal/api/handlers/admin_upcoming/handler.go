package admin_upcoming

import (
	"net/http"

	"github.com/serenity-spa/booking-agent/internal/api/handlers"
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

// Handle GET /api/v1/admin/upcoming
// Доступ ограничен middleware.AdminAuth.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appts, err := h.service.GetUpcoming(r.Context())
	if err != nil {
		h.logger.Error("GET /admin/upcoming - Failed to list upcoming appointments: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomain(appts))
}
