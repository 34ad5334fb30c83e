package list_services

import (
	"net/http"

	"github.com/serenity-spa/booking-agent/internal/api/handlers"
	"github.com/serenity-spa/booking-agent/internal/domain"
)

type Handler struct {
	cfg    *domain.BusinessConfig
	logger Logger
}

func NewHandler(cfg *domain.BusinessConfig, logger Logger) *Handler {
	return &Handler{
		cfg:    cfg,
		logger: logger,
	}
}

// Handle GET /api/v1/services
// Каталог статичен, поэтому ответ строится напрямую из конфигурации.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, FromCatalog(h.cfg))
}
