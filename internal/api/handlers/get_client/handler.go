package get_client

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/serenity-spa/booking-agent/internal/api/handlers"
	"github.com/serenity-spa/booking-agent/internal/domain"
	clientstorage "github.com/serenity-spa/booking-agent/internal/infra/storage/client"
)

const (
	msgMissingPhone = "missing phone number"
	msgNotFound     = "client not found"
)

type Handler struct {
	storage ClientStorage
	logger  Logger
}

func NewHandler(storage ClientStorage, logger Logger) *Handler {
	return &Handler{
		storage: storage,
		logger:  logger,
	}
}

// Handle GET /api/v1/clients/{phone}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	phone := domain.NormalizePhone(vars["phone"])
	if phone == "" {
		h.logger.Warn("GET /clients/{phone} - Missing phone number")
		handlers.RespondBadRequest(w, msgMissingPhone)
		return
	}

	client, err := h.storage.GetByPhone(r.Context(), phone)
	if err != nil {
		switch {
		case errors.Is(err, clientstorage.ErrClientNotFound):
			h.logger.Warn("GET /clients/{phone} - Client not found: phone=%s", phone)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /clients/{phone} - Failed to get client: phone=%s, error=%v", phone, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromDomain(client))
}
