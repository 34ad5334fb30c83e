package get_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/serenity-spa/booking-agent/internal/api/handlers"
	getAvailability "github.com/serenity-spa/booking-agent/internal/usecase/get_availability"
)

const (
	msgInvalidDate = "invalid date format, expected YYYY-MM-DD"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability?date=YYYY-MM-DD&days=N
// Без параметра date возвращает список доступных дат на горизонте days.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := &getAvailability.Request{
		Date: r.URL.Query().Get("date"),
	}
	if days := r.URL.Query().Get("days"); days != "" {
		parsed, err := strconv.Atoi(days)
		if err != nil || parsed <= 0 {
			handlers.RespondBadRequest(w, "invalid days parameter")
			return
		}
		req.HorizonDays = parsed
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrInvalidDate):
			h.logger.Warn("GET /availability - invalid date %q", req.Date)
			handlers.RespondBadRequest(w, msgInvalidDate)
		default:
			h.logger.Error("GET /availability - failed: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
