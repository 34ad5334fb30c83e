package process_message

import (
	"errors"
	"net/http"

	"github.com/serenity-spa/booking-agent/internal/api/handlers"
	processMessage "github.com/serenity-spa/booking-agent/internal/usecase/process_message"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidInput       = "phone_number and message are required"
)

type Handler struct {
	useCase ProcessMessageUseCase
	logger  Logger
}

func NewHandler(useCase ProcessMessageUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/message
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /message - invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		switch {
		case errors.Is(err, processMessage.ErrInvalidInput):
			h.logger.Warn("POST /message - invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)
		default:
			h.logger.Error("POST /message - failed to process message: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /message - processed: intent=%s stage=%s", result.Intent, result.Stage)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
