package stripe_webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v79"

	"github.com/serenity-spa/booking-agent/internal/api/handlers"
	"github.com/serenity-spa/booking-agent/internal/service/bookings"
)

// maxBodyBytes лимит тела вебхука, рекомендованный Stripe
const maxBodyBytes = 1 << 20

const (
	msgInvalidPayload   = "invalid webhook payload"
	msgInvalidSignature = "invalid webhook signature"
)

type Handler struct {
	verifier WebhookVerifier
	service  BookingService
	agent    ConversationAgent
	logger   Logger
}

func NewHandler(verifier WebhookVerifier, service BookingService, agent ConversationAgent, logger Logger) *Handler {
	return &Handler{
		verifier: verifier,
		service:  service,
		agent:    agent,
		logger:   logger,
	}
}

// Handle POST /webhook/stripe
// Подтверждает депозит по событию checkout.session.completed.
// Остальные типы событий подтверждаются без обработки, чтобы Stripe не ретраил их.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("POST /webhook/stripe - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}

	event, err := h.verifier.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("POST /webhook/stripe - Signature verification failed: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSignature)
		return
	}

	if event.Type != "checkout.session.completed" {
		h.logger.Info("POST /webhook/stripe - Ignoring event type %s", event.Type)
		w.WriteHeader(http.StatusOK)
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.logger.Warn("POST /webhook/stripe - Failed to parse checkout session: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPayload)
		return
	}

	appointmentID := session.Metadata["appointment_id"]
	if appointmentID == "" {
		h.logger.Warn("POST /webhook/stripe - Session %s has no appointment_id metadata", session.ID)
		w.WriteHeader(http.StatusOK)
		return
	}

	appt, err := h.service.ConfirmDeposit(r.Context(), appointmentID, session.ID)
	if err != nil {
		if errors.Is(err, bookings.ErrAppointmentNotFound) {
			// Запись могла быть отменена до оплаты; событие не ретраится.
			h.logger.Warn("POST /webhook/stripe - Appointment not found: id=%s", appointmentID)
			w.WriteHeader(http.StatusOK)
			return
		}
		h.logger.Error("POST /webhook/stripe - Failed to confirm deposit: id=%s, error=%v", appointmentID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.agent.ConfirmDepositPaid(appt.ClientPhone)

	h.logger.Info("POST /webhook/stripe - Deposit confirmed: appointment_id=%s, session=%s", appointmentID, session.ID)
	w.WriteHeader(http.StatusOK)
}
