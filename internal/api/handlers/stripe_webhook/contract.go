package stripe_webhook

import (
	"context"

	"github.com/stripe/stripe-go/v79"

	"github.com/serenity-spa/booking-agent/internal/domain"
)

type WebhookVerifier interface {
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

type BookingService interface {
	ConfirmDeposit(ctx context.Context, appointmentID, paymentRef string) (*domain.Appointment, error)
}

type ConversationAgent interface {
	ConfirmDepositPaid(phone string)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
