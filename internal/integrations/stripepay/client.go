package stripepay

import (
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/refund"
	"github.com/stripe/stripe-go/v79/webhook"
)

const defaultWebhookToleranceSeconds = 300

// CheckoutLink созданная платежная сессия для депозита
type CheckoutLink struct {
	SessionID string
	URL       string
}

// Client клиент для работы со Stripe: платежные сессии депозитов,
// возвраты и проверка подписи вебхуков
type Client struct {
	cfg       Config
	tolerance time.Duration
	log       Logger
}

// NewClient создает новый экземпляр Stripe-клиента.
// Stripe использует глобальный API-ключ, он устанавливается один раз здесь.
func NewClient(cfg Config, log Logger) *Client {
	if cfg.SecretKey != "" {
		stripe.Key = cfg.SecretKey
	} else {
		log.Warn("stripe secret key is not configured, deposits disabled")
	}

	tolSeconds := cfg.WebhookTolerance
	if tolSeconds <= 0 {
		tolSeconds = defaultWebhookToleranceSeconds
	}

	return &Client{
		cfg:       cfg,
		tolerance: time.Duration(tolSeconds) * time.Second,
		log:       log,
	}
}

// Enabled возвращает true, если платежи настроены
func (c *Client) Enabled() bool {
	return c.cfg.SecretKey != ""
}

// CreateDepositSession создает платежную сессию для депозита по записи.
// Сумма в долларах конвертируется в центы. ID записи передается в метаданных,
// чтобы вебхук мог сопоставить оплату с записью.
func (c *Client) CreateDepositSession(appointmentID string, amount float64, clientEmail string) (*CheckoutLink, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(c.cfg.SuccessURL),
		CancelURL:         stripe.String(c.cfg.CancelURL),
		ClientReferenceID: stripe.String(appointmentID),
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("Deposit for %s", c.cfg.BusinessName)),
						Description: stripe.String(fmt.Sprintf("Appointment ID: %.8s...", appointmentID)),
					},
					UnitAmount: stripe.Int64(toCents(amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"appointment_id": appointmentID,
		},
	}
	// Ретраи при создании одной и той же сессии безопасны
	params.IdempotencyKey = stripe.String("deposit:" + appointmentID)
	if clientEmail != "" {
		params.CustomerEmail = stripe.String(clientEmail)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		c.log.Error("stripe checkout session create failed: appointment_id=%s, error=%v", appointmentID, err)
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrInternal, err)
	}

	c.log.Info("stripe checkout session created: appointment_id=%s, session_id=%s", appointmentID, sess.ID)
	return &CheckoutLink{SessionID: sess.ID, URL: sess.URL}, nil
}

// Refund возвращает часть оплаты по платежной сессии.
// amount в долларах; amount <= 0 означает полный возврат.
func (c *Client) Refund(sessionID string, amount float64) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	sess, err := checkoutsession.Get(sessionID, nil)
	if err != nil {
		return fmt.Errorf("%w: get checkout session: %v", ErrInternal, err)
	}
	if sess.PaymentIntent == nil {
		return fmt.Errorf("%w: session %s has no payment intent", ErrInternal, sessionID)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(sess.PaymentIntent.ID),
	}
	if amount > 0 {
		params.Amount = stripe.Int64(toCents(amount))
	}

	if _, err := refund.New(params); err != nil {
		c.log.Error("stripe refund failed: session_id=%s, error=%v", sessionID, err)
		return fmt.Errorf("%w: create refund: %v", ErrInternal, err)
	}

	c.log.Info("stripe refund created: session_id=%s, amount=%.2f", sessionID, amount)
	return nil
}

// VerifyWebhook проверяет подпись вебхука и разбирает событие.
// Проверка подписи с допуском по времени и есть аутентификация вебхука.
func (c *Client) VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	if c.cfg.WebhookSecret == "" {
		return stripe.Event{}, ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithTolerance(payload, signatureHeader, c.cfg.WebhookSecret, c.tolerance)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}

func toCents(amount float64) int64 {
	return int64(amount*100 + 0.5)
}
