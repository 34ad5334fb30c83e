package stripepay

// Logger интерфейс логгера для клиента платежей
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Config настройки Stripe-клиента
type Config struct {
	SecretKey        string
	WebhookSecret    string
	SuccessURL       string
	CancelURL        string
	WebhookTolerance int
	BusinessName     string
}
