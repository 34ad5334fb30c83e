package stripepay

import "errors"

var (
	// ErrNotConfigured платежи не настроены (нет секретного ключа)
	ErrNotConfigured = errors.New("stripepay: stripe is not configured")

	// ErrInternal ошибка обращения к Stripe API
	ErrInternal = errors.New("stripepay: stripe request failed")

	// ErrInvalidSignature подпись вебхука не прошла проверку
	ErrInvalidSignature = errors.New("stripepay: invalid webhook signature")
)
