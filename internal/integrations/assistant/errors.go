package assistant

import "errors"

var (
	// ErrDisabled ассистент выключен в конфигурации
	ErrDisabled = errors.New("assistant: assistant is disabled")

	// ErrGeneration модель не смогла сгенерировать ответ
	ErrGeneration = errors.New("assistant: failed to generate response")
)
