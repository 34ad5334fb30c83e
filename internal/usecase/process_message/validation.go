package process_message

import (
	"fmt"
	"strings"
)

const maxMessageLength = 4096

// validateRequest проверяет корректность входящего сообщения
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Phone) == "" {
		return fmt.Errorf("%w: phone_number is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if len(req.Message) > maxMessageLength {
		return fmt.Errorf("%w: message is too long", ErrInvalidInput)
	}
	return nil
}
