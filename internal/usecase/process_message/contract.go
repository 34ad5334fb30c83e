package process_message

import (
	"context"

	"github.com/serenity-spa/booking-agent/internal/service/conversation"
)

// ConversationAgent интерфейс диалогового агента
type ConversationAgent interface {
	ProcessMessage(ctx context.Context, phone, message string) (*conversation.Reply, error)
}

// Metrics счетчики обработки сообщений
type Metrics interface {
	IncMessageProcessed(intent string)
	IncBookingCreated()
	IncAssistantFallback()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
