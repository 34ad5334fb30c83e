package process_message

import (
	"context"
	"fmt"
)

// UseCase use case обработки одного сообщения диалога
type UseCase struct {
	agent   ConversationAgent
	metrics Metrics
	logger  Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(agent ConversationAgent, metrics Metrics, logger Logger) *UseCase {
	return &UseCase{
		agent:   agent,
		metrics: metrics,
		logger:  logger,
	}
}

// Execute обрабатывает сообщение клиента и возвращает ответ агента
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	reply, err := uc.agent.ProcessMessage(ctx, req.Phone, req.Message)
	if err != nil {
		uc.logger.Error("ProcessMessage: agent failed phone=%s: %v", req.Phone, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if uc.metrics != nil {
		uc.metrics.IncMessageProcessed(string(reply.Intent))
		if reply.Booked {
			uc.metrics.IncBookingCreated()
		}
		if reply.AssistantFallback {
			uc.metrics.IncAssistantFallback()
		}
	}

	return &Response{
		Reply:  reply.Text,
		Intent: string(reply.Intent),
		Stage:  string(reply.Stage),
	}, nil
}
