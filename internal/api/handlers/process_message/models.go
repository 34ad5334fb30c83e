package process_message

import (
	processMessage "github.com/serenity-spa/booking-agent/internal/usecase/process_message"
)

// MessageRequest HTTP request model
type MessageRequest struct {
	Phone   string `json:"phone_number"`
	Message string `json:"message"`
}

// MessageResponse HTTP response model
type MessageResponse struct {
	Response string `json:"response"`
	Intent   string `json:"intent"`
	Stage    string `json:"stage"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *MessageRequest) ToUseCaseRequest() *processMessage.Request {
	return &processMessage.Request{
		Phone:   r.Phone,
		Message: r.Message,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *processMessage.Response) *MessageResponse {
	return &MessageResponse{
		Response: resp.Reply,
		Intent:   resp.Intent,
		Stage:    resp.Stage,
	}
}
