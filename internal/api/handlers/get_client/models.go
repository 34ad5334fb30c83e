package get_client

import (
	"github.com/serenity-spa/booking-agent/internal/domain"
)

// ClientResponse HTTP response model
type ClientResponse struct {
	Phone            string            `json:"phone_number"`
	Name             *string           `json:"name,omitempty"`
	Email            *string           `json:"email,omitempty"`
	Preferences      map[string]string `json:"preferences"`
	AppointmentCount int               `json:"appointment_count"`
	TotalSpent       float64           `json:"total_spent"`
}

// FromDomain конвертирует доменного клиента в HTTP response
func FromDomain(client *domain.Client) *ClientResponse {
	return &ClientResponse{
		Phone:            client.Phone,
		Name:             client.Name,
		Email:            client.Email,
		Preferences:      client.Preferences,
		AppointmentCount: client.AppointmentCount,
		TotalSpent:       client.TotalSpent,
	}
}
