package get_client_appointments

import (
	"github.com/serenity-spa/booking-agent/internal/domain"
)

// AppointmentsResponse HTTP response model
type AppointmentsResponse struct {
	Phone        string                `json:"phone_number"`
	Appointments []AppointmentResponse `json:"appointments"`
}

// AppointmentResponse модель записи в ответе API
type AppointmentResponse struct {
	ID              string  `json:"id"`
	ServiceKey      string  `json:"service"`
	Date            string  `json:"date"`
	StartTime       string  `json:"start_time"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	DepositAmount   float64 `json:"deposit_amount"`
	PaymentStatus   string  `json:"payment_status"`
	Status          string  `json:"status"`
	Notes           *string `json:"notes,omitempty"`
}

// FromDomain конвертирует доменные записи в HTTP response
func FromDomain(phone string, appts []*domain.Appointment) *AppointmentsResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for _, appt := range appts {
		out = append(out, AppointmentResponse{
			ID:              appt.ID,
			ServiceKey:      appt.ServiceKey,
			Date:            appt.Date.Format(domain.DateFormat),
			StartTime:       appt.StartTime.String(),
			DurationMinutes: appt.DurationMinutes,
			Price:           appt.Price,
			DepositAmount:   appt.DepositAmount,
			PaymentStatus:   string(appt.PaymentStatus),
			Status:          string(appt.Status),
			Notes:           appt.Notes,
		})
	}
	return &AppointmentsResponse{Phone: phone, Appointments: out}
}
