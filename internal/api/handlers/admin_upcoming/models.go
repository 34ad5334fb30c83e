package admin_upcoming

import (
	"github.com/serenity-spa/booking-agent/internal/domain"
)

// UpcomingResponse HTTP response model
type UpcomingResponse struct {
	Total        int                   `json:"total"`
	Appointments []AppointmentResponse `json:"appointments"`
}

// AppointmentResponse модель записи для админского списка
type AppointmentResponse struct {
	ID              string  `json:"id"`
	ClientPhone     string  `json:"phone_number"`
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
func FromDomain(appts []*domain.Appointment) *UpcomingResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for _, appt := range appts {
		out = append(out, AppointmentResponse{
			ID:              appt.ID,
			ClientPhone:     appt.ClientPhone,
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
	return &UpcomingResponse{Total: len(out), Appointments: out}
}
