package get_availability

import (
	getAvailability "github.com/serenity-spa/booking-agent/internal/usecase/get_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date           string   `json:"date,omitempty"`
	Open           bool     `json:"open"`
	Slots          []string `json:"available_slots,omitempty"`
	AvailableDates []string `json:"available_dates,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	return &AvailabilityResponse{
		Date:           resp.Date,
		Open:           resp.Open,
		Slots:          resp.Slots,
		AvailableDates: resp.AvailableDates,
	}
}
