package domain

import (
	"strings"
	"time"
)

// Client represents a studio client, keyed by normalized phone number
type Client struct {
	Phone            string
	Name             *string
	Email            *string
	Preferences      map[string]string
	AppointmentCount int
	TotalSpent       float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizePhone strips separators so the same client always maps to one record
func NormalizePhone(phone string) string {
	replacer := strings.NewReplacer("-", "", " ", "", "(", "", ")", "")
	return replacer.Replace(strings.TrimSpace(phone))
}

// RecordBooking updates client statistics after a created appointment
func (c *Client) RecordBooking(amount float64) {
	c.AppointmentCount++
	c.TotalSpent += amount
}
