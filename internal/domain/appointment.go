package domain

import (
	"time"

	"github.com/serenity-spa/booking-agent/pkg/types"
)

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// PaymentStatus represents the payment state of an appointment
type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "pending"
	PaymentDepositPaid PaymentStatus = "deposit_paid"
	PaymentFullyPaid   PaymentStatus = "fully_paid"
)

// Appointment represents a booked massage session
type Appointment struct {
	ID              string
	ClientPhone     string
	ServiceKey      string
	Date            time.Time // calendar date, time-of-day is zero
	StartTime       types.TimeString
	DurationMinutes int
	Price           float64
	DepositAmount   float64
	PaymentStatus   PaymentStatus
	Status          AppointmentStatus
	PaymentRef      *string // Stripe checkout session / payment intent id
	Notes           *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCancelled returns true if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// IsActive returns true if the appointment still occupies its time slot.
// Cancelled appointments are excluded from all availability computations.
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

// IsUpcoming returns true if the appointment can still take place
func (a *Appointment) IsUpcoming() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// CanBeCancelled returns true if the appointment may transition to cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// StartDateTime combines the appointment date and start time
func (a *Appointment) StartDateTime() (time.Time, error) {
	minutes, err := a.StartTime.Minutes()
	if err != nil {
		return time.Time{}, err
	}
	return a.Date.Add(time.Duration(minutes) * time.Minute), nil
}

// EndTime returns the exclusive end of the appointment interval [start, start+duration)
func (a *Appointment) EndTime() (types.TimeString, error) {
	return a.StartTime.AddMinutes(a.DurationMinutes)
}

// ValidStatus reports whether s is a known appointment status
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}
