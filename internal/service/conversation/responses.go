package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/serenity-spa/booking-agent/internal/domain"
	"github.com/serenity-spa/booking-agent/pkg/types"
)

const (
	displayDateFormat = "Monday, January 02, 2006"
	displayTimeFormat = "03:04 PM"
)

func (a *Agent) welcomeMessage() string {
	return fmt.Sprintf("Welcome to %s! I'm here to help you book your perfect massage session. "+
		"You can book an appointment, check our services, or ask about availability.", a.cfg.Name)
}

func (a *Agent) serviceMenu() string {
	var sb strings.Builder
	sb.WriteString("Available massage services:\n")
	for i, svc := range a.cfg.ServiceList() {
		sb.WriteString(fmt.Sprintf("%d. %s (%d min) - $%.0f\n", i+1, svc.Name, svc.DurationMinutes, svc.Price))
	}
	sb.WriteString("\nWhich service would you like to book?")
	return sb.String()
}

func (a *Agent) pricingInfo() string {
	var sb strings.Builder
	sb.WriteString("Here are our prices:\n\n")
	for _, svc := range a.cfg.ServiceList() {
		sb.WriteString(fmt.Sprintf("- %s: $%.0f\n", svc.Name, svc.Price))
	}
	return sb.String()
}

func (a *Agent) hoursInfo() string {
	var sb strings.Builder
	sb.WriteString("Our business hours:\n\n")
	for d := 0; d < 7; d++ {
		// неделя в выводе начинается с понедельника
		weekday := time.Weekday((d + 1) % 7)
		hours := a.cfg.Hours.ForWeekday(weekday)
		if hours.Closed {
			sb.WriteString(fmt.Sprintf("- %s: Closed\n", weekday))
		} else {
			sb.WriteString(fmt.Sprintf("- %s: %s - %s\n", weekday, hours.Open, hours.Close))
		}
	}
	return sb.String()
}

func (a *Agent) helpInfo() string {
	return "I can help you with:\n" +
		"- Booking a new appointment\n" +
		"- Checking availability for specific dates\n" +
		"- Viewing our services and pricing\n" +
		"- Rescheduling or canceling appointments\n" +
		"- Payment and deposit information\n\n" +
		"What would you like to do?"
}

func (a *Agent) confirmationMessage(appt *domain.Appointment, svc domain.ServiceInfo) string {
	return fmt.Sprintf("Your appointment has been confirmed!\n\n"+
		"Details:\n"+
		"- Service: %s\n"+
		"- Date: %s\n"+
		"- Time: %s\n"+
		"- Duration: %d minutes\n"+
		"- Price: $%.0f\n"+
		"- Deposit: $%.2f\n\n"+
		"We'll send you a reminder 24 hours before your appointment. See you soon!",
		svc.Name,
		formatDateDisplay(appt.Date.Format(domain.DateFormat)),
		formatTimeDisplay(appt.StartTime),
		svc.DurationMinutes,
		svc.Price,
		appt.DepositAmount,
	)
}

func (a *Agent) depositRequestMessage(amount float64, paymentURL string) string {
	return fmt.Sprintf("To secure your appointment, a $%.2f deposit is required.\n\n"+
		"This deposit will be applied to your total service cost and is fully refundable "+
		"if you cancel at least 24 hours in advance.\n\n"+
		"Please use the following payment link to complete your deposit:\n%s\n\n"+
		"Once payment is received, your appointment will be confirmed.", amount, paymentURL)
}

func (a *Agent) cancellationPolicy(refund float64) string {
	return fmt.Sprintf("Cancellation Policy:\n"+
		"- Full refund if cancelled 24+ hours before appointment\n"+
		"- 50%% refund if cancelled 12-24 hours before\n"+
		"- No refund for cancellations less than 12 hours before appointment\n\n"+
		"If cancelled now, you will receive a $%.2f refund. Would you like to proceed with cancellation?", refund)
}

// formatDateDisplay превращает "2025-06-02" в "Monday, June 02, 2025".
// Нераспарсиваемая строка возвращается как есть.
func formatDateDisplay(dateStr string) string {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return dateStr
	}
	return date.Format(displayDateFormat)
}

// formatTimeDisplay превращает "14:00" в "02:00 PM"
func formatTimeDisplay(t types.TimeString) string {
	parsed, err := time.Parse(domain.TimeFormat, t.String())
	if err != nil {
		return t.String()
	}
	return parsed.Format(displayTimeFormat)
}

func formatSlots(slots []types.TimeString, limit int) string {
	if limit > 0 && len(slots) > limit {
		slots = slots[:limit]
	}
	parts := make([]string, 0, len(slots))
	for _, slot := range slots {
		parts = append(parts, formatTimeDisplay(slot))
	}
	return strings.Join(parts, ", ")
}

func formatDates(dates []time.Time, limit int) string {
	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}
	parts := make([]string, 0, len(dates))
	for _, date := range dates {
		parts = append(parts, formatDateDisplay(date.Format(domain.DateFormat)))
	}
	return strings.Join(parts, ", ")
}
