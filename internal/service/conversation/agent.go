package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/serenity-spa/booking-agent/internal/domain"
	"github.com/serenity-spa/booking-agent/internal/nlu"
	"github.com/serenity-spa/booking-agent/internal/service/bookings"
	"github.com/serenity-spa/booking-agent/internal/service/scheduler"
	"github.com/serenity-spa/booking-agent/pkg/types"
)

const (
	slotsShownOnPrompt       = 5
	slotsShownOnAvailability = 8
	datesShownOnAvailability = 5
)

// Agent пошаговый сценарий бронирования поверх NLU и движка доступности.
// Каждое входящее сообщение обрабатывается согласно текущему этапу диалога;
// извлеченные из сообщения данные накапливаются в состоянии между репликами.
type Agent struct {
	states    *Store
	parser    MessageParser
	scheduler SlotScheduler
	bookings  BookingService
	clients   ClientStore
	payments  DepositPayments
	assistant Assistant
	cfg       *domain.BusinessConfig
	logger    Logger
}

// NewAgent создает новый диалоговый агент.
// assistant может быть nil: тогда реплики вне сценария отвечаются шаблонами.
func NewAgent(
	states *Store,
	parser MessageParser,
	slotScheduler SlotScheduler,
	bookingService BookingService,
	clients ClientStore,
	payments DepositPayments,
	assistant Assistant,
	cfg *domain.BusinessConfig,
	logger Logger,
) *Agent {
	return &Agent{
		states:    states,
		parser:    parser,
		scheduler: slotScheduler,
		bookings:  bookingService,
		clients:   clients,
		payments:  payments,
		assistant: assistant,
		cfg:       cfg,
		logger:    logger,
	}
}

// Reply ответ агента на сообщение клиента.
// Booked=true означает, что в этом сообщении была создана запись.
// AssistantFallback=true - ассистент был настроен, но не ответил,
// и клиент получил шаблонную реплику.
type Reply struct {
	Text              string
	Intent            nlu.Intent
	Stage             Stage
	Booked            bool
	AssistantFallback bool
}

// ProcessMessage обрабатывает входящее сообщение клиента и возвращает ответ.
// Ошибка возвращается только при сбоях инфраструктуры; отказы валидации
// превращаются в человекочитаемые реплики.
func (a *Agent) ProcessMessage(ctx context.Context, phone, message string) (*Reply, error) {
	phone = domain.NormalizePhone(phone)
	state := a.states.Get(phone)

	// Сообщения одного клиента обрабатываются по одному: состояние мутируется
	// на всех этапах разбора, а HTTP-сервер обслуживает запросы конкурентно.
	state.mu.Lock()
	defer state.mu.Unlock()

	intent := a.parser.ClassifyIntent(message)
	extracted := a.parser.Extract(message)

	a.logger.Info("ProcessMessage: phone=%s stage=%s intent=%s", phone, state.Stage, intent)

	a.mergeExtracted(ctx, phone, state, extracted)

	text, err := a.handle(ctx, phone, state, intent, extracted, message)
	if err != nil {
		return nil, err
	}

	booked := state.justBooked
	fellBack := state.assistantFellBack
	state.justBooked = false
	state.assistantFellBack = false
	return &Reply{Text: text, Intent: intent, Stage: state.Stage, Booked: booked, AssistantFallback: fellBack}, nil
}

// ConfirmDepositPaid переводит диалог клиента в подтвержденное состояние
// после успешной оплаты депозита
func (a *Agent) ConfirmDepositPaid(phone string) {
	a.states.SetStage(phone, StageConfirmed)
}

// mergeExtracted накапливает извлеченные данные в состоянии диалога.
// Имя и email сразу сохраняются в профиле клиента.
func (a *Agent) mergeExtracted(ctx context.Context, phone string, state *State, extracted nlu.Extracted) {
	if extracted.Service != "" {
		state.Service = extracted.Service
	}
	if extracted.Date != "" {
		state.Date = extracted.Date
	}
	if extracted.Time != "" {
		state.Time = extracted.Time
	}

	if extracted.Name == "" && extracted.Email == "" {
		return
	}
	client, err := a.clients.GetOrCreate(ctx, phone)
	if err != nil {
		a.logger.Error("mergeExtracted: get or create client phone=%s: %v", phone, err)
		return
	}
	if extracted.Name != "" {
		client.Name = &extracted.Name
	}
	if extracted.Email != "" {
		client.Email = &extracted.Email
	}
	if err := a.clients.Update(ctx, client); err != nil {
		a.logger.Error("mergeExtracted: update client phone=%s: %v", phone, err)
	}
}

func (a *Agent) handle(ctx context.Context, phone string, state *State, intent nlu.Intent, extracted nlu.Extracted, message string) (string, error) {
	switch state.Stage {
	case StageGreeting:
		return a.handleGreeting(ctx, phone, state, intent, extracted, message)
	case StageCollectingService:
		return a.handleCollectingService(state, intent)
	case StageCollectingDate:
		return a.handleCollectingDate(ctx, state)
	case StageCollectingTime:
		return a.handleCollectingTime(ctx, phone, state)
	case StageAwaitingDeposit:
		return a.handleAwaitingDeposit(ctx, phone, state, message)
	case StageConfirmed:
		return a.handleConfirmed(ctx, phone, state, intent, message)
	default:
		state.Stage = StageGreeting
		return a.welcomeMessage(), nil
	}
}

func (a *Agent) handleGreeting(ctx context.Context, phone string, state *State, intent nlu.Intent, extracted nlu.Extracted, message string) (string, error) {
	switch intent {
	case nlu.IntentGreeting:
		return a.welcomeMessage(), nil
	case nlu.IntentServices:
		return a.serviceMenu(), nil
	case nlu.IntentPricing:
		return a.pricingInfo(), nil
	case nlu.IntentHours:
		return a.hoursInfo(), nil
	case nlu.IntentHelp:
		return a.helpInfo(), nil
	case nlu.IntentCheckAvailability:
		return a.handleCheckAvailability(ctx, extracted.Date)
	case nlu.IntentCancel, nlu.IntentReschedule:
		return a.handleConfirmed(ctx, phone, state, intent, message)
	case nlu.IntentBook:
		if state.Service != "" {
			state.Stage = StageCollectingDate
			return fmt.Sprintf("Great choice! What date would you like to schedule your %s?", a.serviceName(state.Service)), nil
		}
		state.Stage = StageCollectingService
		return "I'd be happy to help you book an appointment! What type of massage would you like? " +
			"You can choose from: Swedish, Deep Tissue, Hot Stone, Aromatherapy, Sports, or Couples massage.", nil
	default:
		return a.offScriptReply(ctx, phone, state, message), nil
	}
}

func (a *Agent) handleCollectingService(state *State, intent nlu.Intent) (string, error) {
	if state.Service != "" {
		state.Stage = StageCollectingDate
		return fmt.Sprintf("Great! What date would you like to schedule your %s?", a.serviceName(state.Service)), nil
	}
	if intent == nlu.IntentServices {
		return a.serviceMenu(), nil
	}
	return "I didn't catch which service you'd like. Please choose from: Swedish, Deep Tissue, " +
		"Hot Stone, Aromatherapy, Sports, or Couples massage.", nil
}

func (a *Agent) handleCollectingDate(ctx context.Context, state *State) (string, error) {
	if state.Date == "" {
		return "What date would you like to schedule your appointment? You can say things like " +
			"'tomorrow', 'next Monday', or give a specific date like 'January 15'.", nil
	}

	date, err := time.Parse(domain.DateFormat, state.Date)
	if err != nil {
		state.Date = ""
		return "I couldn't understand that date. Please try something like 'tomorrow' or 'June 15'.", nil
	}

	slots, err := a.scheduler.FreeSlots(ctx, date)
	if err != nil {
		return "", fmt.Errorf("collecting date: free slots: %w", err)
	}
	if len(slots) == 0 {
		noAvail := fmt.Sprintf("Unfortunately, we don't have any availability on %s. Would you like to check another date?",
			formatDateDisplay(state.Date))
		state.Date = ""
		return noAvail, nil
	}

	state.Stage = StageCollectingTime
	return fmt.Sprintf("Available times for %s: %s. What time works best for you?",
		formatDateDisplay(state.Date), formatSlots(slots, slotsShownOnPrompt)), nil
}

func (a *Agent) handleCollectingTime(ctx context.Context, phone string, state *State) (string, error) {
	if state.Time == "" {
		date, err := time.Parse(domain.DateFormat, state.Date)
		if err != nil {
			state.Stage = StageCollectingDate
			state.Date = ""
			return a.handleCollectingDate(ctx, state)
		}
		slots, err := a.scheduler.FreeSlots(ctx, date)
		if err != nil {
			return "", fmt.Errorf("collecting time: free slots: %w", err)
		}
		if len(slots) == 0 {
			state.Stage = StageCollectingDate
			state.Date = ""
			return "No time slots available. Would you like to try a different date?", nil
		}
		return fmt.Sprintf("What time would you prefer? Available slots: %s", formatSlots(slots, slotsShownOnPrompt)), nil
	}

	result, err := a.scheduler.Validate(ctx, state.Date, state.Time, state.Service)
	if err != nil {
		return "", fmt.Errorf("collecting time: validate: %w", err)
	}
	if !result.OK {
		return a.rejectionReply(state, result), nil
	}

	deposit := a.scheduler.Deposit(state.Service, result.Service.Price)
	if deposit > 0 && a.payments.Enabled() {
		state.Stage = StageAwaitingDeposit
		return fmt.Sprintf("I can book your %s on %s at %s.\n\n"+
			"A $%.2f deposit is required to confirm this appointment. Would you like to proceed with the deposit? (yes/no)",
			result.Service.Name, formatDateDisplay(state.Date), formatTimeDisplay(types.NewTimeString(result.When)), deposit), nil
	}

	return a.createAppointment(ctx, phone, state)
}

func (a *Agent) handleAwaitingDeposit(ctx context.Context, phone string, state *State, message string) (string, error) {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "yes") || strings.Contains(lower, "proceed"):
		appt, result, err := a.bookings.Create(ctx, phone, state.Service, state.Date, state.Time, "")
		if err != nil {
			if errors.Is(err, bookings.ErrSlotRejected) {
				return a.rejectionReply(state, result), nil
			}
			return "", fmt.Errorf("awaiting deposit: create: %w", err)
		}
		state.AppointmentID = appt.ID
		state.justBooked = true

		var email string
		if client, err := a.clients.GetOrCreate(ctx, phone); err == nil && client.Email != nil {
			email = *client.Email
		}

		link, err := a.payments.CreateDepositSession(appt.ID, appt.DepositAmount, email)
		if err != nil {
			a.logger.Error("handleAwaitingDeposit: deposit session failed appt=%s: %v", appt.ID, err)
			return "Sorry, there was an error setting up the deposit. Please try again or contact us directly.", nil
		}
		if err := a.bookings.SetPaymentRef(ctx, appt.ID, link.SessionID); err != nil {
			a.logger.Error("handleAwaitingDeposit: save payment ref appt=%s: %v", appt.ID, err)
		}
		state.PaymentRef = link.SessionID
		return a.depositRequestMessage(appt.DepositAmount, link.URL), nil

	case strings.Contains(lower, "no"):
		state.Stage = StageCollectingTime
		state.Time = ""
		return "No problem! Would you like to choose a different time or service?", nil

	default:
		return "Please let me know if you'd like to proceed with the deposit (yes/no).", nil
	}
}

func (a *Agent) handleConfirmed(ctx context.Context, phone string, state *State, intent nlu.Intent, message string) (string, error) {
	switch intent {
	case nlu.IntentReschedule:
		return a.handleReschedule(ctx, phone, state, message)
	case nlu.IntentCancel:
		return a.handleCancellation(ctx, phone, state, message)
	default:
		if state.Stage == StageConfirmed {
			return "Your appointment is confirmed! Is there anything else I can help you with?", nil
		}
		return a.offScriptReply(ctx, phone, state, message), nil
	}
}

func (a *Agent) handleCheckAvailability(ctx context.Context, dateStr string) (string, error) {
	if dateStr != "" {
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err == nil {
			slots, err := a.scheduler.FreeSlots(ctx, date)
			if err != nil {
				return "", fmt.Errorf("check availability: free slots: %w", err)
			}
			if len(slots) > 0 {
				return fmt.Sprintf("Available times for %s: %s",
					formatDateDisplay(dateStr), formatSlots(slots, slotsShownOnAvailability)), nil
			}
			dates, err := a.scheduler.AvailableDates(ctx, domain.DefaultHorizonDays)
			if err != nil {
				return "", fmt.Errorf("check availability: available dates: %w", err)
			}
			return fmt.Sprintf("No availability on %s. We have openings on: %s",
				formatDateDisplay(dateStr), formatDates(dates, datesShownOnAvailability)), nil
		}
	}

	dates, err := a.scheduler.AvailableDates(ctx, domain.DefaultHorizonDays)
	if err != nil {
		return "", fmt.Errorf("check availability: available dates: %w", err)
	}
	return fmt.Sprintf("Here are our available dates in the next 2 weeks: %s\n\nWhich date would you like to check?",
		formatDates(dates, 7)), nil
}

func (a *Agent) handleReschedule(ctx context.Context, phone string, state *State, message string) (string, error) {
	if state.AppointmentID == "" {
		id, err := a.latestUpcomingID(ctx, phone)
		if err != nil {
			return "", err
		}
		if id == "" {
			return "You don't have any upcoming appointments to reschedule.", nil
		}
		state.AppointmentID = id
	}

	newDate := a.parser.ExtractDate(message)
	newTime := a.parser.ExtractTime(message)
	if newDate == "" || newTime == "" {
		return "To reschedule, please provide the new date and time. " +
			"For example: 'I'd like to reschedule to tomorrow at 3pm'", nil
	}

	result, err := a.bookings.Reschedule(ctx, state.AppointmentID, newDate, newTime)
	if err != nil {
		if errors.Is(err, bookings.ErrSlotRejected) {
			return result.Message, nil
		}
		if errors.Is(err, bookings.ErrAppointmentNotFound) {
			return "Unable to reschedule appointment. Please contact us directly.", nil
		}
		if errors.Is(err, bookings.ErrCannotReschedule) {
			state.AppointmentID = ""
			return "This appointment can no longer be changed. Would you like to book a new one instead?", nil
		}
		return "", fmt.Errorf("reschedule: %w", err)
	}

	return fmt.Sprintf("Your appointment has been rescheduled to %s at %s.\n\nService: %s\nDuration: %d minutes",
		formatDateDisplay(newDate), formatTimeDisplay(types.NewTimeString(result.When)),
		result.Service.Name, result.Service.DurationMinutes), nil
}

func (a *Agent) handleCancellation(ctx context.Context, phone string, state *State, message string) (string, error) {
	if state.AppointmentID == "" {
		id, err := a.latestUpcomingID(ctx, phone)
		if err != nil {
			return "", err
		}
		if id == "" {
			return "You don't have any upcoming appointments to cancel.", nil
		}
		state.AppointmentID = id
	}

	lower := strings.ToLower(message)
	if !strings.Contains(lower, "yes") && !strings.Contains(lower, "confirm") {
		appts, err := a.bookings.GetByPhone(ctx, phone)
		if err != nil {
			return "", fmt.Errorf("cancellation: load appointments: %w", err)
		}
		for _, appt := range appts {
			if appt.ID == state.AppointmentID {
				return a.cancellationPolicy(a.bookings.RefundAmount(appt)), nil
			}
		}
		return "Unable to find your appointment.", nil
	}

	refund, err := a.bookings.Cancel(ctx, state.AppointmentID)
	if err != nil {
		if errors.Is(err, bookings.ErrAppointmentNotFound) || errors.Is(err, bookings.ErrCannotCancel) {
			return "Unable to find your appointment.", nil
		}
		return "", fmt.Errorf("cancellation: %w", err)
	}

	refundMsg := "No refund will be issued."
	if refund > 0 {
		refundMsg = fmt.Sprintf("You will receive a $%.2f refund.", refund)
	}

	state.Stage = StageGreeting
	state.AppointmentID = ""
	state.Date = ""
	state.Time = ""
	return fmt.Sprintf("Your appointment has been cancelled. %s\n\nWould you like to book another appointment?", refundMsg), nil
}

// createAppointment создает запись без депозита и подтверждает её клиенту
func (a *Agent) createAppointment(ctx context.Context, phone string, state *State) (string, error) {
	appt, result, err := a.bookings.Create(ctx, phone, state.Service, state.Date, state.Time, "")
	if err != nil {
		if errors.Is(err, bookings.ErrSlotRejected) {
			return a.rejectionReply(state, result), nil
		}
		return "", fmt.Errorf("create appointment: %w", err)
	}

	state.AppointmentID = appt.ID
	state.Stage = StageConfirmed
	state.justBooked = true
	return a.confirmationMessage(appt, result.Service), nil
}

// rejectionReply превращает отказ валидации в реплику и откатывает состояние,
// чтобы клиент мог назвать другое время или дату
func (a *Agent) rejectionReply(state *State, result *scheduler.ValidationResult) string {
	state.Time = ""
	switch result.Reason {
	case scheduler.ReasonClosedDay, scheduler.ReasonOutsideBookingWindow, scheduler.ReasonMalformedDateTime:
		state.Date = ""
		state.Stage = StageCollectingDate
	case scheduler.ReasonUnknownService:
		state.Service = ""
		state.Stage = StageCollectingService
	default:
		state.Stage = StageCollectingTime
	}

	if len(result.Alternatives) > 0 {
		return fmt.Sprintf("%s\n\nAvailable alternatives: %s",
			result.Message, formatSlots(result.Alternatives, domain.DefaultAlternativeCount))
	}
	return result.Message
}

// offScriptReply отвечает на реплику вне сценария: сперва ассистентом,
// при его отсутствии или сбое шаблоном
func (a *Agent) offScriptReply(ctx context.Context, phone string, state *State, message string) string {
	if a.assistant != nil {
		reply, err := a.assistant.GenerateReply(ctx, phone, message, a.cfg, string(state.Stage))
		if err == nil {
			return reply
		}
		a.logger.Warn("offScriptReply: assistant fallback phone=%s: %v", phone, err)
		state.assistantFellBack = true
	}
	return "I'm here to help! You can ask me to book an appointment, check our services, or check availability. " +
		"What would you like to know?"
}

func (a *Agent) latestUpcomingID(ctx context.Context, phone string) (string, error) {
	appts, err := a.bookings.GetByPhone(ctx, phone)
	if err != nil {
		return "", fmt.Errorf("load upcoming appointments: %w", err)
	}
	for _, appt := range appts {
		if appt.IsUpcoming() {
			return appt.ID, nil
		}
	}
	return "", nil
}

func (a *Agent) serviceName(key string) string {
	if svc, ok := a.cfg.Service(key); ok {
		return svc.Name
	}
	return key
}
