package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/serenity-spa/booking-agent/internal/domain"
	apptRepo "github.com/serenity-spa/booking-agent/internal/infra/storage/appointment"
	"github.com/serenity-spa/booking-agent/internal/service/scheduler"
	"github.com/serenity-spa/booking-agent/pkg/ptr"
	"github.com/serenity-spa/booking-agent/pkg/types"
)

// Service сервис для работы с записями на сеансы: создание с повторной
// валидацией внутри транзакции, отмена с расчетом возврата депозита, перенос
type Service struct {
	appointments AppointmentRepository
	clients      ClientRepository
	validator    SlotValidator
	payments     PaymentClient
	txManager    TransactionManager
	cfg          *domain.BusinessConfig
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointments AppointmentRepository,
	clients ClientRepository,
	validator SlotValidator,
	payments PaymentClient,
	txManager TransactionManager,
	cfg *domain.BusinessConfig,
	logger Logger,
) *Service {
	return &Service{
		appointments: appointments,
		clients:      clients,
		validator:    validator,
		payments:     payments,
		txManager:    txManager,
		cfg:          cfg,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Create создает запись для клиента на услугу в указанные дату и время.
// Валидация слота и вставка выполняются в одной сериализуемой транзакции,
// поэтому из двух конкурирующих запросов на один слот зафиксируется только один.
// При непрошедшей валидации возвращается (nil, result, ErrSlotRejected).
func (s *Service) Create(ctx context.Context, phone, serviceKey, dateStr, timeStr string, notes string) (*domain.Appointment, *scheduler.ValidationResult, error) {
	phone = domain.NormalizePhone(phone)
	s.logger.Info("Create: booking request phone=%s service=%s date=%s time=%s", phone, serviceKey, dateStr, timeStr)

	var created *domain.Appointment
	var result *scheduler.ValidationResult

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.validator.Validate(ctx, dateStr, timeStr, serviceKey)
		if err != nil {
			return fmt.Errorf("%w: Create - validation failed: %v", ErrInternal, err)
		}
		if !result.OK {
			return ErrSlotRejected
		}

		if _, err := s.clients.GetOrCreate(ctx, phone); err != nil {
			return fmt.Errorf("%w: Create - get or create client: %v", ErrInternal, err)
		}

		deposit := s.validator.Deposit(serviceKey, result.Service.Price)
		appt := &domain.Appointment{
			ClientPhone:     phone,
			ServiceKey:      serviceKey,
			Date:            dateOnly(result.When),
			StartTime:       types.NewTimeString(result.When),
			DurationMinutes: result.Service.DurationMinutes,
			Price:           result.Service.Price,
			DepositAmount:   deposit,
			PaymentStatus:   domain.PaymentFullyPaid,
			Status:          domain.StatusConfirmed,
		}
		// Запись с депозитом остается pending до подтверждения оплаты вебхуком
		if deposit > 0 {
			appt.PaymentStatus = domain.PaymentPending
			appt.Status = domain.StatusPending
		}
		if notes != "" {
			appt.Notes = ptr.Ptr(notes)
		}

		created, err = s.appointments.Create(ctx, appt)
		if err != nil {
			return fmt.Errorf("%w: Create - insert appointment: %v", ErrInternal, err)
		}

		if err := s.clients.RecordBooking(ctx, phone, result.Service.Price); err != nil {
			return fmt.Errorf("%w: Create - record booking stats: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotRejected) {
			s.logger.Warn("Create: slot rejected phone=%s reason=%s", phone, result.Reason)
			return nil, result, ErrSlotRejected
		}
		s.logger.Error("Create: transaction failed phone=%s: %v", phone, err)
		return nil, nil, err
	}

	s.logger.Info("Create: appointment created id=%s phone=%s", created.ID, phone)
	return created, result, nil
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("GetByID: repository error id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}
	return appt, nil
}

// GetByPhone получает историю записей клиента
func (s *Service) GetByPhone(ctx context.Context, phone string) ([]*domain.Appointment, error) {
	appts, err := s.appointments.GetByPhone(ctx, domain.NormalizePhone(phone))
	if err != nil {
		s.logger.Error("GetByPhone: repository error phone=%s: %v", phone, err)
		return nil, fmt.Errorf("%w: GetByPhone - repository error: %v", ErrInternal, err)
	}
	return appts, nil
}

// GetUpcoming получает все предстоящие записи студии
func (s *Service) GetUpcoming(ctx context.Context) ([]*domain.Appointment, error) {
	appts, err := s.appointments.GetUpcoming(ctx, s.timeProvider.Now())
	if err != nil {
		s.logger.Error("GetUpcoming: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetUpcoming - repository error: %v", ErrInternal, err)
	}
	return appts, nil
}

// RefundAmount рассчитывает сумму возврата депозита при отмене записи сейчас.
// Полный возврат за 24+ часов до сеанса, половина за 12+ часов, иначе ничего.
func (s *Service) RefundAmount(appt *domain.Appointment) float64 {
	start, err := appt.StartDateTime()
	if err != nil {
		return 0
	}
	hoursUntil := start.Sub(s.timeProvider.Now()).Hours()

	switch {
	case hoursUntil >= domain.FullRefundHours:
		return appt.DepositAmount
	case hoursUntil >= domain.HalfRefundHours:
		return appt.DepositAmount * 0.5
	default:
		return 0
	}
}

// Cancel отменяет запись и при необходимости возвращает депозит.
// Возвращает сумму возврата. Ошибка возврата в Stripe не откатывает отмену:
// запись уже отменена, возврат делается вручную.
func (s *Service) Cancel(ctx context.Context, id string) (float64, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if !appt.CanBeCancelled() {
		s.logger.Warn("Cancel: appointment id=%s in status %s cannot be cancelled", id, appt.Status)
		return 0, ErrCannotCancel
	}

	refund := s.RefundAmount(appt)

	if err := s.appointments.Cancel(ctx, id); err != nil {
		s.logger.Error("Cancel: repository error id=%s: %v", id, err)
		return 0, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if refund > 0 && appt.PaymentRef != nil && s.payments.Enabled() {
		if err := s.payments.Refund(*appt.PaymentRef, refund); err != nil {
			s.logger.Error("Cancel: refund failed id=%s: %v", id, err)
		}
	}

	s.logger.Info("Cancel: appointment cancelled id=%s refund=%.2f", id, refund)
	return refund, nil
}

// Reschedule переносит запись на новые дату и время.
// Новый слот валидируется и занимается в той же сериализуемой транзакции.
// При непрошедшей валидации возвращается (result, ErrSlotRejected).
func (s *Service) Reschedule(ctx context.Context, id, dateStr, timeStr string) (*scheduler.ValidationResult, error) {
	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !appt.IsActive() {
		s.logger.Warn("Reschedule: appointment id=%s in status %s cannot be rescheduled", id, appt.Status)
		return nil, ErrCannotReschedule
	}

	var result *scheduler.ValidationResult
	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.validator.Validate(ctx, dateStr, timeStr, appt.ServiceKey)
		if err != nil {
			return fmt.Errorf("%w: Reschedule - validation failed: %v", ErrInternal, err)
		}
		if !result.OK {
			return ErrSlotRejected
		}

		if err := s.appointments.Reschedule(ctx, id, dateOnly(result.When), types.NewTimeString(result.When)); err != nil {
			return fmt.Errorf("%w: Reschedule - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotRejected) {
			return result, ErrSlotRejected
		}
		s.logger.Error("Reschedule: transaction failed id=%s: %v", id, err)
		return nil, err
	}

	s.logger.Info("Reschedule: appointment id=%s moved to %s %s", id, dateStr, timeStr)
	return result, nil
}

// SetPaymentRef сохраняет платежную сессию за записью
func (s *Service) SetPaymentRef(ctx context.Context, id, paymentRef string) error {
	if err := s.appointments.SetPaymentRef(ctx, id, paymentRef); err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("%w: SetPaymentRef - repository error: %v", ErrInternal, err)
	}
	return nil
}

// ConfirmDeposit помечает депозит оплаченным и подтверждает запись.
// Вызывается из обработчика вебхука после успешной оплаты.
// Возвращает подтвержденную запись, чтобы вызывающий код знал клиента.
func (s *Service) ConfirmDeposit(ctx context.Context, appointmentID, paymentRef string) (*domain.Appointment, error) {
	if err := s.appointments.MarkDepositPaid(ctx, appointmentID, paymentRef); err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("ConfirmDeposit: repository error id=%s: %v", appointmentID, err)
		return nil, fmt.Errorf("%w: ConfirmDeposit - repository error: %v", ErrInternal, err)
	}

	appt, err := s.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("ConfirmDeposit: deposit paid id=%s payment_ref=%s", appointmentID, paymentRef)
	return appt, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
