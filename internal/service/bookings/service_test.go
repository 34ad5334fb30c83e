package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenity-spa/booking-agent/internal/domain"
	apptRepo "github.com/serenity-spa/booking-agent/internal/infra/storage/appointment"
	"github.com/serenity-spa/booking-agent/internal/service/scheduler"
	"github.com/serenity-spa/booking-agent/pkg/types"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

type fakeApptRepo struct {
	byID        map[string]*domain.Appointment
	created     []*domain.Appointment
	cancelled   []string
	depositPaid []string
}

func newFakeApptRepo() *fakeApptRepo {
	return &fakeApptRepo{byID: make(map[string]*domain.Appointment)}
}

func (r *fakeApptRepo) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	if appt.ID == "" {
		appt.ID = "appt-1"
	}
	r.created = append(r.created, appt)
	r.byID[appt.ID] = appt
	return appt, nil
}

func (r *fakeApptRepo) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	appt, ok := r.byID[id]
	if !ok {
		return nil, apptRepo.ErrAppointmentNotFound
	}
	return appt, nil
}

func (r *fakeApptRepo) GetByPhone(_ context.Context, phone string) ([]*domain.Appointment, error) {
	var out []*domain.Appointment
	for _, appt := range r.byID {
		if appt.ClientPhone == phone {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (r *fakeApptRepo) GetByPaymentRef(_ context.Context, ref string) (*domain.Appointment, error) {
	for _, appt := range r.byID {
		if appt.PaymentRef != nil && *appt.PaymentRef == ref {
			return appt, nil
		}
	}
	return nil, apptRepo.ErrAppointmentNotFound
}

func (r *fakeApptRepo) GetUpcoming(_ context.Context, _ time.Time) ([]*domain.Appointment, error) {
	return nil, nil
}

func (r *fakeApptRepo) UpdateStatus(_ context.Context, id string, status domain.AppointmentStatus) error {
	appt, ok := r.byID[id]
	if !ok {
		return apptRepo.ErrAppointmentNotFound
	}
	appt.Status = status
	return nil
}

func (r *fakeApptRepo) SetPaymentRef(_ context.Context, id, ref string) error {
	appt, ok := r.byID[id]
	if !ok {
		return apptRepo.ErrAppointmentNotFound
	}
	appt.PaymentRef = &ref
	return nil
}

func (r *fakeApptRepo) MarkDepositPaid(_ context.Context, id, ref string) error {
	appt, ok := r.byID[id]
	if !ok {
		return apptRepo.ErrAppointmentNotFound
	}
	appt.PaymentStatus = domain.PaymentDepositPaid
	appt.Status = domain.StatusConfirmed
	appt.PaymentRef = &ref
	r.depositPaid = append(r.depositPaid, id)
	return nil
}

func (r *fakeApptRepo) Cancel(_ context.Context, id string) error {
	appt, ok := r.byID[id]
	if !ok {
		return apptRepo.ErrAppointmentNotFound
	}
	appt.Status = domain.StatusCancelled
	r.cancelled = append(r.cancelled, id)
	return nil
}

func (r *fakeApptRepo) Reschedule(_ context.Context, id string, date time.Time, start types.TimeString) error {
	appt, ok := r.byID[id]
	if !ok {
		return apptRepo.ErrAppointmentNotFound
	}
	appt.Date = date
	appt.StartTime = start
	return nil
}

type fakeClientRepo struct {
	recorded []string
}

func (r *fakeClientRepo) GetOrCreate(_ context.Context, phone string) (*domain.Client, error) {
	return &domain.Client{Phone: phone}, nil
}

func (r *fakeClientRepo) RecordBooking(_ context.Context, phone string, _ float64) error {
	r.recorded = append(r.recorded, phone)
	return nil
}

type fakeValidator struct {
	result  *scheduler.ValidationResult
	deposit float64
}

func (v *fakeValidator) Validate(_ context.Context, _, _, _ string) (*scheduler.ValidationResult, error) {
	return v.result, nil
}

func (v *fakeValidator) Deposit(_ string, _ float64) float64 {
	return v.deposit
}

type fakePayments struct {
	enabled  bool
	refunded []float64
}

func (p *fakePayments) Enabled() bool {
	return p.enabled
}

func (p *fakePayments) Refund(_ string, amount float64) error {
	p.refunded = append(p.refunded, amount)
	return nil
}

type passthroughTx struct{}

func (t *passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (l *nopLogger) Info(string, ...interface{})  {}
func (l *nopLogger) Warn(string, ...interface{})  {}
func (l *nopLogger) Error(string, ...interface{}) {}

func acceptedResult(when time.Time, svc domain.ServiceInfo) *scheduler.ValidationResult {
	return &scheduler.ValidationResult{OK: true, Service: svc, When: when}
}

func newTestService(repo *fakeApptRepo, clients *fakeClientRepo, validator *fakeValidator, payments *fakePayments, now time.Time) *Service {
	svc := NewService(repo, clients, validator, payments, &passthroughTx{}, &domain.BusinessConfig{}, &nopLogger{})
	svc.timeProvider = &fixedClock{now: now}
	return svc
}

func TestCreateWithoutDeposit(t *testing.T) {
	repo := newFakeApptRepo()
	clients := &fakeClientRepo{}
	when := time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC)
	validator := &fakeValidator{
		result:  acceptedResult(when, domain.ServiceInfo{Key: "swedish", Name: "Swedish Massage", DurationMinutes: 60, Price: 80}),
		deposit: 0,
	}
	svc := newTestService(repo, clients, validator, &fakePayments{}, when.Add(-24*time.Hour))

	appt, result, err := svc.Create(context.Background(), "555-123-4567", "swedish", "2025-06-03", "14:00", "")

	require.NoError(t, err)
	require.True(t, result.OK)
	assert.Equal(t, "5551234567", appt.ClientPhone)
	assert.Equal(t, domain.StatusConfirmed, appt.Status)
	assert.Equal(t, domain.PaymentFullyPaid, appt.PaymentStatus)
	assert.Equal(t, types.TimeString("14:00"), appt.StartTime)
	assert.Equal(t, []string{"5551234567"}, clients.recorded)
}

func TestCreateWithDepositStaysPending(t *testing.T) {
	repo := newFakeApptRepo()
	when := time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC)
	validator := &fakeValidator{
		result:  acceptedResult(when, domain.ServiceInfo{Key: "hot_stone", Name: "Hot Stone Therapy", DurationMinutes: 75, Price: 120}),
		deposit: 30,
	}
	svc := newTestService(repo, &fakeClientRepo{}, validator, &fakePayments{}, when.Add(-24*time.Hour))

	appt, _, err := svc.Create(context.Background(), "5551234567", "hot_stone", "2025-06-03", "14:00", "")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, appt.Status)
	assert.Equal(t, domain.PaymentPending, appt.PaymentStatus)
	assert.Equal(t, 30.0, appt.DepositAmount)
}

func TestCreateRejectedSlot(t *testing.T) {
	repo := newFakeApptRepo()
	validator := &fakeValidator{
		result: &scheduler.ValidationResult{
			OK:      false,
			Reason:  scheduler.ReasonSlotUnavailable,
			Message: "that time is taken",
		},
	}
	svc := newTestService(repo, &fakeClientRepo{}, validator, &fakePayments{}, time.Now())

	appt, result, err := svc.Create(context.Background(), "5551234567", "swedish", "2025-06-03", "14:00", "")

	assert.ErrorIs(t, err, ErrSlotRejected)
	assert.Nil(t, appt)
	require.NotNil(t, result)
	assert.Equal(t, scheduler.ReasonSlotUnavailable, result.Reason)
	assert.Empty(t, repo.created)
}

func TestRefundAmountTiers(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	svc := newTestService(newFakeApptRepo(), &fakeClientRepo{}, &fakeValidator{}, &fakePayments{}, now)

	appt := func(hoursAhead int) *domain.Appointment {
		start := now.Add(time.Duration(hoursAhead) * time.Hour)
		return &domain.Appointment{
			Date:          time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
			StartTime:     types.NewTimeString(start),
			DepositAmount: 30,
		}
	}

	assert.Equal(t, 30.0, svc.RefundAmount(appt(48)))
	assert.Equal(t, 30.0, svc.RefundAmount(appt(24)))
	assert.Equal(t, 15.0, svc.RefundAmount(appt(13)))
	assert.Equal(t, 0.0, svc.RefundAmount(appt(2)))
}

func TestCancelWithRefund(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	repo := newFakeApptRepo()
	payments := &fakePayments{enabled: true}
	svc := newTestService(repo, &fakeClientRepo{}, &fakeValidator{}, payments, now)

	ref := "cs_test_123"
	repo.byID["appt-1"] = &domain.Appointment{
		ID:            "appt-1",
		Status:        domain.StatusConfirmed,
		Date:          time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
		StartTime:     "14:00",
		DepositAmount: 30,
		PaymentRef:    &ref,
	}

	refund, err := svc.Cancel(context.Background(), "appt-1")

	require.NoError(t, err)
	assert.Equal(t, 30.0, refund)
	assert.Equal(t, []string{"appt-1"}, repo.cancelled)
	assert.Equal(t, []float64{30}, payments.refunded)
}

func TestCancelLateNoRefund(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	repo := newFakeApptRepo()
	payments := &fakePayments{enabled: true}
	svc := newTestService(repo, &fakeClientRepo{}, &fakeValidator{}, payments, now)

	ref := "cs_test_123"
	repo.byID["appt-1"] = &domain.Appointment{
		ID:            "appt-1",
		Status:        domain.StatusConfirmed,
		Date:          time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime:     "13:00",
		DepositAmount: 30,
		PaymentRef:    &ref,
	}

	refund, err := svc.Cancel(context.Background(), "appt-1")

	require.NoError(t, err)
	assert.Equal(t, 0.0, refund)
	assert.Empty(t, payments.refunded)
}

func TestCancelTerminalStatus(t *testing.T) {
	repo := newFakeApptRepo()
	svc := newTestService(repo, &fakeClientRepo{}, &fakeValidator{}, &fakePayments{}, time.Now())

	repo.byID["appt-1"] = &domain.Appointment{ID: "appt-1", Status: domain.StatusCompleted}

	_, err := svc.Cancel(context.Background(), "appt-1")
	assert.ErrorIs(t, err, ErrCannotCancel)

	_, err = svc.Cancel(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestConfirmDeposit(t *testing.T) {
	repo := newFakeApptRepo()
	svc := newTestService(repo, &fakeClientRepo{}, &fakeValidator{}, &fakePayments{}, time.Now())

	repo.byID["appt-1"] = &domain.Appointment{
		ID:            "appt-1",
		ClientPhone:   "5551234567",
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
	}

	appt, err := svc.ConfirmDeposit(context.Background(), "appt-1", "cs_test_123")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, appt.Status)
	assert.Equal(t, domain.PaymentDepositPaid, appt.PaymentStatus)
	assert.Equal(t, "5551234567", appt.ClientPhone)
}

func TestRescheduleValidatesNewSlot(t *testing.T) {
	repo := newFakeApptRepo()
	when := time.Date(2025, 6, 5, 15, 0, 0, 0, time.UTC)
	validator := &fakeValidator{
		result: acceptedResult(when, domain.ServiceInfo{Key: "swedish", DurationMinutes: 60, Price: 80}),
	}
	svc := newTestService(repo, &fakeClientRepo{}, validator, &fakePayments{}, when.Add(-48*time.Hour))

	repo.byID["appt-1"] = &domain.Appointment{
		ID:         "appt-1",
		ServiceKey: "swedish",
		Status:     domain.StatusConfirmed,
		Date:       time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		StartTime:  "14:00",
	}

	result, err := svc.Reschedule(context.Background(), "appt-1", "2025-06-05", "15:00")

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, types.TimeString("15:00"), repo.byID["appt-1"].StartTime)
	assert.Equal(t, time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), repo.byID["appt-1"].Date)
}

func TestRescheduleTerminalStatus(t *testing.T) {
	repo := newFakeApptRepo()
	svc := newTestService(repo, &fakeClientRepo{}, &fakeValidator{}, &fakePayments{}, time.Now())

	repo.byID["appt-1"] = &domain.Appointment{ID: "appt-1", Status: domain.StatusCancelled}

	_, err := svc.Reschedule(context.Background(), "appt-1", "2025-06-05", "15:00")
	assert.ErrorIs(t, err, ErrCannotReschedule)

	_, err = svc.Reschedule(context.Background(), "missing", "2025-06-05", "15:00")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
