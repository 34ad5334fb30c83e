package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serenity-spa/booking-agent/internal/domain"
	"github.com/serenity-spa/booking-agent/pkg/types"
)

// 2025-06-02 - понедельник
var (
	monday  = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	tuesday = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	sunday  = time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type fakeStore struct {
	appts map[string][]*domain.Appointment
	err   error
}

func (s *fakeStore) AppointmentsOn(_ context.Context, date time.Time) ([]*domain.Appointment, error) {
	if s.err != nil {
		return nil, s.err
	}
	active := make([]*domain.Appointment, 0)
	for _, a := range s.appts[date.Format(domain.DateFormat)] {
		if a.IsActive() {
			active = append(active, a)
		}
	}
	return active, nil
}

func (s *fakeStore) Overlaps(ctx context.Context, date time.Time, start types.TimeString, durationMinutes int) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	startMin, err := start.Minutes()
	if err != nil {
		return false, err
	}
	appts, err := s.AppointmentsOn(ctx, date)
	if err != nil {
		return false, err
	}
	for _, a := range appts {
		aStart, err := a.StartTime.Minutes()
		if err != nil {
			return false, err
		}
		if intervalsOverlap(startMin, startMin+durationMinutes, aStart, aStart+a.DurationMinutes) {
			return true, nil
		}
	}
	return false, nil
}

func testConfig() *domain.BusinessConfig {
	weekday := domain.DayHours{Open: "09:00", Close: "20:00"}
	return &domain.BusinessConfig{
		Name: "Serenity Massage Therapy",
		Hours: domain.WeekSchedule{
			Monday:    weekday,
			Tuesday:   weekday,
			Wednesday: weekday,
			Thursday:  weekday,
			Friday:    weekday,
			Saturday:  domain.DayHours{Open: "10:00", Close: "18:00"},
			Sunday:    domain.DayHours{Closed: true},
		},
		Services: map[string]domain.ServiceInfo{
			"swedish":   {Key: "swedish", Name: "Swedish Massage", DurationMinutes: 60, Price: 80},
			"hot_stone": {Key: "hot_stone", Name: "Hot Stone Therapy", DurationMinutes: 75, Price: 120},
			"couples":   {Key: "couples", Name: "Couples Massage", DurationMinutes: 90, Price: 200},
		},
		Policy: domain.BookingPolicy{
			SlotDurationMinutes:     30,
			MinAdvanceHours:         2,
			MaxAdvanceDays:          30,
			DepositEnabled:          true,
			DepositType:             domain.DepositTypePercentage,
			DepositPercentage:       0.25,
			DepositRequiredServices: []string{"hot_stone", "couples"},
		},
	}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestService(store *fakeStore, now time.Time) *Service {
	svc := NewService(store, testConfig(), nopLogger{})
	svc.timeProvider = &fixedClock{now: now}
	return svc
}

func appt(date time.Time, start types.TimeString, duration int, status domain.AppointmentStatus) *domain.Appointment {
	return &domain.Appointment{
		ID:              "a-" + string(start),
		ClientPhone:     "15550001111",
		ServiceKey:      "swedish",
		Date:            date,
		StartTime:       start,
		DurationMinutes: duration,
		Status:          status,
	}
}

func TestFreeSlots_BusinessDayBounds(t *testing.T) {
	store := &fakeStore{appts: map[string][]*domain.Appointment{}}
	svc := newTestService(store, monday.Add(8*time.Hour))

	slots, err := svc.FreeSlots(context.Background(), monday)
	require.NoError(t, err)

	require.NotEmpty(t, slots)
	// Первый слот - открытие, последний должен вмещать минимальный часовой сеанс
	assert.Equal(t, types.TimeString("09:00"), slots[0])
	assert.Equal(t, types.TimeString("19:00"), slots[len(slots)-1])
	// 09:00..19:00 с шагом 30 минут
	assert.Len(t, slots, 21)
}

func TestFreeSlots_ExcludesBookedSlots(t *testing.T) {
	store := &fakeStore{appts: map[string][]*domain.Appointment{
		monday.Format(domain.DateFormat): {
			appt(monday, "10:00", 60, domain.StatusConfirmed),
		},
	}}
	svc := newTestService(store, monday.Add(8*time.Hour))

	slots, err := svc.FreeSlots(context.Background(), monday)
	require.NoError(t, err)

	assert.NotContains(t, slots, types.TimeString("10:00"))
	assert.NotContains(t, slots, types.TimeString("10:30"))
	assert.Contains(t, slots, types.TimeString("09:00"))
	assert.Contains(t, slots, types.TimeString("09:30"))
	assert.Contains(t, slots, types.TimeString("11:00"))
}

func TestFreeSlots_CancelledAppointmentsIgnored(t *testing.T) {
	store := &fakeStore{appts: map[string][]*domain.Appointment{
		monday.Format(domain.DateFormat): {
			appt(monday, "10:00", 60, domain.StatusCancelled),
		},
	}}
	svc := newTestService(store, monday.Add(8*time.Hour))

	slots, err := svc.FreeSlots(context.Background(), monday)
	require.NoError(t, err)
	assert.Contains(t, slots, types.TimeString("10:00"))
	assert.Contains(t, slots, types.TimeString("10:30"))
}

func TestFreeSlots_ClosedDay(t *testing.T) {
	store := &fakeStore{appts: map[string][]*domain.Appointment{}}
	svc := newTestService(store, monday.Add(8*time.Hour))

	slots, err := svc.FreeSlots(context.Background(), sunday)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestFreeSlots_Idempotent(t *testing.T) {
	store := &fakeStore{appts: map[string][]*domain.Appointment{
		monday.Format(domain.DateFormat): {
			appt(monday, "12:00", 90, domain.StatusPending),
		},
	}}
	svc := newTestService(store, monday.Add(8*time.Hour))

	first, err := svc.FreeSlots(context.Background(), monday)
	require.NoError(t, err)
	second, err := svc.FreeSlots(context.Background(), monday)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFreeSlots_StoreFailureIsNotEmptyDay(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	svc := newTestService(store, monday.Add(8*time.Hour))

	_, err := svc.FreeSlots(context.Background(), monday)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestAvailableDates(t *testing.T) {
	// Вторник полностью занят одной длинной записью
	store := &fakeStore{appts: map[string][]*domain.Appointment{
		tuesday.Format(domain.DateFormat): {
			appt(tuesday, "09:00", 11*60, domain.StatusConfirmed),
		},
	}}
	svc := newTestService(store, monday.Add(8*time.Hour))

	dates, err := svc.AvailableDates(context.Background(), 7)
	require.NoError(t, err)

	// Сегодня (понедельник) исключён, вторник занят, воскресенье закрыто
	assert.NotContains(t, dates, monday)
	assert.NotContains(t, dates, tuesday)
	assert.NotContains(t, dates, sunday)
	// ср, чт, пт, сб, пн следующей недели
	require.Len(t, dates, 5)
	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i].After(dates[i-1]), "dates must be chronological")
	}
}

func TestValidate_CheckOrder(t *testing.T) {
	store := &fakeStore{appts: map[string][]*domain.Appointment{}}
	svc := newTestService(store, monday.Add(8*time.Hour))
	ctx := context.Background()

	tests := []struct {
		name       string
		date       string
		timeOfDay  string
		serviceKey string
		reason     RejectReason
	}{
		// Неизвестная услуга репортится раньше кривой даты
		{name: "unknown service wins over bad date", date: "not-a-date", timeOfDay: "99:99", serviceKey: "facial", reason: ReasonUnknownService},
		{name: "malformed date", date: "2025-13-40", timeOfDay: "10:00", serviceKey: "swedish", reason: ReasonMalformedDateTime},
		{name: "malformed time", date: "2025-06-03", timeOfDay: "10am", serviceKey: "swedish", reason: ReasonMalformedDateTime},
		{name: "closed day", date: "2025-06-08", timeOfDay: "10:00", serviceKey: "swedish", reason: ReasonClosedDay},
		{name: "before opening", date: "2025-06-03", timeOfDay: "08:00", serviceKey: "swedish", reason: ReasonOutsideBusinessHours},
		{name: "at closing", date: "2025-06-03", timeOfDay: "20:00", serviceKey: "swedish", reason: ReasonOutsideBusinessHours},
		{name: "too far in future", date: "2025-08-01", timeOfDay: "10:00", serviceKey: "swedish", reason: ReasonOutsideBookingWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Validate(ctx, tt.date, tt.timeOfDay, tt.serviceKey)
			require.NoError(t, err)
			require.False(t, result.OK)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}
}

func TestValidate_BookingWindowBoundary(t *testing.T) {
	store := &fakeStore{appts: map[string][]*domain.Appointment{}}
	// Сейчас понедельник 08:00, min_advance = 2 часа
	svc := newTestService(store, monday.Add(8*time.Hour))
	ctx := context.Background()

	// Ровно now+2h - принимается (граница включительно)
	result, err := svc.Validate(ctx, "2025-06-02", "10:00", "swedish")
	require.NoError(t, err)
	assert.True(t, result.OK)

	// На минуту раньше - отказ
	result, err = svc.Validate(ctx, "2025-06-02", "09:59", "swedish")
	require.NoError(t, err)
	require.False(t, result.OK)
	assert.Equal(t, ReasonOutsideBookingWindow, result.Reason)
}

func TestValidate_BookingWindowNonUTCClock(t *testing.T) {
	store := &fakeStore{appts: map[string][]*domain.Appointment{}}
	// Часы сервиса идут в зоне UTC+3: понедельник 08:00 локального времени.
	// Дата запроса должна интерпретироваться в той же зоне, иначе запрос
	// всего за полтора часа до сеанса проходит окно min_advance=2h.
	zone := time.FixedZone("UTC+3", 3*60*60)
	svc := newTestService(store, time.Date(2025, 6, 2, 8, 0, 0, 0, zone))
	ctx := context.Background()

	// 09:30 локального времени - только 1.5 часа от now, отказ
	result, err := svc.Validate(ctx, "2025-06-02", "09:30", "swedish")
	require.NoError(t, err)
	require.False(t, result.OK)
	assert.Equal(t, ReasonOutsideBookingWindow, result.Reason)

	// Ровно now+2h - принимается, граница включительно и в этой зоне
	result, err = svc.Validate(ctx, "2025-06-02", "10:00", "swedish")
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestValidate_SlotUnavailableWithAlternatives(t *testing.T) {
	// Сценарий из спецификации поведения: понедельник 09:00-20:00,
	// существующая запись 10:00-11:00
	store := &fakeStore{appts: map[string][]*domain.Appointment{
		monday.Format(domain.DateFormat): {
			appt(monday, "10:00", 60, domain.StatusConfirmed),
		},
	}}
	svc := newTestService(store, monday.Add(7*time.Hour))
	ctx := context.Background()

	result, err := svc.Validate(ctx, "2025-06-02", "10:00", "swedish")
	require.NoError(t, err)
	require.False(t, result.OK)
	assert.Equal(t, ReasonSlotUnavailable, result.Reason)

	// Расстояния: 09:30 -> 30, 09:00 -> 60, 11:00 -> 60.
	// При равном расстоянии порядок хронологический (стабильная сортировка).
	assert.Equal(t, []types.TimeString{"09:30", "09:00", "11:00"}, result.Alternatives)
}

func TestValidate_TouchingIntervalsDoNotOverlap(t *testing.T) {
	store := &fakeStore{appts: map[string][]*domain.Appointment{
		monday.Format(domain.DateFormat): {
			appt(monday, "10:00", 60, domain.StatusConfirmed),
		},
	}}
	svc := newTestService(store, monday.Add(7*time.Hour))
	ctx := context.Background()

	// Запись заканчивается в 11:00 - бронь с 11:00 допустима
	result, err := svc.Validate(ctx, "2025-06-02", "11:00", "swedish")
	require.NoError(t, err)
	assert.True(t, result.OK)

	// Час до начала существующей записи тоже допустим
	result, err = svc.Validate(ctx, "2025-06-02", "09:00", "swedish")
	require.NoError(t, err)
	assert.True(t, result.OK)
}

func TestValidate_StoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	svc := newTestService(store, monday.Add(8*time.Hour))

	_, err := svc.Validate(context.Background(), "2025-06-02", "12:00", "swedish")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestSuggestAlternatives_ExactTimeFree(t *testing.T) {
	store := &fakeStore{appts: map[string][]*domain.Appointment{}}
	svc := newTestService(store, monday.Add(8*time.Hour))

	alternatives, err := svc.SuggestAlternatives(context.Background(), monday, "12:00", 3)
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"12:00"}, alternatives)
}
