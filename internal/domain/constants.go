package domain

// Default configuration values
const (
	DefaultSlotDurationMinutes = 30
	DefaultMinAdvanceHours     = 2
	DefaultMaxAdvanceDays      = 30
	DefaultHorizonDays         = 14
	DefaultAlternativeCount    = 3
)

// MinServiceMinutes минимальная длина сеанса, на которую должен быть рассчитан слот.
// Фиксированная политика движка: слот считается валидным, только если от его начала
// до закрытия остается не меньше часа, независимо от каталога услуг.
const MinServiceMinutes = 60

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Refund policy tiers (hours before the appointment)
const (
	FullRefundHours = 24
	HalfRefundHours = 12
)
