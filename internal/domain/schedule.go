package domain

import (
	"sort"
	"time"

	"github.com/serenity-spa/booking-agent/pkg/types"
)

// DayHours represents operating hours for a single weekday.
// A closed day has Closed=true and zero Open/Close times.
type DayHours struct {
	Closed bool
	Open   types.TimeString
	Close  types.TimeString
}

// WeekSchedule holds operating hours for every weekday
type WeekSchedule struct {
	Monday    DayHours
	Tuesday   DayHours
	Wednesday DayHours
	Thursday  DayHours
	Friday    DayHours
	Saturday  DayHours
	Sunday    DayHours
}

// ForWeekday returns the operating hours for the given weekday
func (w WeekSchedule) ForWeekday(d time.Weekday) DayHours {
	switch d {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return DayHours{Closed: true}
	}
}

// ServiceInfo describes one entry of the service catalog
type ServiceInfo struct {
	Key             string
	Name            string
	DurationMinutes int
	Price           float64
}

// DepositType способ расчета депозита
type DepositType string

const (
	DepositTypeFixed      DepositType = "fixed"
	DepositTypePercentage DepositType = "percentage"
)

// BookingPolicy статическая политика бронирования, загружается один раз на старте
type BookingPolicy struct {
	SlotDurationMinutes     int
	MinAdvanceHours         int
	MaxAdvanceDays          int
	DepositEnabled          bool
	DepositType             DepositType
	DepositFixedAmount      float64
	DepositPercentage       float64
	DepositRequiredServices []string
}

// DepositRequiredFor reports whether the service key requires a deposit
func (p BookingPolicy) DepositRequiredFor(serviceKey string) bool {
	for _, key := range p.DepositRequiredServices {
		if key == serviceKey {
			return true
		}
	}
	return false
}

// BusinessConfig неизменяемая конфигурация студии: часы работы, каталог услуг, политика.
// Передается по ссылке во все компоненты; скрытого глобального состояния нет.
type BusinessConfig struct {
	Name     string
	Hours    WeekSchedule
	Services map[string]ServiceInfo
	Policy   BookingPolicy
}

// Service looks up a catalog entry by key
func (c *BusinessConfig) Service(key string) (ServiceInfo, bool) {
	svc, ok := c.Services[key]
	return svc, ok
}

// ServiceList returns catalog entries in stable key order
func (c *BusinessConfig) ServiceList() []ServiceInfo {
	keys := make([]string, 0, len(c.Services))
	for key := range c.Services {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	services := make([]ServiceInfo, 0, len(keys))
	for _, key := range keys {
		services = append(services, c.Services[key])
	}
	return services
}
