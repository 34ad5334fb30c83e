package scheduler

import "errors"

// ErrInternal возвращается при сбоях хранилища и прочих неожиданных ошибках.
// Отличается от бизнес-отказов: сбой хранилища никогда не должен выглядеть
// для вызывающего как "свободных слотов нет".
var ErrInternal = errors.New("scheduler: internal error")

// RejectReason типизированная причина отказа в бронировании
type RejectReason string

const (
	ReasonUnknownService       RejectReason = "unknown_service"
	ReasonMalformedDateTime    RejectReason = "malformed_datetime"
	ReasonClosedDay            RejectReason = "closed_day"
	ReasonOutsideBookingWindow RejectReason = "outside_booking_window"
	ReasonOutsideBusinessHours RejectReason = "outside_business_hours"
	ReasonSlotUnavailable      RejectReason = "slot_unavailable"
)
