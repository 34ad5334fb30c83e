package bookings

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrCannotCancel возвращается, когда запись не может быть отменена
	ErrCannotCancel = errors.New("appointment cannot be cancelled")

	// ErrCannotReschedule возвращается, когда запись не может быть перенесена
	ErrCannotReschedule = errors.New("appointment cannot be rescheduled")

	// ErrSlotRejected возвращается, когда запрошенный слот не прошел валидацию
	ErrSlotRejected = errors.New("requested slot rejected")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
