package get_availability

// Request запрос доступности.
// Date в формате YYYY-MM-DD; пустая дата означает запрос списка доступных дат.
type Request struct {
	Date        string
	HorizonDays int
}

// Response свободные слоты на дату или доступные даты на горизонте
type Response struct {
	Date           string
	Open           bool
	Slots          []string
	AvailableDates []string
}
