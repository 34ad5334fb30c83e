package scheduler

import (
	"sort"

	"github.com/serenity-spa/booking-agent/internal/domain"
	"github.com/serenity-spa/booking-agent/pkg/types"
)

// freeSlots генерирует свободные слоты для дня с часами работы hours.
// Слот t = open + k*slotDuration попадает в результат, если:
//   - t + MinServiceMinutes <= close (слот должен вмещать минимальный сеанс)
//   - t не покрыт интервалом [start, start+duration) ни одной активной записи
//
// Результат отсортирован по возрастанию и детерминирован.
func freeSlots(hours domain.DayHours, slotDuration int, appts []*domain.Appointment) ([]types.TimeString, error) {
	openMin, err := hours.Open.Minutes()
	if err != nil {
		return nil, err
	}
	closeMin, err := hours.Close.Minutes()
	if err != nil {
		return nil, err
	}

	intervals, err := activeIntervals(appts)
	if err != nil {
		return nil, err
	}

	slots := make([]types.TimeString, 0)
	for t := openMin; t+domain.MinServiceMinutes <= closeMin; t += slotDuration {
		if coveredByAny(t, intervals) {
			continue
		}
		slot, err := types.FromMinutes(t)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

// interval полуоткрытый интервал занятости [start, end) в минутах от начала суток
type interval struct {
	start int
	end   int
}

// activeIntervals собирает интервалы занятости неотмененных записей
func activeIntervals(appts []*domain.Appointment) ([]interval, error) {
	intervals := make([]interval, 0, len(appts))
	for _, appt := range appts {
		// Отмененные записи не занимают слоты
		if !appt.IsActive() {
			continue
		}
		start, err := appt.StartTime.Minutes()
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, interval{start: start, end: start + appt.DurationMinutes})
	}
	return intervals, nil
}

// coveredByAny проверяет, лежит ли начало слота внутри чьего-либо интервала занятости
func coveredByAny(slotStart int, intervals []interval) bool {
	for _, iv := range intervals {
		if slotStart >= iv.start && slotStart < iv.end {
			return true
		}
	}
	return false
}

// intervalsOverlap проверяет пересечение полуоткрытых интервалов [a,b) и [c,d).
// Граничащие интервалы (b == c) НЕ пересекаются.
func intervalsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// nearestSlots возвращает до count свободных слотов, отсортированных по модулю
// расстояния в минутах от запрошенного времени. При равном расстоянии порядок
// хронологический (стабильная сортировка по отсортированному входу).
func nearestSlots(slots []types.TimeString, requested types.TimeString, count int) ([]types.TimeString, error) {
	requestedMin, err := requested.Minutes()
	if err != nil {
		return nil, err
	}

	// Если запрошенное время само свободно, оно единственное предложение
	for _, slot := range slots {
		if slot == requested {
			return []types.TimeString{requested}, nil
		}
	}

	distances := make(map[types.TimeString]int, len(slots))
	for _, slot := range slots {
		m, err := slot.Minutes()
		if err != nil {
			return nil, err
		}
		d := m - requestedMin
		if d < 0 {
			d = -d
		}
		distances[slot] = d
	}

	sorted := make([]types.TimeString, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return distances[sorted[i]] < distances[sorted[j]]
	})

	if count > 0 && len(sorted) > count {
		sorted = sorted[:count]
	}
	return sorted, nil
}
