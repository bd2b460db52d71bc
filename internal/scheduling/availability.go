package scheduling

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ErrInvalidQuery возвращается для некорректных параметров расчета
var ErrInvalidQuery = errors.New("scheduling: invalid slot query")

// SlotQuery параметры расчета свободных слотов
type SlotQuery struct {
	Date            time.Time // календарная дата в поясе салона
	Selector        domain.StaffSelector
	DurationMinutes int
	StepMinutes     int
	BufferMinutes   int
	Now             time.Time
	Location        *time.Location
}

// ComputeAvailableSlots возвращает отсортированный список уникальных начал "HH:MM",
// в которые хотя бы один подходящий мастер свободен на всю длительность.
//
// Каждое рабочее окно обрабатывается независимо: слоты идут с шагом StepMinutes
// от начала смены, пропускаются пересечения с перерывом и с занятыми интервалами
// того же мастера. Для сегодняшней даты отбрасываются начала раньше now + buffer.
func ComputeAvailableSlots(q SlotQuery, windows []domain.WorkingWindow, busy []domain.BusyInterval) ([]string, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	step := q.StepMinutes
	if step <= 0 {
		step = domain.DefaultSlotStepMinutes
	}

	today := CivilDate(q.Now, q.Location)
	date := civil(q.Date)
	if date.Before(today) {
		return []string{}, nil
	}

	minStart := -1
	if date.Equal(today) {
		minStart = MinuteOfDay(q.Now, date, q.Location) + q.BufferMinutes
	}

	busyByStaff := busyMinutesByStaff(busy, date, q.Location)
	weekday := int(date.Weekday())

	starts := make(map[int]struct{})
	for i := range windows {
		w := &windows[i]
		if w.DayOfWeek != weekday || !w.IsWorking || !w.IsValid() {
			continue
		}
		if !q.Selector.Matches(w.StaffID) {
			continue
		}

		for t := w.StartMinute; t+q.DurationMinutes <= w.EndMinute; t += step {
			if t < minStart {
				continue
			}
			end := t + q.DurationMinutes
			if w.HasBreak() && IntervalsOverlap(t, end, *w.BreakStart, *w.BreakEnd) {
				continue
			}
			if overlapsAny(t, end, busyByStaff[w.StaffID]) {
				continue
			}
			starts[t] = struct{}{}
		}
	}

	sorted := make([]int, 0, len(starts))
	for t := range starts {
		sorted = append(sorted, t)
	}
	sort.Ints(sorted)

	result := make([]string, 0, len(sorted))
	for _, t := range sorted {
		formatted, err := MinutesToTime(t)
		if err != nil {
			return nil, err
		}
		result = append(result, formatted)
	}

	return result, nil
}

func validateQuery(q SlotQuery) error {
	if q.Location == nil {
		return fmt.Errorf("%w: location is required", ErrInvalidQuery)
	}
	if q.DurationMinutes <= 0 || q.DurationMinutes > domain.MinutesPerDay {
		return fmt.Errorf("%w: duration must be in 1..1440, got %d", ErrInvalidQuery, q.DurationMinutes)
	}
	if q.BufferMinutes < 0 {
		return fmt.Errorf("%w: buffer must not be negative", ErrInvalidQuery)
	}
	if q.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidQuery)
	}
	return nil
}

type minuteInterval struct {
	start int
	end   int
}

// busyMinutesByStaff переводит занятые интервалы в минуты относительно даты
func busyMinutesByStaff(busy []domain.BusyInterval, date time.Time, loc *time.Location) map[string][]minuteInterval {
	result := make(map[string][]minuteInterval)
	for _, b := range busy {
		if !b.End.After(b.Start) {
			continue
		}
		end := MinuteOfDay(b.End, date, loc)
		// неполная минута в конце занятого интервала занимает минуту целиком
		if !b.End.Truncate(time.Minute).Equal(b.End) {
			end++
		}
		result[b.StaffID] = append(result[b.StaffID], minuteInterval{
			start: MinuteOfDay(b.Start, date, loc),
			end:   end,
		})
	}
	return result
}

func overlapsAny(start, end int, intervals []minuteInterval) bool {
	for _, iv := range intervals {
		if IntervalsOverlap(start, end, iv.start, iv.end) {
			return true
		}
	}
	return false
}
