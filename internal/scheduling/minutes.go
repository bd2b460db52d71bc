package scheduling

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrParse возвращается для строки времени не в формате HH:MM
	ErrParse = errors.New("scheduling: malformed time of day")

	// ErrOutOfRange возвращается для минуты вне диапазона [0, 1440)
	ErrOutOfRange = errors.New("scheduling: minute of day out of range")
)

// TimeToMinutes переводит "HH:MM" в минуты от полуночи
// "24:00" допускается как конец суток (1440)
func TimeToMinutes(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 || len(parts[1]) != 2 ||
		!isDigits(parts[0]) || !isDigits(parts[1]) {
		return 0, fmt.Errorf("%w: %q", ErrParse, value)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrParse, value)
	}

	total := hours*60 + minutes
	if total > domain.MinutesPerDay {
		return 0, fmt.Errorf("%w: %q", ErrParse, value)
	}

	return total, nil
}

// isDigits только ASCII цифры, без знака
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MinutesToTime форматирует минуты от полуночи как "HH:MM"
func MinutesToTime(mins int) (string, error) {
	if mins < 0 || mins >= domain.MinutesPerDay {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, mins)
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60), nil
}

// IntervalsOverlap пересечение полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd)
// Соприкасающиеся интервалы не пересекаются
func IntervalsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// CivilDate календарная дата момента t в поясе loc (полночь UTC)
func CivilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MinuteOfDay смещение момента t в минутах относительно полуночи даты date
// по настенным часам loc. Предыдущий день дает отрицательное значение,
// следующий больше или равное 1440.
func MinuteOfDay(t time.Time, date time.Time, loc *time.Location) int {
	local := t.In(loc)
	dayDiff := int(CivilDate(t, loc).Sub(civil(date)) / (24 * time.Hour))
	return dayDiff*domain.MinutesPerDay + local.Hour()*60 + local.Minute()
}

// StartOfDay момент начала минуты minute даты date в поясе loc
func StartOfDay(date time.Time, minute int, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, minute/60, minute%60, 0, 0, loc)
}

func civil(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
