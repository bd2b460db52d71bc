package domain

import (
	"strings"
	"time"
)

// WorkingWindow рабочая смена сотрудника в конкретный день недели
// Минуты отсчитываются от полуночи по времени салона
type WorkingWindow struct {
	StaffID     string
	StaffName   string
	DayOfWeek   int // 0 = воскресенье ... 6 = суббота
	StartMinute int
	EndMinute   int
	BreakStart  *int
	BreakEnd    *int
	IsWorking   bool
}

// HasBreak returns true if the window has a complete break interval
func (w *WorkingWindow) HasBreak() bool {
	return w.BreakStart != nil && w.BreakEnd != nil
}

// IsValid проверяет инварианты окна: 0 <= start < end <= 1440, перерыв внутри смены
func (w *WorkingWindow) IsValid() bool {
	if w.StartMinute < 0 || w.StartMinute >= w.EndMinute || w.EndMinute > MinutesPerDay {
		return false
	}
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return false
	}
	if w.HasBreak() {
		if *w.BreakStart >= *w.BreakEnd || *w.BreakStart < w.StartMinute || *w.BreakEnd > w.EndMinute {
			return false
		}
	}
	return true
}

// BusyInterval занятый интервал сотрудника (активное бронирование)
type BusyInterval struct {
	StaffID string
	Start   time.Time
	End     time.Time
}

// StaffSelector выбор мастера клиентом: конкретный сотрудник или любой
type StaffSelector struct {
	StaffID string
}

// AnyStaff селектор "любой мастер"
var AnyStaff = StaffSelector{}

// ParseStaffSelector разбирает значение "any" или ID сотрудника
func ParseStaffSelector(value string) StaffSelector {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, StaffSelectorAny) {
		return AnyStaff
	}
	return StaffSelector{StaffID: value}
}

// IsAny returns true if any staff member is acceptable
func (s StaffSelector) IsAny() bool {
	return s.StaffID == ""
}

// Matches returns true if the staff member satisfies the selector
func (s StaffSelector) Matches(staffID string) bool {
	return s.IsAny() || s.StaffID == staffID
}

func (s StaffSelector) String() string {
	if s.IsAny() {
		return StaffSelectorAny
	}
	return s.StaffID
}

// Staff сотрудник салона
type Staff struct {
	ID         string
	BusinessID string
	FullName   string
	Role       string
	AvatarURL  *string
	IsActive   bool
}
