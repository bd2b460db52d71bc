package domain

// BookingPolicy параметры генерации слотов салона
// Если записи для салона нет, используются значения из конфигурации сервиса
type BookingPolicy struct {
	BusinessID       string
	SlotStepMinutes  int
	MinNoticeMinutes int
	IsDefault        bool
}

// Normalize подставляет значения по умолчанию вместо некорректных
func (p BookingPolicy) Normalize() BookingPolicy {
	if p.SlotStepMinutes < MinSlotStepMinutes || p.SlotStepMinutes > MaxSlotStepMinutes {
		p.SlotStepMinutes = DefaultSlotStepMinutes
	}
	if p.MinNoticeMinutes < 0 || p.MinNoticeMinutes > MaxMinNoticeMinutes {
		p.MinNoticeMinutes = DefaultMinNoticeMinutes
	}
	return p
}
