package model

import "time"

// Recurrence еженедельное повторение слота
type Recurrence struct {
	DayOfWeek *time.Weekday `json:"day_of_week"`
	EndDate   *time.Time    `json:"end_date"` // nil = до горизонта планирования
}

type AvailabilitySlot struct {
	ID                  int64         `json:"id"`
	TutorID             int64         `json:"tutor_id"`
	StartTime           time.Time     `json:"start_time"`
	EndTime             time.Time     `json:"end_time"`
	IsRecurring         bool          `json:"is_recurring"`
	RecurrenceDayOfWeek *time.Weekday `json:"recurrence_day_of_week"`
	RecurrenceEndDate   *time.Time    `json:"recurrence_end_date"`
	IsBooked            bool          `json:"is_booked"`
	CreatedAt           time.Time     `json:"created_at"`
}

// Window возвращает интервал слота
func (s *AvailabilitySlot) Window() Window {
	return Window{Start: s.StartTime, End: s.EndTime}
}

// SlotStatus фильтр по занятости слота; в БД не хранится
type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "available"
	SlotStatusBooked    SlotStatus = "booked"
)

// ParseSlotStatus распознаёт статус слота; "free" принимается как синоним "available"
func ParseSlotStatus(s string) (SlotStatus, bool) {
	switch normalizeEnum(s) {
	case "available", "free":
		return SlotStatusAvailable, true
	case "booked":
		return SlotStatusBooked, true
	}
	return "", false
}
