package model

import (
	"strings"
	"time"
)

// DefaultTopic тема занятия, если студент её не указал
const DefaultTopic = "General tutoring session"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"   // ожидает решения преподавателя
	BookingStatusConfirmed BookingStatus = "Confirmed" // подтверждено
	BookingStatusCompleted BookingStatus = "Completed" // завершено
	BookingStatusCancelled BookingStatus = "Cancelled" // отменено
	BookingStatusRejected  BookingStatus = "Rejected"  // отклонено преподавателем
)

var bookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCompleted,
	BookingStatusCancelled,
	BookingStatusRejected,
}

// ParseBookingStatus распознаёт статус без учёта регистра; "canceled" тоже принимается
func ParseBookingStatus(s string) (BookingStatus, bool) {
	n := normalizeEnum(s)
	if n == "canceled" {
		n = "cancelled"
	}
	for _, st := range bookingStatuses {
		if strings.ToLower(string(st)) == n {
			return st, true
		}
	}
	return "", false
}

// IsTerminal true для Completed, Cancelled и Rejected
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled || s == BookingStatusRejected
}

// HoldsSlot true, пока бронирование занимает время преподавателя
func (s BookingStatus) HoldsSlot() bool {
	return s != BookingStatusCancelled && s != BookingStatusRejected
}

type PaymentStatus string

const (
	PaymentStatusUnpaid     PaymentStatus = "Unpaid"
	PaymentStatusProcessing PaymentStatus = "Processing"
	PaymentStatusPaid       PaymentStatus = "Paid"
)

type Booking struct {
	ID            int64         `json:"id"`
	StudentID     int64         `json:"student_id"`
	TutorID       int64         `json:"tutor_id"`
	SlotID        *int64        `json:"slot_id"`
	SessionDate   time.Time     `json:"session_date"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       time.Time     `json:"end_time"`
	SkillID       *int64        `json:"skill_id"`
	Topic         string        `json:"topic"`
	Description   string        `json:"description"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	OrderCode     string        `json:"order_code"`
	BasePrice     *int64        `json:"base_price"`
	ServiceFee    *int64        `json:"service_fee"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	StudentName string `json:"student_name,omitempty"`
	TutorName   string `json:"tutor_name,omitempty"`
}

// Window возвращает интервал занятия
func (b *Booking) Window() Window {
	return Window{Start: b.StartTime, End: b.EndTime}
}

func normalizeEnum(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
