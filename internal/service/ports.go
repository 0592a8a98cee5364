package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/Freeeeeet/tutorbook/internal/repository"
)

// Репозитории описаны интерфейсами, чтобы сервисы тестировались без базы.
// Реализации на pgx лежат в internal/repository.

// Transactor выполняет fn атомарно; вложенные вызовы присоединяются к внешней транзакции
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type SlotStore interface {
	Create(ctx context.Context, slot *model.AvailabilitySlot) error
	GetByID(ctx context.Context, id int64) (*model.AvailabilitySlot, error)
	FindOverlapping(ctx context.Context, tutorID int64, w model.Window) (*model.AvailabilitySlot, error)
	ListByTutor(ctx context.Context, tutorID int64, f model.BookingFilter) ([]*model.AvailabilitySlot, int, error)
	ListAvailable(ctx context.Context, tutorID int64, now, from time.Time, to *time.Time, f model.BookingFilter) ([]*model.AvailabilitySlot, int, error)
	MarkBooked(ctx context.Context, slotID int64) (bool, error)
	Release(ctx context.Context, slotID int64) (bool, error)
	DeleteFree(ctx context.Context, slotID int64) (bool, error)
	LockTutor(ctx context.Context, tutorID int64) error
}

type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Booking, error)
	GetByOrderCode(ctx context.Context, orderCode string) (*model.Booking, error)
	HasOverlap(ctx context.Context, tutorID int64, w model.Window) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) error
	UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error
	SetPrice(ctx context.Context, id int64, basePrice, serviceFee int64) error
	List(ctx context.Context, q repository.BookingQuery) ([]*model.Booking, int, error)
}

type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id int64) (*model.Session, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Session, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*model.Session, error)
	Update(ctx context.Context, session *model.Session) error
	ListByUser(ctx context.Context, userID int64, isTutor bool, f model.BookingFilter) ([]*model.Session, int, error)
}

// UserDirectory внешний источник имён и ставок
type UserDirectory interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
	HourlyRate(ctx context.Context, tutorID int64) (int64, error)
}

// ReservationLock межпроцессная блокировка на время резервирования (internal/lock)
type ReservationLock interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}
