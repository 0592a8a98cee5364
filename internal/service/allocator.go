package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/clock"
	"github.com/Freeeeeet/tutorbook/internal/model"
	"go.uber.org/zap"
)

// DefaultReservationLockTTL время жизни межпроцессной блокировки резервирования
const DefaultReservationLockTTL = 10 * time.Second

// Allocator единственная точка, где время преподавателя становится занятым.
// Проверка пересечений и запись выполняются в одной транзакции под advisory-блокировкой
// преподавателя, поэтому из двух конкурирующих пересекающихся запросов проходит один.
type Allocator struct {
	tx       Transactor
	slots    SlotStore
	bookings BookingStore
	lock     ReservationLock // может быть nil
	lockTTL  time.Duration
	clock    clock.Clock
	logger   *zap.Logger
}

func NewAllocator(
	tx Transactor,
	slots SlotStore,
	bookings BookingStore,
	lock ReservationLock,
	lockTTL time.Duration,
	clk clock.Clock,
	logger *zap.Logger,
) *Allocator {
	if lockTTL <= 0 {
		lockTTL = DefaultReservationLockTTL
	}
	return &Allocator{
		tx:       tx,
		slots:    slots,
		bookings: bookings,
		lock:     lock,
		lockTTL:  lockTTL,
		clock:    clk,
		logger:   logger,
	}
}

// Reserve проверяет, что окно не пересекается с активными бронированиями преподавателя.
// Внутри транзакции вызывающего блокировка держится до её завершения, и результат
// остаётся верным до COMMIT.
func (a *Allocator) Reserve(ctx context.Context, tutorID int64, w model.Window) (bool, error) {
	var free bool

	err := a.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := a.slots.LockTutor(ctx, tutorID); err != nil {
			return err
		}

		busy, err := a.bookings.HasOverlap(ctx, tutorID, w)
		if err != nil {
			return err
		}

		free = !busy
		return nil
	})
	if err != nil {
		return false, err
	}

	return free, nil
}

// ClaimSlot занимает заранее объявленный слот и создаёт бронирование.
// Время бронирования берётся из слота.
func (a *Allocator) ClaimSlot(ctx context.Context, slotID int64, booking *model.Booking) error {
	unlock, err := a.acquire(ctx, booking.TutorID)
	if err != nil {
		return err
	}
	defer unlock()

	return a.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := a.slots.LockTutor(ctx, booking.TutorID); err != nil {
			return err
		}

		slot, err := a.slots.GetByID(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}

		if slot == nil {
			return model.ErrSlotNotFound
		}

		if slot.TutorID != booking.TutorID {
			return fmt.Errorf("%w: slot belongs to a different tutor", model.ErrValidation)
		}

		if slot.IsBooked {
			return model.ErrSlotAlreadyBooked
		}

		if slot.StartTime.Before(a.clock.Now()) {
			return fmt.Errorf("%w: slot is in the past", model.ErrValidation)
		}

		free, err := a.Reserve(ctx, booking.TutorID, slot.Window())
		if err != nil {
			return err
		}
		if !free {
			return model.ErrBookingConflict
		}

		// Условный UPDATE: проходит только для свободного слота
		booked, err := a.slots.MarkBooked(ctx, slot.ID)
		if err != nil {
			return err
		}
		if !booked {
			return model.ErrSlotAlreadyBooked
		}

		booking.SlotID = &slot.ID
		setBookingWindow(booking, slot.Window())

		if err := a.bookings.Create(ctx, booking); err != nil {
			return err
		}

		a.logger.Debug("Slot claimed",
			zap.Int64("slot_id", slot.ID),
			zap.Int64("tutor_id", booking.TutorID),
			zap.Int64("booking_id", booking.ID),
		)

		return nil
	})
}

// ClaimInstant создаёт бронирование на произвольное окно: проверяет бронирования
// преподавателя, создаёт под окно уже занятый слот и бронирование.
func (a *Allocator) ClaimInstant(ctx context.Context, booking *model.Booking) (*model.AvailabilitySlot, error) {
	unlock, err := a.acquire(ctx, booking.TutorID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	window := booking.Window()
	var slot *model.AvailabilitySlot

	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := a.slots.LockTutor(ctx, booking.TutorID); err != nil {
			return err
		}

		free, err := a.Reserve(ctx, booking.TutorID, window)
		if err != nil {
			return err
		}
		if !free {
			return model.ErrBookingConflict
		}

		// Слоты преподавателя не пересекаются, в том числе со свободными
		conflict, err := a.slots.FindOverlapping(ctx, booking.TutorID, window)
		if err != nil {
			return err
		}
		if conflict != nil {
			return fmt.Errorf("%w: slot %d already covers this time, book it instead", model.ErrSlotOverlap, conflict.ID)
		}

		slot = &model.AvailabilitySlot{
			TutorID:   booking.TutorID,
			StartTime: window.Start,
			EndTime:   window.End,
			IsBooked:  true,
		}
		if err := a.slots.Create(ctx, slot); err != nil {
			return err
		}

		booking.SlotID = &slot.ID
		setBookingWindow(booking, window)

		return a.bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Instant slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("tutor_id", booking.TutorID),
		zap.Int64("booking_id", booking.ID),
	)

	return slot, nil
}

// Release освобождает слот. Уже свободный слот не считается ошибкой.
func (a *Allocator) Release(ctx context.Context, slotID int64) error {
	released, err := a.slots.Release(ctx, slotID)
	if err != nil {
		return err
	}

	if !released {
		a.logger.Warn("Slot was not booked on release", zap.Int64("slot_id", slotID))
	}

	return nil
}

// acquire берёт межпроцессную блокировку, если она настроена.
// Корректность обеспечивает транзакция; эта блокировка лишь отсекает конкурентов раньше.
// Ключ общий на преподавателя, поэтому непересекающиеся бронирования того же
// преподавателя в этот момент тоже получают ErrReservationBusy.
func (a *Allocator) acquire(ctx context.Context, tutorID int64) (func(), error) {
	if a.lock == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("tutor:%d", tutorID)

	token, locked, err := a.lock.Lock(ctx, key, a.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire reservation lock: %w", err)
	}
	if !locked {
		return nil, model.ErrReservationBusy
	}

	return func() {
		if err := a.lock.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			a.logger.Warn("Failed to release reservation lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func setBookingWindow(booking *model.Booking, w model.Window) {
	booking.StartTime = w.Start
	booking.EndTime = w.End
	booking.SessionDate = time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, time.UTC)
}
