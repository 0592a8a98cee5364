package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/clock"
	"github.com/Freeeeeet/tutorbook/internal/model"
	"go.uber.org/zap"
)

const (
	// DefaultRecurrenceHorizon горизонт развёртки повторений без даты окончания
	DefaultRecurrenceHorizon = 4 * 7 * 24 * time.Hour
	// DefaultMaxRecurrenceSpan самая дальняя дата окончания повторения от первого вхождения
	DefaultMaxRecurrenceSpan = 52 * 7 * 24 * time.Hour
)

// AvailabilityService ведёт слоты доступности преподавателей
type AvailabilityService struct {
	tx      Transactor
	slots   SlotStore
	clock   clock.Clock
	horizon time.Duration
	maxSpan time.Duration
	logger  *zap.Logger
}

func NewAvailabilityService(
	tx Transactor,
	slots SlotStore,
	clk clock.Clock,
	horizon time.Duration,
	maxSpan time.Duration,
	logger *zap.Logger,
) *AvailabilityService {
	if horizon <= 0 {
		horizon = DefaultRecurrenceHorizon
	}
	if maxSpan <= 0 {
		maxSpan = DefaultMaxRecurrenceSpan
	}
	if maxSpan < horizon {
		maxSpan = horizon
	}
	return &AvailabilityService{
		tx:      tx,
		slots:   slots,
		clock:   clk,
		horizon: horizon,
		maxSpan: maxSpan,
		logger:  logger,
	}
}

// Declare создаёт слот, а при повторении разворачивает его в отдельный слот на каждую
// подходящую дату. Все слоты создаются в одной транзакции: пересечение любого из них
// с существующим слотом отменяет всё объявление.
func (s *AvailabilityService) Declare(ctx context.Context, tutorID int64, window model.Window, recurrence *model.Recurrence) ([]*model.AvailabilitySlot, error) {
	now := s.clock.Now()
	window = model.NewWindow(window.Start, window.End)

	if err := window.Validate(now); err != nil {
		return nil, err
	}

	windows := []model.Window{window}
	if recurrence != nil {
		var err error
		windows, err = expandRecurrence(window, *recurrence, now, s.horizon, s.maxSpan)
		if err != nil {
			return nil, err
		}
	}

	slots := make([]*model.AvailabilitySlot, 0, len(windows))
	for _, w := range windows {
		slot := &model.AvailabilitySlot{
			TutorID:   tutorID,
			StartTime: w.Start,
			EndTime:   w.End,
		}
		if recurrence != nil {
			slot.IsRecurring = true
			slot.RecurrenceDayOfWeek = recurrence.DayOfWeek
			if recurrence.EndDate != nil {
				end := recurrence.EndDate.UTC()
				slot.RecurrenceEndDate = &end
			}
		}
		slots = append(slots, slot)
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.slots.LockTutor(ctx, tutorID); err != nil {
			return err
		}

		for _, slot := range slots {
			conflict, err := s.slots.FindOverlapping(ctx, tutorID, slot.Window())
			if err != nil {
				return err
			}
			if conflict != nil {
				return fmt.Errorf("%w: %s overlaps slot %d (%s)", model.ErrSlotOverlap,
					slot.StartTime.Format(time.RFC3339), conflict.ID, conflict.StartTime.Format(time.RFC3339))
			}

			if err := s.slots.Create(ctx, slot); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Availability declared",
		zap.Int64("tutor_id", tutorID),
		zap.Bool("recurring", recurrence != nil),
		zap.Int("slots_created", len(slots)),
		zap.Time("first_start", slots[0].StartTime),
	)

	return slots, nil
}

// expandRecurrence возвращает окна на каждый нужный день недели, начиная с даты исходного окна.
// Вхождение попадает в результат, если его начало раньше даты окончания повторения
// (или раньше start+horizon) и не в прошлом. Дата окончания дальше start+maxSpan отклоняется.
func expandRecurrence(window model.Window, rec model.Recurrence, now time.Time, horizon, maxSpan time.Duration) ([]model.Window, error) {
	if rec.DayOfWeek == nil {
		return nil, fmt.Errorf("%w: recurring slot requires a day of week", model.ErrValidation)
	}
	if *rec.DayOfWeek < time.Sunday || *rec.DayOfWeek > time.Saturday {
		return nil, fmt.Errorf("%w: day of week must be between 0 (Sunday) and 6 (Saturday)", model.ErrValidation)
	}

	limit := window.Start.Add(horizon)
	if rec.EndDate != nil {
		if rec.EndDate.Before(now) {
			return nil, fmt.Errorf("%w: recurrence end date must not be in the past", model.ErrValidation)
		}
		if rec.EndDate.After(window.Start.Add(maxSpan)) {
			return nil, fmt.Errorf("%w: recurrence end date must be within %d weeks of the first occurrence",
				model.ErrValidation, int(maxSpan/(7*24*time.Hour)))
		}
		limit = rec.EndDate.UTC()
	}

	offset := (int(*rec.DayOfWeek) - int(window.Start.Weekday()) + 7) % 7
	duration := window.Duration()

	var windows []model.Window
	for start := window.Start.AddDate(0, 0, offset); start.Before(limit); start = start.AddDate(0, 0, 7) {
		if start.Before(now) {
			continue
		}
		windows = append(windows, model.Window{Start: start, End: start.Add(duration)})
	}

	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: recurrence produces no future occurrences", model.ErrValidation)
	}

	return windows, nil
}

// Get получает слот по ID
func (s *AvailabilityService) Get(ctx context.Context, slotID int64) (*model.AvailabilitySlot, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, model.ErrSlotNotFound
	}
	return slot, nil
}

// ListByTutor получает слоты преподавателя
func (s *AvailabilityService) ListByTutor(ctx context.Context, tutorID int64, filter model.BookingFilter) (model.Page[*model.AvailabilitySlot], error) {
	filter = filter.Normalized()

	slots, total, err := s.slots.ListByTutor(ctx, tutorID, filter)
	if err != nil {
		return model.Page[*model.AvailabilitySlot]{}, fmt.Errorf("list tutor slots: %w", err)
	}

	return model.NewPage(slots, total, filter), nil
}

// ListAvailable получает свободные слоты, пересекающие диапазон. Нижняя граница
// в прошлом поднимается до текущего момента; уже начавшиеся слоты не показываются,
// их нельзя забронировать.
func (s *AvailabilityService) ListAvailable(ctx context.Context, tutorID int64, from, to *time.Time, filter model.BookingFilter) (model.Page[*model.AvailabilitySlot], error) {
	if from != nil && to != nil && from.After(*to) {
		return model.Page[*model.AvailabilitySlot]{}, fmt.Errorf("%w: start date must not be after end date", model.ErrValidation)
	}

	now := s.clock.Now()
	lower := now
	if from != nil && from.After(lower) {
		lower = from.UTC()
	}

	filter = filter.Normalized()

	slots, total, err := s.slots.ListAvailable(ctx, tutorID, now, lower, to, filter)
	if err != nil {
		return model.Page[*model.AvailabilitySlot]{}, fmt.Errorf("list available slots: %w", err)
	}

	return model.NewPage(slots, total, filter), nil
}

// Delete удаляет свободный слот; занятый слот удалить нельзя
func (s *AvailabilityService) Delete(ctx context.Context, actorID int64, actorIsAdmin bool, slotID int64) error {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return fmt.Errorf("get slot: %w", err)
	}

	if slot == nil {
		return model.ErrSlotNotFound
	}

	if slot.TutorID != actorID && !actorIsAdmin {
		return fmt.Errorf("%w: slot does not belong to tutor", model.ErrForbidden)
	}

	deleted, err := s.slots.DeleteFree(ctx, slotID)
	if err != nil {
		return err
	}

	if !deleted {
		// Слот либо заняли, либо удалили между чтением и удалением
		current, err := s.slots.GetByID(ctx, slotID)
		if err != nil {
			return fmt.Errorf("get slot: %w", err)
		}
		if current == nil {
			return model.ErrSlotNotFound
		}
		return fmt.Errorf("%w: cannot delete a booked slot", model.ErrValidation)
	}

	s.logger.Info("Slot deleted",
		zap.Int64("slot_id", slotID),
		zap.Int64("tutor_id", slot.TutorID),
		zap.Int64("actor_id", actorID),
	)

	return nil
}
