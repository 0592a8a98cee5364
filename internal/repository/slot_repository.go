package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/Freeeeeet/tutorbook/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const slotColumns = `id, tutor_id, start_time, end_time, is_recurring, recurrence_day_of_week, recurrence_end_date, is_booked, created_at`

// имя EXCLUDE-ограничения из миграции 00001
const slotNoOverlapConstraint = "availability_slots_no_overlap"

type SlotRepository struct {
	db *base.Repository
}

func NewSlotRepository(db *base.Repository) *SlotRepository {
	return &SlotRepository{db: db}
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	query := `
		INSERT INTO availability_slots (tutor_id, start_time, end_time, is_recurring, recurrence_day_of_week, recurrence_end_date, is_booked)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	var weekday *int16
	if slot.RecurrenceDayOfWeek != nil {
		d := int16(*slot.RecurrenceDayOfWeek)
		weekday = &d
	}

	err := r.db.QueryRow(
		ctx, query,
		slot.TutorID,
		slot.StartTime,
		slot.EndTime,
		slot.IsRecurring,
		weekday,
		slot.RecurrenceEndDate,
		slot.IsBooked,
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		if base.IsExclusionViolation(err, slotNoOverlapConstraint) {
			return fmt.Errorf("%w at %s", model.ErrSlotOverlap, slot.StartTime.Format(time.RFC3339))
		}
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.AvailabilitySlot, error) {
	query := `SELECT ` + slotColumns + ` FROM availability_slots WHERE id = $1`

	slot, err := scanSlot(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// FindOverlapping возвращает первый слот преподавателя, пересекающий окно
func (r *SlotRepository) FindOverlapping(ctx context.Context, tutorID int64, w model.Window) (*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE tutor_id = $1
		  AND start_time < $3
		  AND $2 < end_time
		ORDER BY start_time
		LIMIT 1
	`

	slot, err := scanSlot(r.db.QueryRow(ctx, query, tutorID, w.Start, w.End))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find overlapping slot: %w", err)
	}

	return slot, nil
}

// ListByTutor получает слоты преподавателя по фильтру
func (r *SlotRepository) ListByTutor(ctx context.Context, tutorID int64, f model.BookingFilter) ([]*model.AvailabilitySlot, int, error) {
	w := &where{}
	w.add("tutor_id = " + w.arg(tutorID))
	slotStatus(w, f)
	w.window(f, "start_time", "end_time")

	return r.list(ctx, w, f)
}

// ListAvailable получает свободные слоты преподавателя, пересекающие [from, to).
// Слоты, начавшиеся до now, забронировать уже нельзя, поэтому они не показываются.
func (r *SlotRepository) ListAvailable(ctx context.Context, tutorID int64, now, from time.Time, to *time.Time, f model.BookingFilter) ([]*model.AvailabilitySlot, int, error) {
	w := &where{}
	w.add("tutor_id = " + w.arg(tutorID))
	w.add("NOT is_booked")
	w.add("start_time >= " + w.arg(now))
	w.add("end_time > " + w.arg(from))
	if to != nil {
		w.add("start_time < " + w.arg(*to))
	}
	w.window(f, "start_time", "end_time")

	return r.list(ctx, w, f)
}

func (r *SlotRepository) list(ctx context.Context, w *where, f model.BookingFilter) ([]*model.AvailabilitySlot, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM availability_slots ` + w.String()
	if err := r.db.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count slots: %w", err)
	}

	query := `SELECT ` + slotColumns + ` FROM availability_slots ` + w.String() + ` ` + w.page(f, "start_time", "id")

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.AvailabilitySlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, total, nil
}

// MarkBooked помечает слот занятым, только если он свободен.
// Возвращает false, если слот уже занят или не существует.
func (r *SlotRepository) MarkBooked(ctx context.Context, slotID int64) (bool, error) {
	query := `
		UPDATE availability_slots
		SET is_booked = TRUE
		WHERE id = $1 AND NOT is_booked
	`

	affected, err := r.db.ExecAffected(ctx, query, slotID)
	if err != nil {
		return false, fmt.Errorf("book slot: %w", err)
	}

	return affected == 1, nil
}

// Release освобождает слот
func (r *SlotRepository) Release(ctx context.Context, slotID int64) (bool, error) {
	query := `
		UPDATE availability_slots
		SET is_booked = FALSE
		WHERE id = $1 AND is_booked
	`

	affected, err := r.db.ExecAffected(ctx, query, slotID)
	if err != nil {
		return false, fmt.Errorf("release slot: %w", err)
	}

	return affected == 1, nil
}

// DeleteFree удаляет слот, только если он не занят
func (r *SlotRepository) DeleteFree(ctx context.Context, slotID int64) (bool, error) {
	query := `DELETE FROM availability_slots WHERE id = $1 AND NOT is_booked`

	affected, err := r.db.ExecAffected(ctx, query, slotID)
	if err != nil {
		return false, fmt.Errorf("delete slot: %w", err)
	}

	return affected == 1, nil
}

// LockTutor берёт транзакционную advisory-блокировку на расписание преподавателя.
// Снимается при COMMIT/ROLLBACK, поэтому вызывается только внутри WithinTx.
func (r *SlotRepository) LockTutor(ctx context.Context, tutorID int64) error {
	if !base.InTx(ctx) {
		return fmt.Errorf("lock tutor %d: transaction required", tutorID)
	}

	if _, err := r.db.ExecAffected(ctx, `SELECT pg_advisory_xact_lock($1)`, tutorID); err != nil {
		return fmt.Errorf("lock tutor: %w", err)
	}

	return nil
}

func slotStatus(w *where, f model.BookingFilter) {
	if f.Status == nil {
		return
	}
	switch status, ok := model.ParseSlotStatus(*f.Status); {
	case !ok:
	case status == model.SlotStatusBooked:
		w.add("is_booked")
	default:
		w.add("NOT is_booked")
	}
}

func scanSlot(row pgx.Row) (*model.AvailabilitySlot, error) {
	var (
		slot    model.AvailabilitySlot
		weekday *int16
	)

	err := row.Scan(
		&slot.ID,
		&slot.TutorID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsRecurring,
		&weekday,
		&slot.RecurrenceEndDate,
		&slot.IsBooked,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if weekday != nil {
		d := time.Weekday(*weekday)
		slot.RecurrenceDayOfWeek = &d
	}
	slot.StartTime = slot.StartTime.UTC()
	slot.EndTime = slot.EndTime.UTC()

	return &slot, nil
}
