package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/Freeeeeet/tutorbook/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, student_id, tutor_id, slot_id, session_date, start_time, end_time, skill_id, topic, description,
	status, payment_status, order_code, base_price, service_fee, created_at, updated_at`

// BookingQuery условия выборки бронирований поверх общего фильтра
type BookingQuery struct {
	StudentID     *int64
	TutorID       *int64
	ParticipantID *int64     // студент или преподаватель
	StartsAfter   *time.Time // только занятия, начинающиеся не раньше
	ActiveOnly    bool       // только Pending и Confirmed
	Filter        model.BookingFilter
}

type BookingRepository struct {
	db *base.Repository
}

func NewBookingRepository(db *base.Repository) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create создаёт новое бронирование
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (student_id, tutor_id, slot_id, session_date, start_time, end_time, skill_id, topic, description,
			status, payment_status, order_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		booking.StudentID,
		booking.TutorID,
		booking.SlotID,
		booking.SessionDate,
		booking.StartTime,
		booking.EndTime,
		booking.SkillID,
		booking.Topic,
		booking.Description,
		booking.Status,
		booking.PaymentStatus,
		booking.OrderCode,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

// GetByIDForUpdate получает бронирование и блокирует строку до конца транзакции
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Booking, error) {
	if !base.InTx(ctx) {
		return nil, fmt.Errorf("get booking %d for update: transaction required", id)
	}
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
}

// GetByOrderCode получает бронирование по коду заказа
func (r *BookingRepository) GetByOrderCode(ctx context.Context, orderCode string) (*model.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE order_code = $1`, orderCode)
}

func (r *BookingRepository) getOne(ctx context.Context, query string, arg any) (*model.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return booking, nil
}

// HasOverlap проверяет, есть ли у преподавателя бронирование, пересекающее окно.
// Отменённые и отклонённые бронирования время не занимают.
func (r *BookingRepository) HasOverlap(ctx context.Context, tutorID int64, w model.Window) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE tutor_id = $1
			  AND status NOT IN ($4, $5)
			  AND start_time < $3
			  AND $2 < end_time
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, tutorID, w.Start, w.End,
		model.BookingStatusCancelled, model.BookingStatusRejected).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check booking overlap: %w", err)
	}

	return exists, nil
}

// UpdateStatus обновляет статус бронирования
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	affected, err := r.db.ExecAffected(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	if affected == 0 {
		return model.ErrBookingNotFound
	}

	return nil
}

// UpdatePaymentStatus обновляет статус оплаты
func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, status model.PaymentStatus) error {
	query := `
		UPDATE bookings
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2
	`

	affected, err := r.db.ExecAffected(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}

	if affected == 0 {
		return model.ErrBookingNotFound
	}

	return nil
}

// SetPrice сохраняет рассчитанную стоимость занятия
func (r *BookingRepository) SetPrice(ctx context.Context, id int64, basePrice, serviceFee int64) error {
	query := `
		UPDATE bookings
		SET base_price = $1, service_fee = $2, updated_at = NOW()
		WHERE id = $3
	`

	affected, err := r.db.ExecAffected(ctx, query, basePrice, serviceFee, id)
	if err != nil {
		return fmt.Errorf("set booking price: %w", err)
	}

	if affected == 0 {
		return model.ErrBookingNotFound
	}

	return nil
}

// List получает страницу бронирований и их общее количество
func (r *BookingRepository) List(ctx context.Context, q BookingQuery) ([]*model.Booking, int, error) {
	w := &where{}
	if q.StudentID != nil {
		w.add("student_id = " + w.arg(*q.StudentID))
	}
	if q.TutorID != nil {
		w.add("tutor_id = " + w.arg(*q.TutorID))
	}
	if q.ParticipantID != nil {
		p := w.arg(*q.ParticipantID)
		w.add(fmt.Sprintf("(student_id = %s OR tutor_id = %s)", p, p))
	}
	if q.StartsAfter != nil {
		w.add("start_time >= " + w.arg(*q.StartsAfter))
	}
	if q.ActiveOnly {
		w.add(fmt.Sprintf("status IN (%s, %s)", w.arg(model.BookingStatusPending), w.arg(model.BookingStatusConfirmed)))
	}
	w.bookingStatus(q.Filter, "status")
	w.skill(q.Filter, "skill_id")
	w.window(q.Filter, "start_time", "end_time")

	var total int
	countQuery := `SELECT COUNT(*) FROM bookings ` + w.String()
	if err := r.db.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings ` + w.String() + ` ` + w.page(q.Filter, "start_time", "id")

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, total, nil
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.TutorID,
		&booking.SlotID,
		&booking.SessionDate,
		&booking.StartTime,
		&booking.EndTime,
		&booking.SkillID,
		&booking.Topic,
		&booking.Description,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.OrderCode,
		&booking.BasePrice,
		&booking.ServiceFee,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.StartTime = booking.StartTime.UTC()
	booking.EndTime = booking.EndTime.UTC()

	return &booking, nil
}
