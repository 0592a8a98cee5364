package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/Freeeeeet/tutorbook/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const sessionColumns = `s.id, s.booking_id, s.video_call_link, s.notes, s.start_time, s.end_time, s.base_price, s.service_fee, s.created_at, s.updated_at`

// имя UNIQUE-ограничения из миграции 00001
const sessionBookingUniqueConstraint = "sessions_booking_id_key"

type SessionRepository struct {
	db *base.Repository
}

func NewSessionRepository(db *base.Repository) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create создаёт сессию; на одно бронирование допускается одна сессия
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (booking_id, video_call_link, notes, start_time, end_time, base_price, service_fee)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		session.BookingID,
		session.VideoCallLink,
		session.Notes,
		session.StartTime,
		session.EndTime,
		session.BasePrice,
		session.ServiceFee,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err, sessionBookingUniqueConstraint) {
			return model.ErrSessionExists
		}
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetByID получает сессию по ID
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*model.Session, error) {
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM sessions s WHERE s.id = $1`, id)
}

// GetByIDForUpdate получает сессию и блокирует строку до конца транзакции
func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.Session, error) {
	if !base.InTx(ctx) {
		return nil, fmt.Errorf("get session %d for update: transaction required", id)
	}
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM sessions s WHERE s.id = $1 FOR UPDATE`, id)
}

// GetByBookingID получает сессию бронирования
func (r *SessionRepository) GetByBookingID(ctx context.Context, bookingID int64) (*model.Session, error) {
	return r.getOne(ctx, `SELECT `+sessionColumns+` FROM sessions s WHERE s.booking_id = $1`, bookingID)
}

func (r *SessionRepository) getOne(ctx context.Context, query string, arg any) (*model.Session, error) {
	session, err := scanSession(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// Update обновляет ссылку, заметки, время и стоимость сессии
func (r *SessionRepository) Update(ctx context.Context, session *model.Session) error {
	query := `
		UPDATE sessions
		SET video_call_link = $1, notes = $2, start_time = $3, end_time = $4,
			base_price = $5, service_fee = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		session.VideoCallLink,
		session.Notes,
		session.StartTime,
		session.EndTime,
		session.BasePrice,
		session.ServiceFee,
		session.ID,
	).Scan(&session.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return model.ErrSessionNotFound
		}
		return fmt.Errorf("update session: %w", err)
	}

	return nil
}

// ListByUser получает сессии пользователя как преподавателя или как студента.
// Статус и навык в фильтре относятся к родительскому бронированию.
func (r *SessionRepository) ListByUser(ctx context.Context, userID int64, isTutor bool, f model.BookingFilter) ([]*model.Session, int, error) {
	w := &where{}
	if isTutor {
		w.add("b.tutor_id = " + w.arg(userID))
	} else {
		w.add("b.student_id = " + w.arg(userID))
	}
	w.bookingStatus(f, "b.status")
	w.skill(f, "b.skill_id")
	w.window(f, "s.start_time", "s.end_time")

	from := `FROM sessions s JOIN bookings b ON b.id = s.booking_id `

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) `+from+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	query := `SELECT ` + sessionColumns + ` ` + from + w.String() + ` ` + w.page(f, "s.start_time", "s.id")

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, total, nil
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var session model.Session
	err := row.Scan(
		&session.ID,
		&session.BookingID,
		&session.VideoCallLink,
		&session.Notes,
		&session.StartTime,
		&session.EndTime,
		&session.BasePrice,
		&session.ServiceFee,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	session.StartTime = session.StartTime.UTC()
	session.EndTime = session.EndTime.UTC()

	return &session, nil
}
