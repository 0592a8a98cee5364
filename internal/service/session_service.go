package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/clock"
	"github.com/Freeeeeet/tutorbook/internal/model"
	"go.uber.org/zap"
)

type CreateSessionInput struct {
	ActorID       int64
	BookingID     int64
	VideoCallLink string
	Notes         string
	StartTime     time.Time
	EndTime       time.Time
}

// UpdateSessionInput nil-поля сохраняют прежние значения
type UpdateSessionInput struct {
	ActorID       int64
	SessionID     int64
	VideoCallLink *string
	Notes         *string
	StartTime     *time.Time
	EndTime       *time.Time
}

// SessionService создаёт занятия по подтверждённым бронированиям и считает их стоимость
type SessionService struct {
	tx       Transactor
	bookings BookingStore
	sessions SessionStore
	users    UserDirectory
	clock    clock.Clock
	logger   *zap.Logger
}

func NewSessionService(
	tx Transactor,
	bookings BookingStore,
	sessions SessionStore,
	users UserDirectory,
	clk clock.Clock,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		tx:       tx,
		bookings: bookings,
		sessions: sessions,
		users:    users,
		clock:    clk,
		logger:   logger,
	}
}

// Create создаёт сессию. Без ставки преподавателя цену посчитать нельзя, поэтому
// ошибка справочника пользователей здесь не подавляется.
func (s *SessionService) Create(ctx context.Context, in CreateSessionInput) (*model.Session, error) {
	window := model.NewWindow(in.StartTime, in.EndTime)
	if !window.End.After(window.Start) {
		return nil, fmt.Errorf("%w: end time must be after start time", model.ErrValidation)
	}

	var session *model.Session

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err := s.bookings.GetByIDForUpdate(ctx, in.BookingID)
		if err != nil {
			return fmt.Errorf("get booking: %w", err)
		}

		if booking == nil {
			return model.ErrBookingNotFound
		}

		if !isParticipant(booking, in.ActorID) {
			return model.ErrNotParticipant
		}

		if booking.Status != model.BookingStatusConfirmed {
			return fmt.Errorf("%w: sessions can only be created for confirmed bookings", model.ErrValidation)
		}

		existing, err := s.sessions.GetByBookingID(ctx, booking.ID)
		if err != nil {
			return fmt.Errorf("get session by booking: %w", err)
		}
		if existing != nil {
			return model.ErrSessionExists
		}

		basePrice, serviceFee, err := s.price(ctx, booking.TutorID, window)
		if err != nil {
			return err
		}

		if err := s.bookings.SetPrice(ctx, booking.ID, basePrice, serviceFee); err != nil {
			return err
		}

		session = &model.Session{
			BookingID:     booking.ID,
			VideoCallLink: in.VideoCallLink,
			Notes:         in.Notes,
			StartTime:     window.Start,
			EndTime:       window.End,
			BasePrice:     basePrice,
			ServiceFee:    serviceFee,
		}

		return s.sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Session created",
		zap.Int64("session_id", session.ID),
		zap.Int64("booking_id", in.BookingID),
		zap.Int64("actor_id", in.ActorID),
		zap.Int64("base_price", session.BasePrice),
		zap.Int64("service_fee", session.ServiceFee),
	)

	return session, nil
}

// Update меняет ссылку, заметки или время. При смене времени цена пересчитывается.
// Строки сессии и бронирования блокируются: параллельные правки разных полей
// применяются по очереди и не затирают друг друга.
func (s *SessionService) Update(ctx context.Context, in UpdateSessionInput) (*model.Session, error) {
	var session *model.Session

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		session, err = s.sessions.GetByIDForUpdate(ctx, in.SessionID)
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		if session == nil {
			return model.ErrSessionNotFound
		}

		booking, err := s.bookings.GetByIDForUpdate(ctx, session.BookingID)
		if err != nil {
			return fmt.Errorf("get booking: %w", err)
		}

		if booking == nil {
			return model.ErrBookingNotFound
		}

		if !isParticipant(booking, in.ActorID) {
			return model.ErrNotParticipant
		}

		if in.VideoCallLink != nil {
			session.VideoCallLink = *in.VideoCallLink
		}
		if in.Notes != nil {
			session.Notes = *in.Notes
		}

		if in.StartTime != nil || in.EndTime != nil {
			window := model.Window{Start: session.StartTime, End: session.EndTime}
			if in.StartTime != nil {
				window.Start = in.StartTime.UTC()
			}
			if in.EndTime != nil {
				window.End = in.EndTime.UTC()
			}

			if !window.End.After(window.Start) {
				return fmt.Errorf("%w: end time must be after start time", model.ErrValidation)
			}

			basePrice, serviceFee, err := s.price(ctx, booking.TutorID, window)
			if err != nil {
				return err
			}

			if err := s.bookings.SetPrice(ctx, booking.ID, basePrice, serviceFee); err != nil {
				return err
			}

			session.StartTime = window.Start
			session.EndTime = window.End
			session.BasePrice = basePrice
			session.ServiceFee = serviceFee
		}

		return s.sessions.Update(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Session updated",
		zap.Int64("session_id", session.ID),
		zap.Int64("actor_id", in.ActorID),
	)

	return session, nil
}

func (s *SessionService) price(ctx context.Context, tutorID int64, window model.Window) (int64, int64, error) {
	rate, err := s.users.HourlyRate(ctx, tutorID)
	if err != nil {
		return 0, 0, fmt.Errorf("resolve tutor hourly rate: %w", err)
	}

	basePrice, serviceFee := model.ComputePrice(window, rate)
	return basePrice, serviceFee, nil
}

// GetByID получает сессию по ID
func (s *SessionService) GetByID(ctx context.Context, sessionID int64) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

// GetByBookingID получает сессию бронирования
func (s *SessionService) GetByBookingID(ctx context.Context, bookingID int64) (*model.Session, error) {
	session, err := s.sessions.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get session by booking: %w", err)
	}
	if session == nil {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

// ListByUser получает сессии пользователя как преподавателя или как студента
func (s *SessionService) ListByUser(ctx context.Context, userID int64, isTutor bool, filter model.BookingFilter) (model.Page[*model.Session], error) {
	filter = filter.Normalized()

	sessions, total, err := s.sessions.ListByUser(ctx, userID, isTutor, filter)
	if err != nil {
		return model.Page[*model.Session]{}, fmt.Errorf("list sessions: %w", err)
	}

	return model.NewPage(sessions, total, filter), nil
}

func isParticipant(booking *model.Booking, userID int64) bool {
	return booking.StudentID == userID || booking.TutorID == userID
}
