package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutorbook/internal/clock"
	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/Freeeeeet/tutorbook/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UnknownUserName подставляется, если имя пользователя получить не удалось
const UnknownUserName = "Unknown user"

type CreateFromSlotInput struct {
	StudentID   int64
	TutorID     int64
	SlotID      int64
	SkillID     *int64
	Topic       string
	Description string
}

type CreateInstantInput struct {
	StudentID   int64
	TutorID     int64
	Window      model.Window
	SkillID     *int64
	Topic       string
	Description string
}

type BookingService struct {
	tx        Transactor
	bookings  BookingStore
	allocator *Allocator
	users     UserDirectory
	clock     clock.Clock
	logger    *zap.Logger
}

func NewBookingService(
	tx Transactor,
	bookings BookingStore,
	allocator *Allocator,
	users UserDirectory,
	clk clock.Clock,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:        tx,
		bookings:  bookings,
		allocator: allocator,
		users:     users,
		clock:     clk,
		logger:    logger,
	}
}

// CreateFromSlot бронирует заранее объявленный слот для студента
func (s *BookingService) CreateFromSlot(ctx context.Context, in CreateFromSlotInput) (*model.Booking, error) {
	if in.StudentID == in.TutorID {
		return nil, fmt.Errorf("%w: cannot book your own slot", model.ErrValidation)
	}

	booking := s.newBooking(in.StudentID, in.TutorID, in.SkillID, in.Topic, in.Description)

	if err := s.allocator.ClaimSlot(ctx, in.SlotID, booking); err != nil {
		return nil, err
	}

	s.logger.Info("Slot booked",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("student_id", in.StudentID),
		zap.Int64("tutor_id", in.TutorID),
		zap.Int64("slot_id", in.SlotID),
		zap.Time("start_time", booking.StartTime),
	)

	s.enrich(ctx, []*model.Booking{booking})
	return booking, nil
}

// CreateInstant бронирует произвольное окно без заранее объявленного слота
func (s *BookingService) CreateInstant(ctx context.Context, in CreateInstantInput) (*model.Booking, error) {
	window := model.NewWindow(in.Window.Start, in.Window.End)
	if err := window.Validate(s.clock.Now()); err != nil {
		return nil, err
	}

	if in.StudentID == in.TutorID {
		return nil, fmt.Errorf("%w: cannot book yourself", model.ErrValidation)
	}

	booking := s.newBooking(in.StudentID, in.TutorID, in.SkillID, in.Topic, in.Description)
	setBookingWindow(booking, window)

	slot, err := s.allocator.ClaimInstant(ctx, booking)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Instant booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("student_id", in.StudentID),
		zap.Int64("tutor_id", in.TutorID),
		zap.Int64("slot_id", slot.ID),
		zap.Time("start_time", booking.StartTime),
	)

	s.enrich(ctx, []*model.Booking{booking})
	return booking, nil
}

func (s *BookingService) newBooking(studentID, tutorID int64, skillID *int64, topic, description string) *model.Booking {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = model.DefaultTopic
	}

	return &model.Booking{
		StudentID:     studentID,
		TutorID:       tutorID,
		SkillID:       skillID,
		Topic:         topic,
		Description:   strings.TrimSpace(description),
		Status:        model.BookingStatusPending,
		PaymentStatus: model.PaymentStatusUnpaid,
		OrderCode:     uuid.NewString(),
	}
}

// Transition переводит бронирование в новый статус по таблице переходов.
// Отмена и отклонение освобождают слот.
func (s *BookingService) Transition(ctx context.Context, bookingID int64, requestedStatus string, actorID int64, actorIsAdmin bool) (*model.Booking, error) {
	to, ok := model.ParseBookingStatus(requestedStatus)
	if !ok {
		return nil, fmt.Errorf("%w %q", model.ErrInvalidStatus, requestedStatus)
	}

	var (
		booking *model.Booking
		from    model.BookingStatus
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("get booking: %w", err)
		}

		if booking == nil {
			return model.ErrBookingNotFound
		}

		role, err := actorRole(booking, actorID, actorIsAdmin)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if err := checkTransition(booking, to, role, now); err != nil {
			return err
		}

		if err := s.bookings.UpdateStatus(ctx, booking.ID, to); err != nil {
			return err
		}

		if !to.HoldsSlot() && booking.SlotID != nil {
			if err := s.allocator.Release(ctx, *booking.SlotID); err != nil {
				return err
			}
		}

		from = booking.Status
		booking.Status = to
		booking.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking status changed",
		zap.Int64("booking_id", bookingID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Int64("actor_id", actorID),
		zap.Bool("actor_is_admin", actorIsAdmin),
	)

	s.enrich(ctx, []*model.Booking{booking})
	return booking, nil
}

// Get получает бронирование по ID
func (s *BookingService) Get(ctx context.Context, bookingID int64) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	if booking == nil {
		return nil, model.ErrBookingNotFound
	}

	s.enrich(ctx, []*model.Booking{booking})
	return booking, nil
}

// ListByStudent получает бронирования студента
func (s *BookingService) ListByStudent(ctx context.Context, studentID int64, filter model.BookingFilter) (model.Page[*model.Booking], error) {
	return s.list(ctx, repository.BookingQuery{StudentID: &studentID, Filter: filter})
}

// ListByTutor получает бронирования преподавателя
func (s *BookingService) ListByTutor(ctx context.Context, tutorID int64, filter model.BookingFilter) (model.Page[*model.Booking], error) {
	return s.list(ctx, repository.BookingQuery{TutorID: &tutorID, Filter: filter})
}

// ListUpcomingByUser получает предстоящие активные занятия пользователя в любой роли
func (s *BookingService) ListUpcomingByUser(ctx context.Context, userID int64, filter model.BookingFilter) (model.Page[*model.Booking], error) {
	now := s.clock.Now()
	return s.list(ctx, repository.BookingQuery{
		ParticipantID: &userID,
		StartsAfter:   &now,
		ActiveOnly:    true,
		Filter:        filter,
	})
}

// ListAllForAdmin получает все бронирования
func (s *BookingService) ListAllForAdmin(ctx context.Context, filter model.BookingFilter) (model.Page[*model.Booking], error) {
	return s.list(ctx, repository.BookingQuery{Filter: filter})
}

func (s *BookingService) list(ctx context.Context, q repository.BookingQuery) (model.Page[*model.Booking], error) {
	q.Filter = q.Filter.Normalized()

	bookings, total, err := s.bookings.List(ctx, q)
	if err != nil {
		return model.Page[*model.Booking]{}, fmt.Errorf("list bookings: %w", err)
	}

	s.enrich(ctx, bookings)
	return model.NewPage(bookings, total, q.Filter), nil
}

// enrich заполняет имена студента и преподавателя. Ошибки поиска не прерывают выборку.
func (s *BookingService) enrich(ctx context.Context, bookings []*model.Booking) {
	names := make(map[int64]string)

	lookup := func(userID int64) string {
		if name, ok := names[userID]; ok {
			return name
		}

		name, err := s.users.DisplayName(ctx, userID)
		if err != nil || name == "" {
			s.logger.Warn("Failed to resolve user name",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			name = UnknownUserName
		}

		names[userID] = name
		return name
	}

	for _, b := range bookings {
		b.StudentName = lookup(b.StudentID)
		b.TutorName = lookup(b.TutorID)
	}
}
