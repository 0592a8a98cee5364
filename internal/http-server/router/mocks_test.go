package router

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/Freeeeeet/tutorbook/internal/service"
	"github.com/stretchr/testify/mock"
)

type mockSlots struct{ mock.Mock }

func (m *mockSlots) Declare(ctx context.Context, tutorID int64, window model.Window, recurrence *model.Recurrence) ([]*model.AvailabilitySlot, error) {
	args := m.Called(ctx, tutorID, window, recurrence)
	slots, _ := args.Get(0).([]*model.AvailabilitySlot)
	return slots, args.Error(1)
}

func (m *mockSlots) Get(ctx context.Context, slotID int64) (*model.AvailabilitySlot, error) {
	args := m.Called(ctx, slotID)
	slot, _ := args.Get(0).(*model.AvailabilitySlot)
	return slot, args.Error(1)
}

func (m *mockSlots) ListByTutor(ctx context.Context, tutorID int64, filter model.BookingFilter) (model.Page[*model.AvailabilitySlot], error) {
	args := m.Called(ctx, tutorID, filter)
	return args.Get(0).(model.Page[*model.AvailabilitySlot]), args.Error(1)
}

func (m *mockSlots) ListAvailable(ctx context.Context, tutorID int64, from, to *time.Time, filter model.BookingFilter) (model.Page[*model.AvailabilitySlot], error) {
	args := m.Called(ctx, tutorID, from, to, filter)
	return args.Get(0).(model.Page[*model.AvailabilitySlot]), args.Error(1)
}

func (m *mockSlots) Delete(ctx context.Context, actorID int64, actorIsAdmin bool, slotID int64) error {
	return m.Called(ctx, actorID, actorIsAdmin, slotID).Error(0)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) CreateFromSlot(ctx context.Context, in service.CreateFromSlotInput) (*model.Booking, error) {
	args := m.Called(ctx, in)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *mockBookings) CreateInstant(ctx context.Context, in service.CreateInstantInput) (*model.Booking, error) {
	args := m.Called(ctx, in)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *mockBookings) Transition(ctx context.Context, bookingID int64, requestedStatus string, actorID int64, actorIsAdmin bool) (*model.Booking, error) {
	args := m.Called(ctx, bookingID, requestedStatus, actorID, actorIsAdmin)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *mockBookings) Get(ctx context.Context, bookingID int64) (*model.Booking, error) {
	args := m.Called(ctx, bookingID)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *mockBookings) ListByStudent(ctx context.Context, studentID int64, filter model.BookingFilter) (model.Page[*model.Booking], error) {
	args := m.Called(ctx, studentID, filter)
	return args.Get(0).(model.Page[*model.Booking]), args.Error(1)
}

func (m *mockBookings) ListByTutor(ctx context.Context, tutorID int64, filter model.BookingFilter) (model.Page[*model.Booking], error) {
	args := m.Called(ctx, tutorID, filter)
	return args.Get(0).(model.Page[*model.Booking]), args.Error(1)
}

func (m *mockBookings) ListUpcomingByUser(ctx context.Context, userID int64, filter model.BookingFilter) (model.Page[*model.Booking], error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(model.Page[*model.Booking]), args.Error(1)
}

func (m *mockBookings) ListAllForAdmin(ctx context.Context, filter model.BookingFilter) (model.Page[*model.Booking], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(model.Page[*model.Booking]), args.Error(1)
}

type mockSessions struct{ mock.Mock }

func (m *mockSessions) Create(ctx context.Context, in service.CreateSessionInput) (*model.Session, error) {
	args := m.Called(ctx, in)
	s, _ := args.Get(0).(*model.Session)
	return s, args.Error(1)
}

func (m *mockSessions) Update(ctx context.Context, in service.UpdateSessionInput) (*model.Session, error) {
	args := m.Called(ctx, in)
	s, _ := args.Get(0).(*model.Session)
	return s, args.Error(1)
}

func (m *mockSessions) GetByID(ctx context.Context, sessionID int64) (*model.Session, error) {
	args := m.Called(ctx, sessionID)
	s, _ := args.Get(0).(*model.Session)
	return s, args.Error(1)
}

func (m *mockSessions) GetByBookingID(ctx context.Context, bookingID int64) (*model.Session, error) {
	args := m.Called(ctx, bookingID)
	s, _ := args.Get(0).(*model.Session)
	return s, args.Error(1)
}

func (m *mockSessions) ListByUser(ctx context.Context, userID int64, isTutor bool, filter model.BookingFilter) (model.Page[*model.Session], error) {
	args := m.Called(ctx, userID, isTutor, filter)
	return args.Get(0).(model.Page[*model.Session]), args.Error(1)
}

type mockPayments struct{ mock.Mock }

func (m *mockPayments) MarkProcessing(ctx context.Context, bookingID int64) (*model.Booking, error) {
	args := m.Called(ctx, bookingID)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *mockPayments) MarkPaid(ctx context.Context, orderCode string) (*model.Booking, error) {
	args := m.Called(ctx, orderCode)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}
