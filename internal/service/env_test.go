package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/clock"
	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	tutorID   int64 = 100
	studentID int64 = 200
	outsider  int64 = 300
	adminID   int64 = 1

	hourlyRate int64 = 100000
)

// Понедельник, 08:00 UTC
var testNow = time.Date(2030, 3, 4, 8, 0, 0, 0, time.UTC)

type testEnv struct {
	db           *memDB
	clock        *clock.Fixed
	lock         *fakeLock
	availability *AvailabilityService
	allocator    *Allocator
	bookings     *BookingService
	sessions     *SessionService
	payments     *PaymentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newMemDB()
	db.names[tutorID] = "Tanya Tutor"
	db.names[studentID] = "Sam Student"
	db.rates[tutorID] = hourlyRate

	clk := clock.NewFixed(testNow)
	lock := newFakeLock()
	logger := zap.NewNop()

	slots := memSlots{db}
	bookings := memBookings{db}
	sessions := memSessions{db}
	users := memUsers{db}

	allocator := NewAllocator(db, slots, bookings, lock, 0, clk, logger)

	return &testEnv{
		db:           db,
		clock:        clk,
		lock:         lock,
		availability: NewAvailabilityService(db, slots, clk, 0, 0, logger),
		allocator:    allocator,
		bookings:     NewBookingService(db, bookings, allocator, users, clk, logger),
		sessions:     NewSessionService(db, bookings, sessions, users, clk, logger),
		payments:     NewPaymentService(db, bookings, logger),
	}
}

// hours окно относительно testNow
func hours(from, to float64) model.Window {
	return model.Window{
		Start: testNow.Add(time.Duration(from * float64(time.Hour))),
		End:   testNow.Add(time.Duration(to * float64(time.Hour))),
	}
}

func (e *testEnv) declare(t *testing.T, w model.Window) *model.AvailabilitySlot {
	t.Helper()

	slots, err := e.availability.Declare(context.Background(), tutorID, w, nil)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	return slots[0]
}

func (e *testEnv) bookSlot(t *testing.T, slotID int64) *model.Booking {
	t.Helper()

	booking, err := e.bookings.CreateFromSlot(context.Background(), CreateFromSlotInput{
		StudentID: studentID,
		TutorID:   tutorID,
		SlotID:    slotID,
	})
	require.NoError(t, err)
	return booking
}

// confirmedBooking бронирование на [now+2h, now+4h], подтверждённое преподавателем
func (e *testEnv) confirmedBooking(t *testing.T) *model.Booking {
	t.Helper()

	slot := e.declare(t, hours(2, 4))
	booking := e.bookSlot(t, slot.ID)

	booking, err := e.bookings.Transition(context.Background(), booking.ID, "Confirmed", tutorID, false)
	require.NoError(t, err)
	return booking
}

func (e *testEnv) slot(t *testing.T, id int64) *model.AvailabilitySlot {
	t.Helper()

	slot, err := e.availability.Get(context.Background(), id)
	require.NoError(t, err)
	return slot
}
