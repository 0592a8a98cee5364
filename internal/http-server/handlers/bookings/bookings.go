package bookings

import (
	"context"

	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/Freeeeeet/tutorbook/internal/service"
)

type BookingService interface {
	CreateFromSlot(ctx context.Context, in service.CreateFromSlotInput) (*model.Booking, error)
	CreateInstant(ctx context.Context, in service.CreateInstantInput) (*model.Booking, error)
	Transition(ctx context.Context, bookingID int64, requestedStatus string, actorID int64, actorIsAdmin bool) (*model.Booking, error)
	Get(ctx context.Context, bookingID int64) (*model.Booking, error)
	ListByStudent(ctx context.Context, studentID int64, filter model.BookingFilter) (model.Page[*model.Booking], error)
	ListByTutor(ctx context.Context, tutorID int64, filter model.BookingFilter) (model.Page[*model.Booking], error)
	ListUpcomingByUser(ctx context.Context, userID int64, filter model.BookingFilter) (model.Page[*model.Booking], error)
	ListAllForAdmin(ctx context.Context, filter model.BookingFilter) (model.Page[*model.Booking], error)
}

type PaymentStarter interface {
	MarkProcessing(ctx context.Context, bookingID int64) (*model.Booking, error)
}
