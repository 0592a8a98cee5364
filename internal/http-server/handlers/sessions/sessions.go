package sessions

import (
	"context"

	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/Freeeeeet/tutorbook/internal/service"
)

type SessionService interface {
	Create(ctx context.Context, in service.CreateSessionInput) (*model.Session, error)
	Update(ctx context.Context, in service.UpdateSessionInput) (*model.Session, error)
	GetByID(ctx context.Context, sessionID int64) (*model.Session, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*model.Session, error)
	ListByUser(ctx context.Context, userID int64, isTutor bool, filter model.BookingFilter) (model.Page[*model.Session], error)
}
