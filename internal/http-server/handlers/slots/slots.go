package slots

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/model"
)

type SlotService interface {
	Declare(ctx context.Context, tutorID int64, window model.Window, recurrence *model.Recurrence) ([]*model.AvailabilitySlot, error)
	Get(ctx context.Context, slotID int64) (*model.AvailabilitySlot, error)
	ListByTutor(ctx context.Context, tutorID int64, filter model.BookingFilter) (model.Page[*model.AvailabilitySlot], error)
	ListAvailable(ctx context.Context, tutorID int64, from, to *time.Time, filter model.BookingFilter) (model.Page[*model.AvailabilitySlot], error)
	Delete(ctx context.Context, actorID int64, actorIsAdmin bool, slotID int64) error
}
