package bookings

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/http-server/middleware/actor"
	"github.com/Freeeeeet/tutorbook/internal/http-server/response"
	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/Freeeeeet/tutorbook/internal/service"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// CreateRequest с slot_id бронирует объявленный слот, без него бронирует окно start_time..end_time
type CreateRequest struct {
	TutorID     int64      `json:"tutor_id"`
	SlotID      *int64     `json:"slot_id,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	SkillID     *int64     `json:"skill_id,omitempty"`
	Topic       string     `json:"topic"`
	Description string     `json:"description"`
}

// NewCreate создаёт бронирование от имени студента
func NewCreate(log *zap.Logger, svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.Create"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		a, ok := actor.Require(w, r)
		if !ok {
			return
		}

		var req CreateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", zap.Error(err))
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, "failed to decode request")
			return
		}

		if req.TutorID < 1 {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, "tutor_id is required")
			return
		}

		var (
			booking *model.Booking
			err     error
		)

		switch {
		case req.SlotID != nil:
			booking, err = svc.CreateFromSlot(r.Context(), service.CreateFromSlotInput{
				StudentID:   a.ID,
				TutorID:     req.TutorID,
				SlotID:      *req.SlotID,
				SkillID:     req.SkillID,
				Topic:       req.Topic,
				Description: req.Description,
			})
		case req.StartTime != nil && req.EndTime != nil:
			booking, err = svc.CreateInstant(r.Context(), service.CreateInstantInput{
				StudentID:   a.ID,
				TutorID:     req.TutorID,
				Window:      model.NewWindow(*req.StartTime, *req.EndTime),
				SkillID:     req.SkillID,
				Topic:       req.Topic,
				Description: req.Description,
			})
		default:
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, "either slot_id or start_time and end_time are required")
			return
		}

		if err != nil {
			response.FailWithError(w, r, log, err, "failed to create booking")
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, booking)
	}
}
