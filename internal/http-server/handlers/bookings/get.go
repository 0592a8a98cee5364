package bookings

import (
	"net/http"

	"github.com/Freeeeeet/tutorbook/internal/http-server/middleware/actor"
	"github.com/Freeeeeet/tutorbook/internal/http-server/request"
	"github.com/Freeeeeet/tutorbook/internal/http-server/response"
	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// NewGet отдаёт бронирование только его участникам и администраторам
func NewGet(log *zap.Logger, svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.Get"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		a, ok := actor.Require(w, r)
		if !ok {
			return
		}

		id, err := request.ID(r, "id")
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, err.Error())
			return
		}

		booking, err := svc.Get(r.Context(), id)
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to get booking")
			return
		}

		if !canSee(a, booking) {
			response.FailWithError(w, r, log, model.ErrNotParticipant, "failed to get booking")
			return
		}

		render.JSON(w, r, booking)
	}
}

func canSee(a actor.Actor, b *model.Booking) bool {
	return a.IsAdmin || a.ID == b.StudentID || a.ID == b.TutorID
}
