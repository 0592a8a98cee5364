package slots

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/http-server/middleware/actor"
	"github.com/Freeeeeet/tutorbook/internal/http-server/response"
	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type DeclareRequest struct {
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time"`
	Recurrence *model.Recurrence `json:"recurrence,omitempty"`
}

type DeclareResponse struct {
	response.Response
	Slots []*model.AvailabilitySlot `json:"slots"`
}

// NewDeclare объявляет доступность преподавателя от имени текущего пользователя
func NewDeclare(log *zap.Logger, svc SlotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.Declare"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		a, ok := actor.Require(w, r)
		if !ok {
			return
		}

		var req DeclareRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", zap.Error(err))
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, "failed to decode request")
			return
		}

		if req.StartTime.IsZero() || req.EndTime.IsZero() {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, "start_time and end_time are required")
			return
		}

		slots, err := svc.Declare(r.Context(), a.ID, model.NewWindow(req.StartTime, req.EndTime), req.Recurrence)
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to declare availability")
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, DeclareResponse{Slots: slots})
	}
}
