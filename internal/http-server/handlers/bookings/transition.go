package bookings

import (
	"net/http"
	"strings"

	"github.com/Freeeeeet/tutorbook/internal/http-server/middleware/actor"
	"github.com/Freeeeeet/tutorbook/internal/http-server/request"
	"github.com/Freeeeeet/tutorbook/internal/http-server/response"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type TransitionRequest struct {
	Status string `json:"status"`
}

func NewTransition(log *zap.Logger, svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.Transition"

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

		var req TransitionRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", zap.Error(err))
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, "failed to decode request")
			return
		}

		if strings.TrimSpace(req.Status) == "" {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, "status is required")
			return
		}

		booking, err := svc.Transition(r.Context(), id, req.Status, a.ID, a.IsAdmin)
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to change booking status")
			return
		}

		render.JSON(w, r, booking)
	}
}
