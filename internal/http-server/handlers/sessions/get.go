package sessions

import (
	"net/http"

	"github.com/Freeeeeet/tutorbook/internal/http-server/middleware/actor"
	"github.com/Freeeeeet/tutorbook/internal/http-server/request"
	"github.com/Freeeeeet/tutorbook/internal/http-server/response"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

func NewGet(log *zap.Logger, svc SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.Get"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := request.ID(r, "id")
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, err.Error())
			return
		}

		session, err := svc.GetByID(r.Context(), id)
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to get session")
			return
		}

		render.JSON(w, r, session)
	}
}

func NewGetByBooking(log *zap.Logger, svc SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.GetByBooking"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		bookingID, err := request.ID(r, "id")
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, err.Error())
			return
		}

		session, err := svc.GetByBookingID(r.Context(), bookingID)
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to get session")
			return
		}

		render.JSON(w, r, session)
	}
}

// NewList сессии текущего пользователя; role=tutor выбирает сессии, которые он ведёт
func NewList(log *zap.Logger, svc SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.List"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		a, ok := actor.Require(w, r)
		if !ok {
			return
		}

		filter, err := request.Filter(r)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, err.Error())
			return
		}

		var isTutor bool
		switch role := r.URL.Query().Get("role"); role {
		case "", "student":
		case "tutor":
			isTutor = true
		default:
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, "role must be student or tutor")
			return
		}

		page, err := svc.ListByUser(r.Context(), a.ID, isTutor, filter)
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to list sessions")
			return
		}

		render.JSON(w, r, page)
	}
}
