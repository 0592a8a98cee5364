package slots

import (
	"net/http"

	"github.com/Freeeeeet/tutorbook/internal/http-server/request"
	"github.com/Freeeeeet/tutorbook/internal/http-server/response"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

func NewGet(log *zap.Logger, svc SlotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.Get"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := request.ID(r, "id")
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, err.Error())
			return
		}

		slot, err := svc.Get(r.Context(), id)
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to get slot")
			return
		}

		render.JSON(w, r, slot)
	}
}

// NewListByTutor все слоты преподавателя; status=available|booked
func NewListByTutor(log *zap.Logger, svc SlotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.ListByTutor"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		tutorID, err := request.ID(r, "tutorID")
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, err.Error())
			return
		}

		filter, err := request.Filter(r)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, err.Error())
			return
		}

		page, err := svc.ListByTutor(r.Context(), tutorID, filter)
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to list slots")
			return
		}

		render.JSON(w, r, page)
	}
}

// NewListAvailable свободные слоты преподавателя в диапазоне from..to
func NewListAvailable(log *zap.Logger, svc SlotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.ListAvailable"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		tutorID, err := request.ID(r, "tutorID")
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, err.Error())
			return
		}

		filter, err := request.Filter(r)
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, err.Error())
			return
		}

		from, err := request.OptionalTime(r, "from")
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, err.Error())
			return
		}

		to, err := request.OptionalEndTime(r, "to")
		if err != nil {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, err.Error())
			return
		}

		page, err := svc.ListAvailable(r.Context(), tutorID, from, to, filter)
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to list available slots")
			return
		}

		render.JSON(w, r, page)
	}
}
