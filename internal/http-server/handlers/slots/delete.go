package slots

import (
	"net/http"

	"github.com/Freeeeeet/tutorbook/internal/http-server/middleware/actor"
	"github.com/Freeeeeet/tutorbook/internal/http-server/request"
	"github.com/Freeeeeet/tutorbook/internal/http-server/response"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewDelete(log *zap.Logger, svc SlotService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.Delete"

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

		if err := svc.Delete(r.Context(), a.ID, a.IsAdmin, id); err != nil {
			response.FailWithError(w, r, log, err, "failed to delete slot")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
