package sessions

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/http-server/middleware/actor"
	"github.com/Freeeeeet/tutorbook/internal/http-server/request"
	"github.com/Freeeeeet/tutorbook/internal/http-server/response"
	"github.com/Freeeeeet/tutorbook/internal/service"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type CreateRequest struct {
	BookingID     int64     `json:"booking_id"`
	VideoCallLink string    `json:"video_call_link"`
	Notes         string    `json:"notes"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

func NewCreate(log *zap.Logger, svc SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.Create"

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

		if req.BookingID < 1 {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, "booking_id is required")
			return
		}

		session, err := svc.Create(r.Context(), service.CreateSessionInput{
			ActorID:       a.ID,
			BookingID:     req.BookingID,
			VideoCallLink: req.VideoCallLink,
			Notes:         req.Notes,
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
		})
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to create session")
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, session)
	}
}

type UpdateRequest struct {
	VideoCallLink *string    `json:"video_call_link,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
}

// NewUpdate частичное обновление: отсутствующие поля не меняются
func NewUpdate(log *zap.Logger, svc SessionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.sessions.Update"

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

		var req UpdateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", zap.Error(err))
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, "failed to decode request")
			return
		}

		session, err := svc.Update(r.Context(), service.UpdateSessionInput{
			ActorID:       a.ID,
			SessionID:     id,
			VideoCallLink: req.VideoCallLink,
			Notes:         req.Notes,
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
		})
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to update session")
			return
		}

		render.JSON(w, r, session)
	}
}
