package bookings

import (
	"context"
	"net/http"

	"github.com/Freeeeeet/tutorbook/internal/http-server/middleware/actor"
	"github.com/Freeeeeet/tutorbook/internal/http-server/request"
	"github.com/Freeeeeet/tutorbook/internal/http-server/response"
	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type listFunc func(ctx context.Context, a actor.Actor, filter model.BookingFilter) (model.Page[*model.Booking], error)

// NewListAsStudent бронирования текущего пользователя как студента
func NewListAsStudent(log *zap.Logger, svc BookingService) http.HandlerFunc {
	return newList(log, "handlers.bookings.ListAsStudent", func(ctx context.Context, a actor.Actor, f model.BookingFilter) (model.Page[*model.Booking], error) {
		return svc.ListByStudent(ctx, a.ID, f)
	})
}

// NewListAsTutor бронирования текущего пользователя как преподавателя
func NewListAsTutor(log *zap.Logger, svc BookingService) http.HandlerFunc {
	return newList(log, "handlers.bookings.ListAsTutor", func(ctx context.Context, a actor.Actor, f model.BookingFilter) (model.Page[*model.Booking], error) {
		return svc.ListByTutor(ctx, a.ID, f)
	})
}

// NewListUpcoming предстоящие занятия текущего пользователя в любой роли
func NewListUpcoming(log *zap.Logger, svc BookingService) http.HandlerFunc {
	return newList(log, "handlers.bookings.ListUpcoming", func(ctx context.Context, a actor.Actor, f model.BookingFilter) (model.Page[*model.Booking], error) {
		return svc.ListUpcomingByUser(ctx, a.ID, f)
	})
}

// NewListAll все бронирования, только для администратора
func NewListAll(log *zap.Logger, svc BookingService) http.HandlerFunc {
	return newList(log, "handlers.bookings.ListAll", func(ctx context.Context, a actor.Actor, f model.BookingFilter) (model.Page[*model.Booking], error) {
		if !a.IsAdmin {
			return model.Page[*model.Booking]{}, model.ErrForbidden
		}
		return svc.ListAllForAdmin(ctx, f)
	})
}

func newList(log *zap.Logger, op string, list listFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		page, err := list(r.Context(), a, filter)
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to list bookings")
			return
		}

		render.JSON(w, r, page)
	}
}
