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

type PayResponse struct {
	BookingID     int64               `json:"booking_id"`
	OrderCode     string              `json:"order_code"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
}

// NewPay отмечает начало оплаты; order_code передаётся платёжному шлюзу и возвращается в вебхуке
func NewPay(log *zap.Logger, svc BookingService, payments PaymentStarter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.Pay"

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
			response.FailWithError(w, r, log, err, "failed to start payment")
			return
		}

		if !a.IsAdmin && a.ID != booking.StudentID {
			response.FailWithError(w, r, log, model.ErrNotParticipant, "failed to start payment")
			return
		}

		booking, err = payments.MarkProcessing(r.Context(), id)
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to start payment")
			return
		}

		render.JSON(w, r, PayResponse{
			BookingID:     booking.ID,
			OrderCode:     booking.OrderCode,
			PaymentStatus: booking.PaymentStatus,
		})
	}
}
