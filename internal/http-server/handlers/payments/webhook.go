package payments

import (
	"context"
	"net/http"
	"strings"

	"github.com/Freeeeeet/tutorbook/internal/http-server/response"
	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

const statusPaid = "PAID"

type PaymentConfirmer interface {
	MarkPaid(ctx context.Context, orderCode string) (*model.Booking, error)
}

type WebhookRequest struct {
	OrderCode string `json:"order_code"`
	Status    string `json:"status"`
}

type WebhookResponse struct {
	response.Response
	BookingID     int64               `json:"booking_id,omitempty"`
	PaymentStatus model.PaymentStatus `json:"payment_status,omitempty"`
	Ignored       bool                `json:"ignored,omitempty"`
}

// NewWebhook принимает уведомление платёжного шлюза. Подпись проверяет шлюз перед сервисом.
// Статусы кроме PAID подтверждаются без изменений, чтобы шлюз не повторял доставку.
func NewWebhook(log *zap.Logger, svc PaymentConfirmer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.payments.Webhook"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req WebhookRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", zap.Error(err))
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, "failed to decode request")
			return
		}

		req.OrderCode = strings.TrimSpace(req.OrderCode)
		if req.OrderCode == "" {
			response.Fail(w, r, http.StatusBadRequest, response.BAD_REQUEST, "order_code is required")
			return
		}

		if !strings.EqualFold(strings.TrimSpace(req.Status), statusPaid) {
			log.Info("Payment webhook ignored",
				zap.String("order_code", req.OrderCode),
				zap.String("status", req.Status),
			)
			render.JSON(w, r, WebhookResponse{Ignored: true})
			return
		}

		booking, err := svc.MarkPaid(r.Context(), req.OrderCode)
		if err != nil {
			response.FailWithError(w, r, log, err, "failed to confirm payment")
			return
		}

		render.JSON(w, r, WebhookResponse{
			BookingID:     booking.ID,
			PaymentStatus: booking.PaymentStatus,
		})
	}
}
