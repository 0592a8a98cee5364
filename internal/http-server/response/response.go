package response

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    ErrCode `json:"code"`
	Message string  `json:"message"`
}

// Error Codes
type ErrCode string

const (
	FAILED_REQUEST    ErrCode = "REQUEST_FAILED"
	BAD_REQUEST       ErrCode = "FAILED_TO_DECODE"
	VALIDATION_FAILED ErrCode = "VALIDATION_FAILED"
	UNAUTHORIZED      ErrCode = "UNAUTHORIZED"
	FORBIDDEN         ErrCode = "FORBIDDEN"
	NOT_FOUND         ErrCode = "NOT_FOUND"
	CONFLICT          ErrCode = "CONFLICT"
	LOCKED            ErrCode = "LOCKED"
)

func Error(code ErrCode, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

// Fail пишет ответ с ошибкой и статусом
func Fail(w http.ResponseWriter, r *http.Request, status int, code ErrCode, msg string) {
	render.Status(r, status)
	render.JSON(w, r, Error(code, msg))
}

// FromError классифицирует ошибку ядра. Сообщения доменных ошибок отдаются клиенту как есть,
// внутренние заменяются на fallback.
func FromError(err error, fallback string) (int, ErrCode, string) {
	switch {
	case errors.Is(err, model.ErrReservationBusy):
		return http.StatusLocked, LOCKED, err.Error()
	case errors.Is(err, model.ErrSlotAlreadyBooked),
		errors.Is(err, model.ErrSlotOverlap),
		errors.Is(err, model.ErrBookingConflict),
		errors.Is(err, model.ErrSessionExists):
		return http.StatusConflict, CONFLICT, err.Error()
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, VALIDATION_FAILED, err.Error()
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, NOT_FOUND, err.Error()
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, FORBIDDEN, err.Error()
	default:
		return http.StatusInternalServerError, FAILED_REQUEST, fallback
	}
}

// FailWithError пишет ответ по ошибке ядра; внутренние ошибки логируются как Error
func FailWithError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, fallback string) {
	status, code, msg := FromError(err, fallback)

	if status == http.StatusInternalServerError {
		log.Error(fallback, zap.Error(err))
	} else {
		log.Info("Request rejected", zap.Int("status", status), zap.String("reason", msg))
	}

	Fail(w, r, status, code, msg)
}
