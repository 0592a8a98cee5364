package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorbook/internal/model"
	"go.uber.org/zap"
)

// PaymentService принимает сигналы платёжного шлюза. Сам шлюз сюда не входит.
type PaymentService struct {
	tx       Transactor
	bookings BookingStore
	logger   *zap.Logger
}

func NewPaymentService(tx Transactor, bookings BookingStore, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		tx:       tx,
		bookings: bookings,
		logger:   logger,
	}
}

// MarkProcessing отмечает начало оплаты бронирования
func (s *PaymentService) MarkProcessing(ctx context.Context, bookingID int64) (*model.Booking, error) {
	var booking *model.Booking

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.GetByIDForUpdate(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("get booking: %w", err)
		}

		if booking == nil {
			return model.ErrBookingNotFound
		}

		if !booking.Status.HoldsSlot() {
			return fmt.Errorf("%w: cannot pay for a %s booking", model.ErrValidation, booking.Status)
		}

		switch booking.PaymentStatus {
		case model.PaymentStatusPaid:
			return fmt.Errorf("%w: booking is already paid", model.ErrValidation)
		case model.PaymentStatusProcessing:
			return nil
		}

		if err := s.bookings.UpdatePaymentStatus(ctx, booking.ID, model.PaymentStatusProcessing); err != nil {
			return err
		}

		booking.PaymentStatus = model.PaymentStatusProcessing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment started",
		zap.Int64("booking_id", booking.ID),
		zap.String("order_code", booking.OrderCode),
	)

	return booking, nil
}

// MarkPaid обрабатывает подтверждение оплаты по коду заказа.
// Повторное подтверждение ничего не меняет.
func (s *PaymentService) MarkPaid(ctx context.Context, orderCode string) (*model.Booking, error) {
	booking, err := s.bookings.GetByOrderCode(ctx, orderCode)
	if err != nil {
		return nil, fmt.Errorf("get booking by order code: %w", err)
	}

	if booking == nil {
		return nil, fmt.Errorf("%w: order code %q", model.ErrBookingNotFound, orderCode)
	}

	if booking.PaymentStatus == model.PaymentStatusPaid {
		s.logger.Info("Payment already confirmed",
			zap.Int64("booking_id", booking.ID),
			zap.String("order_code", orderCode),
		)
		return booking, nil
	}

	if err := s.bookings.UpdatePaymentStatus(ctx, booking.ID, model.PaymentStatusPaid); err != nil {
		return nil, err
	}

	booking.PaymentStatus = model.PaymentStatusPaid

	s.logger.Info("Payment confirmed",
		zap.Int64("booking_id", booking.ID),
		zap.String("order_code", orderCode),
		zap.String("booking_status", string(booking.Status)),
	)

	return booking, nil
}
