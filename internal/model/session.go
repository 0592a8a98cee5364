package model

import "time"

// ServiceFeePercent комиссия платформы от базовой цены
const ServiceFeePercent = 30

type Session struct {
	ID            int64     `json:"id"`
	BookingID     int64     `json:"booking_id"`
	VideoCallLink string    `json:"video_call_link"`
	Notes         string    `json:"notes"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	BasePrice     int64     `json:"base_price"`
	ServiceFee    int64     `json:"service_fee"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ComputePrice считает стоимость по целым минутам: rate * minutes / 60,
// комиссия ServiceFeePercent от базовой цены
func ComputePrice(w Window, hourlyRate int64) (basePrice, serviceFee int64) {
	minutes := int64(w.Duration() / time.Minute)
	basePrice = hourlyRate * minutes / 60
	serviceFee = basePrice * ServiceFeePercent / 100
	return basePrice, serviceFee
}
