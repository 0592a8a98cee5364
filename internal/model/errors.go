package model

import (
	"errors"
	"fmt"
)

// Классы ошибок ядра. Конкретные ошибки оборачивают один из них,
// поэтому вызывающий код классифицирует их через errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

var (
	ErrSlotNotFound    = fmt.Errorf("slot %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
)

var (
	ErrSlotAlreadyBooked = fmt.Errorf("%w: slot is already booked", ErrValidation)
	ErrSlotOverlap       = fmt.Errorf("%w: slot overlaps an existing slot of the tutor", ErrValidation)
	ErrBookingConflict   = fmt.Errorf("%w: tutor already has a booking in this time range", ErrValidation)
	ErrSessionExists     = fmt.Errorf("%w: session already exists for this booking", ErrValidation)
	ErrInvalidStatus     = fmt.Errorf("%w: unknown booking status", ErrValidation)
	ErrNotParticipant    = fmt.Errorf("%w: actor is not a participant of the booking", ErrForbidden)
)

// ErrReservationBusy другой запрос прямо сейчас бронирует время этого преподавателя
var ErrReservationBusy = fmt.Errorf("%w: tutor schedule is being booked by another request, try again", ErrValidation)
