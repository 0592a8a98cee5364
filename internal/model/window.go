package model

import (
	"fmt"
	"time"
)

// MinSlotDuration минимальная длительность слота и бронирования
const MinSlotDuration = 30 * time.Minute

// Window полуоткрытый интервал времени [Start, End)
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow приводит границы к UTC
func NewWindow(start, end time.Time) Window {
	return Window{Start: start.UTC(), End: end.UTC()}
}

// Duration длительность окна
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps проверяет пересечение: s1 < e2 AND s2 < e1.
// Окна, которые только касаются границами, не пересекаются.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Validate проверяет порядок границ, минимальную длительность и что окно не в прошлом
func (w Window) Validate(now time.Time) error {
	if w.Start.Before(now) {
		return fmt.Errorf("%w: start time must not be in the past", ErrValidation)
	}
	if !w.End.After(w.Start) {
		return fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}
	if w.Duration() < MinSlotDuration {
		return fmt.Errorf("%w: duration must be at least %d minutes", ErrValidation, int(MinSlotDuration.Minutes()))
	}
	return nil
}
