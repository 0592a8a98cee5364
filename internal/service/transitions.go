package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/model"
)

// Role роль участника по отношению к конкретному бронированию
type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleAdmin   Role = "admin"
)

type transitionRule struct {
	roles        []Role
	requireEnded bool // переход разрешён только после окончания занятия
}

func (r transitionRule) allows(role Role) bool {
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

func (r transitionRule) who() string {
	names := make([]string, len(r.roles))
	for i, role := range r.roles {
		names[i] = string(role)
	}
	return strings.Join(names, " or ")
}

// bookingTransitions все разрешённые переходы. Чего нет в таблице, то запрещено.
// Подтверждённое бронирование отклонить нельзя: только завершить или отменить.
var bookingTransitions = map[model.BookingStatus]map[model.BookingStatus]transitionRule{
	model.BookingStatusPending: {
		model.BookingStatusConfirmed: {roles: []Role{RoleTutor, RoleAdmin}},
		model.BookingStatusRejected:  {roles: []Role{RoleTutor, RoleAdmin}},
		model.BookingStatusCancelled: {roles: []Role{RoleStudent, RoleAdmin}},
	},
	model.BookingStatusConfirmed: {
		model.BookingStatusCompleted: {roles: []Role{RoleTutor, RoleAdmin}, requireEnded: true},
		model.BookingStatusCancelled: {roles: []Role{RoleStudent, RoleAdmin}},
	},
}

// actorRole определяет роль; админ важнее участия в бронировании
func actorRole(booking *model.Booking, actorID int64, actorIsAdmin bool) (Role, error) {
	switch {
	case actorIsAdmin:
		return RoleAdmin, nil
	case actorID == booking.StudentID:
		return RoleStudent, nil
	case actorID == booking.TutorID:
		return RoleTutor, nil
	}
	return "", model.ErrNotParticipant
}

// checkTransition проверяет переход по таблице и возвращает ошибку с конкретной причиной
func checkTransition(booking *model.Booking, to model.BookingStatus, role Role, now time.Time) error {
	from := booking.Status

	if from == to {
		return fmt.Errorf("%w: booking is already %s", model.ErrValidation, strings.ToLower(string(from)))
	}

	rule, ok := bookingTransitions[from][to]
	if !ok {
		return illegalTransition(from, to)
	}

	if !rule.allows(role) {
		return fmt.Errorf("%w: only the %s may move a booking to %s", model.ErrValidation, rule.who(), strings.ToLower(string(to)))
	}

	if rule.requireEnded && now.Before(booking.EndTime) {
		return fmt.Errorf("%w: cannot complete a future booking", model.ErrValidation)
	}

	return nil
}

func illegalTransition(from, to model.BookingStatus) error {
	var reason string
	switch {
	case from == model.BookingStatusCompleted && to == model.BookingStatusCancelled:
		reason = "cannot cancel a completed booking"
	case to == model.BookingStatusRejected:
		reason = "only pending bookings can be rejected"
	case from.IsTerminal():
		reason = fmt.Sprintf("cannot move a %s booking to %s", strings.ToLower(string(from)), strings.ToLower(string(to)))
	case to == model.BookingStatusCompleted:
		reason = "only confirmed bookings can be completed"
	default:
		reason = fmt.Sprintf("cannot move booking from %s to %s", strings.ToLower(string(from)), strings.ToLower(string(to)))
	}
	return fmt.Errorf("%w: %s", model.ErrValidation, reason)
}
