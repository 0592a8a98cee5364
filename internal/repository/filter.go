package repository

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutorbook/internal/model"
)

// where собирает условия WHERE с позиционными параметрами $1, $2, ...
type where struct {
	conds []string
	args  []any
}

// arg добавляет параметр и возвращает его плейсхолдер
func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *where) add(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// window пересечение с окном фильтра включительно: start <= to AND end >= from
func (w *where) window(f model.BookingFilter, startCol, endCol string) {
	if f.StartDate != nil {
		w.add(fmt.Sprintf("%s >= %s", endCol, w.arg(f.StartDate.UTC())))
	}
	if f.EndDate != nil {
		w.add(fmt.Sprintf("%s <= %s", startCol, w.arg(f.EndDate.UTC())))
	}
}

// bookingStatus нераспознанный статус игнорируется
func (w *where) bookingStatus(f model.BookingFilter, col string) {
	if f.Status == nil {
		return
	}
	if status, ok := model.ParseBookingStatus(*f.Status); ok {
		w.add(fmt.Sprintf("%s = %s", col, w.arg(status)))
	}
}

func (w *where) skill(f model.BookingFilter, col string) {
	if f.SkillID != nil {
		w.add(fmt.Sprintf("%s = %s", col, w.arg(*f.SkillID)))
	}
}

// page добавляет сортировку по началу (новые первыми) и LIMIT/OFFSET
func (w *where) page(f model.BookingFilter, startCol, idCol string) string {
	return fmt.Sprintf("ORDER BY %s DESC, %s DESC LIMIT %s OFFSET %s",
		startCol, idCol, w.arg(f.PageSize), w.arg(f.Offset()))
}
