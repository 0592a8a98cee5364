package request

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

// ID разбирает положительный числовой параметр пути
func ID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s", name)
	}

	return id, nil
}

// Time принимает RFC3339 или дату YYYY-MM-DD (полночь UTC)
func Time(raw string) (time.Time, error) {
	t, _, err := parseTime(raw)
	return t, err
}

// EndTime как Time, но дата без времени означает конец этого дня:
// верхняя граница "по 4 марта" включает занятия 4 марта.
func EndTime(raw string) (time.Time, error) {
	t, dateOnly, err := parseTime(raw)
	if err != nil {
		return time.Time{}, err
	}
	if dateOnly {
		// точность timestamptz в Postgres - микросекунды
		t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	return t, nil
}

func parseTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), false, nil
	}

	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid time %q, expected RFC3339 or YYYY-MM-DD", raw)
	}

	return t, true, nil
}

// OptionalTime читает нижнюю границу из query; пустое значение даёт nil
func OptionalTime(r *http.Request, name string) (*time.Time, error) {
	return optional(r, name, Time)
}

// OptionalEndTime читает верхнюю границу из query; пустое значение даёт nil
func OptionalEndTime(r *http.Request, name string) (*time.Time, error) {
	return optional(r, name, EndTime)
}

func optional(r *http.Request, name string, parse func(string) (time.Time, error)) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}

	t, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return &t, nil
}

// Filter читает page, page_size, status, skill_id, start_date, end_date.
// Нормализация страницы остаётся за сервисами.
func Filter(r *http.Request) (model.BookingFilter, error) {
	q := r.URL.Query()
	var f model.BookingFilter

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return f, fmt.Errorf("invalid page")
		}
		f.Page = page
	}

	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return f, fmt.Errorf("invalid page_size")
		}
		f.PageSize = size
	}

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		f.Status = &raw
	}

	if raw := q.Get("skill_id"); raw != "" {
		skillID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid skill_id")
		}
		f.SkillID = &skillID
	}

	var err error
	if f.StartDate, err = OptionalTime(r, "start_date"); err != nil {
		return f, err
	}
	if f.EndDate, err = OptionalEndTime(r, "end_date"); err != nil {
		return f, err
	}

	return f, nil
}
