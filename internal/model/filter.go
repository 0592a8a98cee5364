package model

import (
	"math"
	"time"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage предел номера страницы, при котором смещение ещё не переполняет int
	MaxPage = math.MaxInt / MaxPageSize
)

// BookingFilter общий фильтр постраничных выборок бронирований, сессий и слотов
type BookingFilter struct {
	Page      int        `json:"page"`
	PageSize  int        `json:"page_size"`
	Status    *string    `json:"status"`
	SkillID   *int64     `json:"skill_id"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// Normalized подставляет значения по умолчанию для страницы и её размера
func (f BookingFilter) Normalized() BookingFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	return f
}

// Offset смещение для SQL
func (f BookingFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Page одна страница выборки и общее количество записей
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// NewPage собирает страницу по нормализованному фильтру
func NewPage[T any](items []T, total int, f BookingFilter) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize}
}
