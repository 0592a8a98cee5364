package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutorbook/internal/model"
	"github.com/Freeeeeet/tutorbook/internal/repository/base"
)

// UserRepository читает пользователей и профили преподавателей.
// Учётные записи ведёт внешний сервис; здесь только чтение.
type UserRepository struct {
	db *base.Repository
}

func NewUserRepository(db *base.Repository) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, first_name, last_name, username, is_tutor, created_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.IsTutor,
		&user.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}

// GetTutorProfile получает профиль преподавателя
func (r *UserRepository) GetTutorProfile(ctx context.Context, userID int64) (*model.TutorProfile, error) {
	query := `SELECT user_id, hourly_rate FROM tutor_profiles WHERE user_id = $1`

	var profile model.TutorProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(&profile.UserID, &profile.HourlyRate)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tutor profile: %w", err)
	}

	return &profile, nil
}

// DisplayName возвращает имя пользователя для показа
func (r *UserRepository) DisplayName(ctx context.Context, userID int64) (string, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", fmt.Errorf("%w: id %d", model.ErrUserNotFound, userID)
	}
	return user.DisplayName(), nil
}

// HourlyRate возвращает ставку преподавателя
func (r *UserRepository) HourlyRate(ctx context.Context, tutorID int64) (int64, error) {
	profile, err := r.GetTutorProfile(ctx, tutorID)
	if err != nil {
		return 0, err
	}
	if profile == nil {
		return 0, fmt.Errorf("%w: tutor profile %d", model.ErrNotFound, tutorID)
	}
	return profile.HourlyRate, nil
}
