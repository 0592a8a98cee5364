package model

import "time"

type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Username  string    `json:"username"`
	IsTutor   bool      `json:"is_tutor"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName имя для показа в списках
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		name = u.Username
	}
	return name
}

// TutorProfile профиль преподавателя; ставка в минимальных единицах валюты
type TutorProfile struct {
	UserID     int64 `json:"user_id"`
	HourlyRate int64 `json:"hourly_rate"`
}
