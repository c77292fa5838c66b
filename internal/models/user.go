// Package models содержит доменные структуры пользователя, плана и подписки,
// а также вспомогательные типы для приёма JSON-запросов и формирования ответов.
//
// Все даты хранятся в виде целого числа секунд Unix-эпохи, цены — в виде
// строки с фиксированной точностью (две цифры после запятой).
package models

import "strconv"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int64  // Уникальный идентификатор пользователя
	Email        string // Электронная почта (уникальная)
	FirstName    string // Имя
	LastName     string // Фамилия
	PasswordHash string // Хэш пароля пользователя
	CreatedAt    int64  // Дата создания, секунды Unix-эпохи
}

// RegisterUserRequest используется для приёма данных регистрации из JSON-запроса.
type RegisterUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required,min=3"`
	LastName  string `json:"last_name" validate:"required,min=3"`
}

// LoginRequest используется для приёма данных аутентификации из JSON-запроса.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse описывает ответ с данными пользователя без пароля.
// Идентификаторы и даты сериализуются строками.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedAt string `json:"created_at"`
}

// NewUserResponse преобразует User в UserResponse.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        strconv.FormatInt(u.ID, 10),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: strconv.FormatInt(u.CreatedAt, 10),
	}
}
