package repository

import "errors"

// Ошибки уровня хранилища, которые сервисы транслируют в HTTP-коды.
var (
	// ErrUserNotFound возвращается, когда пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail возвращается при регистрации с занятой почтой.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrPlanNotFound возвращается, когда план с указанным ID не существует.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrDuplicatePlan возвращается при создании плана с занятым именем.
	ErrDuplicatePlan = errors.New("plan already exists")
	// ErrNoActiveSubscription возвращается, когда у пользователя нет активной подписки.
	ErrNoActiveSubscription = errors.New("no active subscription")
	// ErrSamePlan возвращается при попытке повышения на текущий план.
	ErrSamePlan = errors.New("already on this plan")
)
