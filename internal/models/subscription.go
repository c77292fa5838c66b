package models

import "strconv"

// Subscription представляет запись подписки пользователя.
//
// Поля Name и Price — снимок данных плана на момент создания: последующее
// изменение цены плана не влияет на существующие подписки. После создания
// изменяемыми остаются только IsActive и EndDate (деактивация ставит
// IsActive=false и EndDate=now). Записи никогда не удаляются.
type Subscription struct {
	ID        int64  // Уникальный идентификатор, монотонно растёт с порядком создания
	Name      string // Название плана на момент создания
	Price     string // Цена плана на момент создания, строка с фиксированной точностью
	UserID    int64  // Владелец подписки
	PlanID    int64  // План, по которому оформлена подписка
	StartDate int64  // Дата начала, секунды Unix-эпохи
	EndDate   int64  // Дата окончания: start + 30 дней, либо момент деактивации
	IsActive  bool   // Признак активности
	CreatedAt int64  // Дата создания записи, секунды Unix-эпохи
}

// CreateSubscriptionRequest используется для приёма запроса подписки
// и повышения плана из JSON-запроса.
type CreateSubscriptionRequest struct {
	PlanID int64 `json:"plan_id" validate:"required"`
}

// SubscriptionResponse описывает ответ с данными подписки.
// Идентификаторы и даты сериализуются строками, цена — фиксированной
// десятичной строкой, is_active — булевым значением.
type SubscriptionResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	UserID    string `json:"user_id"`
	PlanID    string `json:"plan_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// NewSubscriptionResponse преобразует Subscription в SubscriptionResponse.
func NewSubscriptionResponse(s *Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:        strconv.FormatInt(s.ID, 10),
		Name:      s.Name,
		Price:     s.Price,
		UserID:    strconv.FormatInt(s.UserID, 10),
		PlanID:    strconv.FormatInt(s.PlanID, 10),
		StartDate: strconv.FormatInt(s.StartDate, 10),
		EndDate:   strconv.FormatInt(s.EndDate, 10),
		IsActive:  s.IsActive,
		CreatedAt: strconv.FormatInt(s.CreatedAt, 10),
	}
}
