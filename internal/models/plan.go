package models

import "strconv"

// Plan представляет тарифный план из каталога.
// Каталог небольшой и ограниченный, планы не удаляются.
type Plan struct {
	ID        int64  // Уникальный идентификатор плана
	Name      string // Название плана (уникальное, с учётом регистра)
	Price     string // Цена в виде строки с фиксированной точностью, например "200.00"
	CreatedAt int64  // Дата создания, секунды Unix-эпохи
}

// CreatePlanRequest используется для приёма данных нового плана из JSON-запроса.
// Price принимается числом и приводится к канонической строке с двумя знаками.
type CreatePlanRequest struct {
	Name  string   `json:"name" validate:"required,min=3"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

// PlanResponse описывает ответ с данными плана.
// Идентификаторы и даты сериализуются строками, цена — фиксированной десятичной строкой.
type PlanResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	CreatedAt string `json:"created_at"`
}

// NewPlanResponse преобразует Plan в PlanResponse.
func NewPlanResponse(p *Plan) PlanResponse {
	return PlanResponse{
		ID:        strconv.FormatInt(p.ID, 10),
		Name:      p.Name,
		Price:     p.Price,
		CreatedAt: strconv.FormatInt(p.CreatedAt, 10),
	}
}

// FormatPrice приводит число к канонической денежной строке с двумя знаками.
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64)
}
