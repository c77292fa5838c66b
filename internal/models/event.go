package models

// Типы событий жизненного цикла подписки, публикуемых в брокер.
const (
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionUpgraded  = "subscription.upgraded"
	EventSubscriptionCancelled = "subscription.cancelled"
)

// SubscriptionEvent описывает событие жизненного цикла подписки.
type SubscriptionEvent struct {
	EventID        string `json:"event_id"`        // Уникальный идентификатор события (uuid)
	Type           string `json:"type"`            // Тип события
	UserID         int64  `json:"user_id"`         // Владелец подписки
	SubscriptionID int64  `json:"subscription_id"` // Затронутая подписка
	PlanID         int64  `json:"plan_id"`         // План подписки
	OccurredAt     int64  `json:"occurred_at"`     // Момент события, секунды Unix-эпохи
}
