// Package services содержит бизнес-логику жизненного цикла подписок
// и чтения истории с курсорной пагинацией.
//
// Менеджер жизненного цикла — единственный писатель реестра подписок.
// Инвариант: у пользователя в любой момент не более одной активной
// подписки; все мутации выполняются в одной транзакции хранилища.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/term"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// DefaultPerPage — размер страницы истории по умолчанию.
const DefaultPerPage = 10

// MaxPerPage — верхняя граница размера страницы истории.
const MaxPerPage = 100

const activeCacheTTL = time.Hour

// SubscriptionRepository определяет методы реестра подписок в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription вставляет запись, деактивировав текущие активные.
	CreateSubscription(ctx context.Context, entry models.Subscription) (*models.Subscription, error)
	// UpgradeSubscription атомарно деактивирует активную запись и вставляет новую.
	UpgradeSubscription(ctx context.Context, userID, now int64, next models.Subscription) (*models.Subscription, error)
	// CancelActive деактивирует активную запись, (nil, nil) если её нет.
	CancelActive(ctx context.Context, userID, now int64) (*models.Subscription, error)
	// FindActiveByUser возвращает активную запись пользователя.
	FindActiveByUser(ctx context.Context, userID, now int64) (*models.Subscription, error)
	// ListByUserPaged возвращает страницу истории по курсору.
	ListByUserPaged(ctx context.Context, userID, cursor int64, limit int) ([]*models.Subscription, error)
	// GetPlan возвращает план каталога по ID.
	GetPlan(ctx context.Context, planID int64) (*models.Plan, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// EventPublisher публикует события жизненного цикла подписок в брокер.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// SubscriptionService реализует жизненный цикл подписок и чтение истории.
type SubscriptionService struct {
	repo   SubscriptionRepository
	cache  Cache
	events EventPublisher
	log    *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, events EventPublisher, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:   repo,
		cache:  cache,
		events: events,
		log:    log,
	}
}

func activeCacheKey(userID int64) string {
	return fmt.Sprintf("subscription:active:%d", userID)
}

// Subscribe оформляет подписку на план: снимок имени и цены плана,
// срок 30 дней с текущего момента. Существующая активная подписка
// деактивируется в той же транзакции, сохраняя инвариант единственной
// активной записи. Неизвестный план — repository.ErrPlanNotFound.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, planID int64) (*models.Subscription, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	now := term.Now()
	entry := models.Subscription{
		Name:      plan.Name,
		Price:     plan.Price,
		UserID:    userID,
		PlanID:    plan.ID,
		StartDate: now,
		EndDate:   term.EndDate(now),
		IsActive:  true,
		CreatedAt: now,
	}

	sub, err := s.repo.CreateSubscription(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.log.Info("created new subscription",
		slog.Int64("id", sub.ID), slog.Int64("user_id", userID))

	s.cacheActive(sub)
	s.publishEvent(models.EventSubscriptionCreated, sub)
	return sub, nil
}

// Upgrade переводит пользователя на новый план: активная подписка
// деактивируется и создаётся новый снимок одной атомарной транзакцией.
// Ошибки хранилища проходят наверх без изменений: ErrPlanNotFound,
// ErrNoActiveSubscription, ErrSamePlan (проверяется до мутаций,
// активная подписка при отказе остаётся нетронутой).
func (s *SubscriptionService) Upgrade(ctx context.Context, userID, planID int64) (*models.Subscription, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	now := term.Now()
	next := models.Subscription{
		Name:      plan.Name,
		Price:     plan.Price,
		UserID:    userID,
		PlanID:    plan.ID,
		StartDate: now,
		EndDate:   term.EndDate(now),
		IsActive:  true,
		CreatedAt: now,
	}

	sub, err := s.repo.UpgradeSubscription(ctx, userID, now, next)
	if err != nil {
		return nil, err
	}
	s.log.Info("upgraded subscription",
		slog.Int64("id", sub.ID), slog.Int64("user_id", userID), slog.Int64("plan_id", planID))

	s.cacheActive(sub)
	s.publishEvent(models.EventSubscriptionUpgraded, sub)
	return sub, nil
}

// Cancel деактивирует активную подписку пользователя. Операция
// идемпотентна: отсутствие активной подписки — не ошибка.
func (s *SubscriptionService) Cancel(ctx context.Context, userID int64) error {
	cancelled, err := s.repo.CancelActive(ctx, userID, term.Now())
	if err != nil {
		return err
	}

	if err := s.cache.Invalidate(activeCacheKey(userID)); err != nil {
		s.log.Warn("failed to invalidate active subscription cache",
			slog.Int64("user_id", userID), sl.Err(err))
	}

	if cancelled == nil {
		s.log.Info("cancel without active subscription", slog.Int64("user_id", userID))
		return nil
	}
	s.log.Info("cancelled subscription",
		slog.Int64("id", cancelled.ID), slog.Int64("user_id", userID))
	s.publishEvent(models.EventSubscriptionCancelled, cancelled)
	return nil
}

// GetActive возвращает активную подписку пользователя, используя кеш
// или реестр. Отсутствие — repository.ErrNoActiveSubscription.
func (s *SubscriptionService) GetActive(ctx context.Context, userID int64) (*models.Subscription, error) {
	now := term.Now()
	var cached models.Subscription
	found, err := s.cache.Get(activeCacheKey(userID), &cached)
	if err != nil {
		s.log.Warn("failed to read active subscription cache",
			slog.Int64("user_id", userID), sl.Err(err))
	}
	// Кешированная запись могла истечь по сроку.
	if found && cached.IsActive && cached.EndDate > now {
		return &cached, nil
	}

	sub, err := s.repo.FindActiveByUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	s.cacheActive(sub)
	return sub, nil
}

// ListHistory возвращает страницу истории подписок пользователя.
// cursor — ID последней строки предыдущей страницы (0 — первая
// страница). Второе возвращаемое значение — курсор следующей страницы,
// 0 для пустой страницы.
func (s *SubscriptionService) ListHistory(ctx context.Context, userID, cursor int64, perPage int) ([]*models.Subscription, int64, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	entries, err := s.repo.ListByUserPaged(ctx, userID, cursor, perPage)
	if err != nil {
		return nil, 0, err
	}
	var nextCursor int64
	if len(entries) > 0 {
		nextCursor = entries[len(entries)-1].ID
	}
	return entries, nextCursor, nil
}

// cacheActive обновляет кеш активной подписки; отказ кеша не считается
// ошибкой операции.
func (s *SubscriptionService) cacheActive(sub *models.Subscription) {
	key := activeCacheKey(sub.UserID)
	if err := s.cache.Set(key, sub, activeCacheTTL); err != nil {
		s.log.Warn("failed to cache active subscription", slog.String("key", key), sl.Err(err))
	}
}

// publishEvent публикует событие жизненного цикла; отказ брокера не
// считается ошибкой операции.
func (s *SubscriptionService) publishEvent(eventType string, sub *models.Subscription) {
	event := models.SubscriptionEvent{
		EventID:        uuid.New().String(),
		Type:           eventType,
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		PlanID:         sub.PlanID,
		OccurredAt:     term.Now(),
	}
	if err := s.events.Publish(eventType, event); err != nil {
		s.log.Warn("failed to publish subscription event",
			slog.String("type", eventType), slog.Int64("subscription_id", sub.ID), sl.Err(err))
	}
}
