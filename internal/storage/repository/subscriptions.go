package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// subscriptionColumns — единый список колонок для выборок подписок.
const subscriptionColumns = `id, name, price, user_id, plan_id, start_date, end_date, is_active, created_at`

func scanSubscription(row interface{ Scan(dest ...any) error }) (*models.Subscription, error) {
	var item models.Subscription
	if err := row.Scan(&item.ID, &item.Name, &item.Price, &item.UserID, &item.PlanID,
		&item.StartDate, &item.EndDate, &item.IsActive, &item.CreatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateSubscription вставляет новую запись подписки одной транзакцией,
// предварительно деактивируя текущие активные записи пользователя.
// Транзакция начинается с блокировки строки пользователя, поэтому два
// конкурентных Subscribe сериализуются даже когда активных строк ещё
// нет: блокировка активных строк не даёт такой гарантии при пустом
// реестре. Инвариант «не более одной активной подписки на пользователя»
// сохраняется на всех путях записи.
func (s *Storage) CreateSubscription(ctx context.Context, entry models.Subscription) (*models.Subscription, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lock := `SELECT id FROM users WHERE id = $1 FOR UPDATE`
	var lockedID int64
	if err = tx.QueryRowContext(ctx, lock, entry.UserID).Scan(&lockedID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	deactivate := `UPDATE subscriptions
				   SET is_active = false, end_date = $2
				   WHERE user_id = $1 AND is_active = true`
	if _, err = tx.ExecContext(ctx, deactivate, entry.UserID, entry.StartDate); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	insert := `INSERT INTO subscriptions (name, price, user_id, plan_id, start_date,
				   end_date, is_active, created_at)
			   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			   RETURNING id`
	if err = tx.QueryRowContext(ctx, insert,
		entry.Name, entry.Price, entry.UserID, entry.PlanID, entry.StartDate,
		entry.EndDate, entry.IsActive, entry.CreatedAt).Scan(&entry.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &entry, nil
}

// FindActiveByUser возвращает текущую активную подписку пользователя:
// is_active = true и end_date в будущем, при нескольких совпадениях —
// последняя по created_at. Отсутствие — ErrNoActiveSubscription.
func (s *Storage) FindActiveByUser(ctx context.Context, userID, now int64) (*models.Subscription, error) {
	const op = "storage.FindActiveByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_id = $1
			    AND is_active = true
			    AND end_date > $2
			  ORDER BY created_at DESC, id DESC
			  LIMIT 1`
	result, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userID, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNoActiveSubscription)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpgradeSubscription атомарно переводит пользователя на новый план:
// блокирует активную строку (SELECT ... FOR UPDATE), деактивирует её
// и вставляет новый снимок плана. Проверка «тот же план» выполняется
// до каких-либо изменений: при ErrSamePlan активная подписка остаётся
// нетронутой.
func (s *Storage) UpgradeSubscription(ctx context.Context, userID, now int64, next models.Subscription) (*models.Subscription, error) {
	const op = "storage.UpgradeSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lock := `SELECT id, plan_id
			 FROM subscriptions
			 WHERE user_id = $1
			   AND is_active = true
			   AND end_date > $2
			 ORDER BY created_at DESC, id DESC
			 LIMIT 1
			 FOR UPDATE`
	var currentID, currentPlanID int64
	if err = tx.QueryRowContext(ctx, lock, userID, now).Scan(&currentID, &currentPlanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNoActiveSubscription)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if currentPlanID == next.PlanID {
		return nil, fmt.Errorf("%s: %w", op, ErrSamePlan)
	}

	deactivate := `UPDATE subscriptions
				   SET is_active = false, end_date = $2
				   WHERE id = $1`
	if _, err = tx.ExecContext(ctx, deactivate, currentID, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	insert := `INSERT INTO subscriptions (name, price, user_id, plan_id, start_date,
				   end_date, is_active, created_at)
			   VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			   RETURNING id`
	if err = tx.QueryRowContext(ctx, insert,
		next.Name, next.Price, next.UserID, next.PlanID, next.StartDate,
		next.EndDate, next.IsActive, next.CreatedAt).Scan(&next.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &next, nil
}

// CancelActive деактивирует текущую активную подписку пользователя.
// Операция идемпотентна: если активной подписки нет, возвращает (nil, nil).
func (s *Storage) CancelActive(ctx context.Context, userID, now int64) (*models.Subscription, error) {
	const op = "storage.CancelActive"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lock := `SELECT ` + subscriptionColumns + `
			 FROM subscriptions
			 WHERE user_id = $1
			   AND is_active = true
			   AND end_date > $2
			 ORDER BY created_at DESC, id DESC
			 LIMIT 1
			 FOR UPDATE`
	current, err := scanSubscription(tx.QueryRowContext(ctx, lock, userID, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	deactivate := `UPDATE subscriptions
				   SET is_active = false, end_date = $2
				   WHERE id = $1`
	if _, err = tx.ExecContext(ctx, deactivate, current.ID, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	current.IsActive = false
	current.EndDate = now
	return current, nil
}

// ListByUserPaged возвращает страницу истории подписок пользователя
// с курсорной пагинацией: cursor — ID последней строки предыдущей
// страницы, 0 — первая страница. ID растут вместе с порядком создания,
// поэтому предикат id < cursor согласован с ORDER BY created_at DESC.
func (s *Storage) ListByUserPaged(ctx context.Context, userID, cursor int64, limit int) ([]*models.Subscription, error) {
	const op = "storage.ListByUserPaged"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_id = $1
			    AND ($2::bigint = 0 OR id < $2)
			  ORDER BY created_at DESC, id DESC
			  LIMIT $3`
	rows, err := s.DB.QueryContext(ctx, query, userID, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Subscription
	for rows.Next() {
		item, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountActiveByUser возвращает число активных строк пользователя.
// Используется в тестах для проверки инварианта единственной активной подписки.
func (s *Storage) CountActiveByUser(ctx context.Context, userID int64) (int, error) {
	const op = "storage.CountActiveByUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM subscriptions WHERE user_id = $1 AND is_active = true`
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
