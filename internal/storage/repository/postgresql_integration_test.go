package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	user := models.User{
		Email:        "user@example.com",
		FirstName:    "Ivan",
		LastName:     "Petrov",
		PasswordHash: "hashedpassword",
		CreatedAt:    time.Now().Unix(),
	}

	t.Run("создание и чтение пользователя", func(t *testing.T) {
		id, err := storage.CreateUser(ctx, user)
		require.NoError(t, err)
		require.NotZero(t, id)

		byEmail, err := storage.GetUserByEmail(ctx, "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, byEmail.ID)
		assert.Equal(t, user.FirstName, byEmail.FirstName)
		assert.Equal(t, user.PasswordHash, byEmail.PasswordHash)

		byID, err := storage.GetUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, byEmail, byID)
	})

	t.Run("повторная регистрация той же почты", func(t *testing.T) {
		_, err := storage.CreateUser(ctx, user)
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("несуществующий пользователь", func(t *testing.T) {
		_, err := storage.GetUserByEmail(ctx, "ghost@example.com")
		require.ErrorIs(t, err, ErrUserNotFound)

		_, err = storage.GetUser(ctx, 100500)
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestStorage_Plans(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("создание и чтение плана", func(t *testing.T) {
		id, err := storage.CreatePlan(ctx, models.Plan{
			Name: "basic", Price: "200.00", CreatedAt: time.Now().Unix(),
		})
		require.NoError(t, err)

		plan, err := storage.GetPlan(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "basic", plan.Name)
		assert.Equal(t, "200.00", plan.Price)
	})

	t.Run("имя плана уникально с учётом регистра", func(t *testing.T) {
		_, err := storage.CreatePlan(ctx, models.Plan{
			Name: "basic", Price: "300.00", CreatedAt: time.Now().Unix(),
		})
		require.ErrorIs(t, err, ErrDuplicatePlan)

		// Другой регистр — другое имя.
		_, err = storage.CreatePlan(ctx, models.Plan{
			Name: "Basic", Price: "300.00", CreatedAt: time.Now().Unix(),
		})
		require.NoError(t, err)
	})

	t.Run("несуществующий план", func(t *testing.T) {
		_, err := storage.GetPlan(ctx, 100500)
		require.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("список планов в порядке создания", func(t *testing.T) {
		plans, err := storage.ListPlans(ctx)
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, "basic", plans[0].Name)
		assert.Equal(t, "Basic", plans[1].Name)
	})
}

func TestStorage_CreateSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "user@example.com")
	basicID := factory.CreatePlan(t, "basic", "200.00")
	premiumID := factory.CreatePlan(t, "premium", "500.00")

	now := time.Now().Unix()
	first, err := storage.CreateSubscription(ctx, models.Subscription{
		Name: "basic", Price: "200.00", UserID: userID, PlanID: basicID,
		StartDate: now, EndDate: now + 30*24*3600, IsActive: true, CreatedAt: now,
	})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	// Повторная подписка деактивирует предыдущую в той же транзакции.
	second, err := storage.CreateSubscription(ctx, models.Subscription{
		Name: "premium", Price: "500.00", UserID: userID, PlanID: premiumID,
		StartDate: now + 10, EndDate: now + 10 + 30*24*3600, IsActive: true, CreatedAt: now + 10,
	})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	count, err := storage.CountActiveByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	active, err := storage.FindActiveByUser(ctx, userID, now+20)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, "premium", active.Name)
}

func TestStorage_CreateSubscription_Concurrent(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "user@example.com")
	planID := factory.CreatePlan(t, "basic", "200.00")
	now := time.Now().Unix()

	// Два одновременных оформления без существующей активной подписки:
	// сериализация идёт по строке пользователя, а не по активным строкам,
	// которых ещё нет.
	const workers = 2
	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := storage.CreateSubscription(ctx, models.Subscription{
				Name: "basic", Price: "200.00", UserID: userID, PlanID: planID,
				StartDate: now, EndDate: now + 30*24*3600, IsActive: true, CreatedAt: now,
			})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	count, err := storage.CountActiveByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Обе записи попали в историю, проигравшая — деактивированной.
	var total int
	err = storage.DB.QueryRow(
		`SELECT COUNT(*) FROM subscriptions WHERE user_id = $1`, userID).Scan(&total)
	require.NoError(t, err)
	assert.Equal(t, workers, total)
}

func TestStorage_FindActiveByUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "user@example.com")
	planID := factory.CreatePlan(t, "basic", "200.00")
	now := time.Now().Unix()

	t.Run("нет подписок вовсе", func(t *testing.T) {
		_, err := storage.FindActiveByUser(ctx, userID, now)
		require.ErrorIs(t, err, ErrNoActiveSubscription)
	})

	t.Run("активная строка с истёкшим сроком не возвращается", func(t *testing.T) {
		factory.CreateSubscription(t, models.Subscription{
			Name: "basic", Price: "200.00", UserID: userID, PlanID: planID,
			StartDate: now - 100, EndDate: now - 10, IsActive: true, CreatedAt: now - 100,
		})

		_, err := storage.FindActiveByUser(ctx, userID, now)
		require.ErrorIs(t, err, ErrNoActiveSubscription)
	})

	t.Run("действующая подписка возвращается", func(t *testing.T) {
		id := factory.CreateSubscription(t, models.Subscription{
			Name: "basic", Price: "200.00", UserID: userID, PlanID: planID,
			StartDate: now, EndDate: now + 3600, IsActive: true, CreatedAt: now,
		})

		active, err := storage.FindActiveByUser(ctx, userID, now)
		require.NoError(t, err)
		assert.Equal(t, id, active.ID)
		assert.True(t, active.IsActive)
	})
}

func TestStorage_UpgradeSubscription(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "user@example.com")
	basicID := factory.CreatePlan(t, "basic", "200.00")
	premiumID := factory.CreatePlan(t, "premium", "500.00")
	now := time.Now().Unix()

	next := func(planID int64, name, price string) models.Subscription {
		return models.Subscription{
			Name: name, Price: price, UserID: userID, PlanID: planID,
			StartDate: now, EndDate: now + 30*24*3600, IsActive: true, CreatedAt: now,
		}
	}

	t.Run("нет активной подписки", func(t *testing.T) {
		_, err := storage.UpgradeSubscription(ctx, userID, now, next(premiumID, "premium", "500.00"))
		require.ErrorIs(t, err, ErrNoActiveSubscription)
	})

	currentID := factory.CreateSubscription(t, models.Subscription{
		Name: "basic", Price: "200.00", UserID: userID, PlanID: basicID,
		StartDate: now - 100, EndDate: now + 3600, IsActive: true, CreatedAt: now - 100,
	})

	t.Run("переход на тот же план не меняет данные", func(t *testing.T) {
		_, err := storage.UpgradeSubscription(ctx, userID, now, next(basicID, "basic", "200.00"))
		require.ErrorIs(t, err, ErrSamePlan)

		// Активная подписка осталась нетронутой.
		active, err := storage.FindActiveByUser(ctx, userID, now)
		require.NoError(t, err)
		assert.Equal(t, currentID, active.ID)
		assert.True(t, active.IsActive)
	})

	t.Run("успешное повышение", func(t *testing.T) {
		upgraded, err := storage.UpgradeSubscription(ctx, userID, now, next(premiumID, "premium", "500.00"))
		require.NoError(t, err)
		assert.Greater(t, upgraded.ID, currentID)
		assert.Equal(t, "premium", upgraded.Name)

		count, err := storage.CountActiveByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		// Старая строка осталась в истории деактивированной.
		var oldActive bool
		var oldEndDate int64
		err = storage.DB.QueryRow(
			`SELECT is_active, end_date FROM subscriptions WHERE id = $1`, currentID).
			Scan(&oldActive, &oldEndDate)
		require.NoError(t, err)
		assert.False(t, oldActive)
		assert.Equal(t, now, oldEndDate)
	})
}

func TestStorage_CancelActive(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "user@example.com")
	planID := factory.CreatePlan(t, "basic", "200.00")
	now := time.Now().Unix()

	id := factory.CreateSubscription(t, models.Subscription{
		Name: "basic", Price: "200.00", UserID: userID, PlanID: planID,
		StartDate: now - 100, EndDate: now + 3600, IsActive: true, CreatedAt: now - 100,
	})

	t.Run("отмена деактивирует подписку", func(t *testing.T) {
		cancelled, err := storage.CancelActive(ctx, userID, now)
		require.NoError(t, err)
		require.NotNil(t, cancelled)
		assert.Equal(t, id, cancelled.ID)
		assert.False(t, cancelled.IsActive)
		assert.Equal(t, now, cancelled.EndDate)

		count, err := storage.CountActiveByUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("повторная отмена идемпотентна", func(t *testing.T) {
		cancelled, err := storage.CancelActive(ctx, userID, now)
		require.NoError(t, err)
		assert.Nil(t, cancelled)
	})
}

func TestStorage_ListByUserPaged(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "user@example.com")
	otherID := factory.CreateUser(t, "other@example.com")
	planID := factory.CreatePlan(t, "basic", "200.00")

	base := time.Now().Unix()
	const total = 500
	var firstID int64
	for i := range total {
		id := factory.CreateSubscription(t, models.Subscription{
			Name: "basic", Price: "200.00", UserID: userID, PlanID: planID,
			StartDate: base + int64(i), EndDate: base + int64(i) + 3600,
			IsActive: false, CreatedAt: base + int64(i),
		})
		if i == 0 {
			firstID = id
		}
	}
	// Чужая история не должна попадать в выборку.
	factory.CreateSubscription(t, models.Subscription{
		Name: "basic", Price: "200.00", UserID: otherID, PlanID: planID,
		StartDate: base, EndDate: base + 3600, IsActive: true, CreatedAt: base,
	})

	t.Run("обход всей истории по курсору", func(t *testing.T) {
		seen := make(map[int64]bool)
		var cursor int64
		var pages int

		for {
			page, err := storage.ListByUserPaged(ctx, userID, cursor, 50)
			require.NoError(t, err)
			if len(page) == 0 {
				break
			}
			pages++

			for i, entry := range page {
				assert.Equal(t, userID, entry.UserID)
				assert.False(t, seen[entry.ID], "запись %d встретилась дважды", entry.ID)
				seen[entry.ID] = true
				if i > 0 {
					// Новые записи раньше старых.
					assert.Greater(t, page[i-1].CreatedAt, entry.CreatedAt)
				}
			}
			cursor = page[len(page)-1].ID
		}

		assert.Equal(t, 10, pages)
		assert.Len(t, seen, total)
	})

	t.Run("страница меньше лимита на конце истории", func(t *testing.T) {
		// Курсор посреди пяти старейших записей.
		last, err := storage.ListByUserPaged(ctx, userID, firstID+5, 10)
		require.NoError(t, err)
		assert.Len(t, last, 5)
	})

	t.Run("история незнакомого пользователя пуста", func(t *testing.T) {
		page, err := storage.ListByUserPaged(ctx, 100500, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, page)
	})
}
