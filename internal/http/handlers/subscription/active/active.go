// Package active реализует HTTP-обработчик получения активной подписки.
//
// Единственная операция чтения, для которой отсутствие результата —
// ошибка (404), а не пустой ответ.
package active

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/storage/repository"
)

// Handler управляет HTTP-запросами на получение активной подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения активной подписки.
type Service interface {
	GetActive(ctx context.Context, userID int64) (*models.Subscription, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Активная подписка
// @Description Возвращает текущую активную подписку пользователя.
// @Tags Subscriptions
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} models.SubscriptionResponse "Активная подписка"
// @Failure 401 {object} response.AuthErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Нет активной подписки"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/active [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.active"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.AuthError("unauthorized"))
		return
	}

	sub, err := h.service.GetActive(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoActiveSubscription) {
			log.Info("no active subscription", slog.Int64("user_id", userID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("No active subscription found."))
			return
		}
		log.Error("failed to get active subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get active subscription"))
		return
	}

	log.Info("active subscription found", slog.Int64("id", sub.ID))
	render.JSON(w, r, models.NewSubscriptionResponse(sub))
}
