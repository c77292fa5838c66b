// Package upgrade реализует HTTP-обработчик повышения тарифного плана.
//
// Повышение атомарно деактивирует текущую активную подписку и создает
// новую. Попытка перейти на текущий план отклоняется без побочных
// эффектов: активная подписка остаётся нетронутой.
package upgrade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/storage/repository"
)

// Handler управляет HTTP-запросами на повышение плана.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики повышения плана.
type Service interface {
	Upgrade(ctx context.Context, userID, planID int64) (*models.Subscription, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Повысить тарифный план
// @Description Деактивирует текущую активную подписку и создает новую на указанный план.
// @Tags Subscriptions
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.CreateSubscriptionRequest true "Идентификатор нового плана"
// @Success 200 {object} models.SubscriptionResponse "Новая подписка"
// @Failure 400 {object} response.ErrorResponse "Неизвестный план или тот же план"
// @Failure 401 {object} response.AuthErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Нет активной подписки"
// @Failure 422 {object} response.ValidationResponse "Отсутствует plan_id"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/upgrade [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.upgrade"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.AuthError("unauthorized"))
		return
	}

	sub, err := h.service.Upgrade(r.Context(), userID, req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPlanNotFound):
			log.Error("plan not found", slog.Int64("plan_id", req.PlanID))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(
				fmt.Sprintf("Plan with id '%d' does not exists.", req.PlanID)))
		case errors.Is(err, repository.ErrNoActiveSubscription):
			log.Error("no active subscription", slog.Int64("user_id", userID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("No active subscription found."))
		case errors.Is(err, repository.ErrSamePlan):
			log.Error("upgrade to the same plan", slog.Int64("plan_id", req.PlanID))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(
				"You're already on this subscription plan. Please select a different plan to upgrade."))
		default:
			log.Error("failed to upgrade subscription", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not upgrade subscription"))
		}
		return
	}

	log.Info("upgraded subscription", slog.Int64("id", sub.ID))
	render.JSON(w, r, models.NewSubscriptionResponse(sub))
}
