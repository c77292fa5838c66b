// Package plancreate реализует HTTP-обработчик создания тарифного плана.
//
// Занятое имя плана возвращается как ошибка валидации (422),
// в одном формате с нарушениями длины имени и отрицательной ценой.
package plancreate

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

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/storage/repository"
)

// Handler управляет HTTP-запросами на создание планов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики каталога планов.
type Service interface {
	Create(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error)
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
// @Summary Создать тарифный план
// @Description Добавляет план в каталог. Имя уникально с учётом регистра.
// @Tags Plans
// @Accept  json
// @Produce  json
// @Param request body models.CreatePlanRequest true "Данные нового плана"
// @Success 200 {object} models.PlanResponse "Созданный план"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ValidationResponse "Ошибка валидации или занятое имя"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreatePlanRequest
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

	plan, err := h.service.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePlan) {
			log.Error("plan name already exists", slog.String("name", req.Name))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.FieldError("name",
				fmt.Sprintf("Plan '%s' already exists.", req.Name)))
			return
		}
		log.Error("failed to create plan", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create plan"))
		return
	}

	log.Info("created new plan", slog.Int64("id", plan.ID))
	render.JSON(w, r, models.NewPlanResponse(plan))
}
