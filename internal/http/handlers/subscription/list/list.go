// Package list реализует HTTP-обработчик истории подписок пользователя
// с курсорной пагинацией.
//
// Параметр cursor — ID последней строки предыдущей страницы; ответ
// содержит next_cursor_id для запроса следующей страницы (поле
// отсутствует, если страница пуста).
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	subservice "github.com/magabrotheeeer/subscription-manager/internal/services/subscription"
)

// Handler управляет HTTP-запросами на получение истории подписок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения истории подписок.
type Service interface {
	ListHistory(ctx context.Context, userID, cursor int64, perPage int) ([]*models.Subscription, int64, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// Page описывает страницу истории подписок.
type Page struct {
	Data         []models.SubscriptionResponse `json:"data"`
	PerPage      int                           `json:"per_page"`
	NextCursorID string                        `json:"next_cursor_id,omitempty"`
}

// ServeHTTP godoc
// @Summary История подписок
// @Description Возвращает страницу истории подписок пользователя по курсору.
// @Tags Subscriptions
// @Security BearerAuth
// @Produce  json
// @Param cursor query string false "ID последней строки предыдущей страницы"
// @Param per_page query int false "Размер страницы (по умолчанию 10, максимум 100)"
// @Success 200 {object} Page "Страница истории"
// @Failure 401 {object} response.AuthErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	cursor, err := strconv.ParseInt(r.URL.Query().Get("cursor"), 10, 64)
	if err != nil || cursor < 0 {
		cursor = 0
	}
	perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil || perPage <= 0 {
		perPage = subservice.DefaultPerPage
	}
	// В ответ уходит фактически применённый размер страницы.
	if perPage > subservice.MaxPerPage {
		perPage = subservice.MaxPerPage
	}

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.AuthError("unauthorized"))
		return
	}

	entries, nextCursor, err := h.service.ListHistory(r.Context(), userID, cursor, perPage)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list subscriptions"))
		return
	}

	page := Page{
		Data:    make([]models.SubscriptionResponse, 0, len(entries)),
		PerPage: perPage,
	}
	for _, e := range entries {
		page.Data = append(page.Data, models.NewSubscriptionResponse(e))
	}
	if nextCursor > 0 {
		page.NextCursorID = strconv.FormatInt(nextCursor, 10)
	}

	log.Info("list subscriptions", slog.Int("count", len(page.Data)))
	render.JSON(w, r, page)
}
