// Package services содержит бизнес-логику каталога тарифных планов.
package services

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/subscription-manager/internal/lib/term"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// PlanRepository определяет методы для работы с каталогом планов в хранилище.
type PlanRepository interface {
	// CreatePlan добавляет новый план и возвращает его ID.
	CreatePlan(ctx context.Context, plan models.Plan) (int64, error)
	// ListPlans возвращает все планы каталога.
	ListPlans(ctx context.Context) ([]*models.Plan, error)
}

// PlanService реализует операции каталога планов.
type PlanService struct {
	repo PlanRepository
	log  *slog.Logger
}

// NewPlanService создает новый экземпляр PlanService.
func NewPlanService(repo PlanRepository, log *slog.Logger) *PlanService {
	return &PlanService{
		repo: repo,
		log:  log,
	}
}

// Create добавляет план в каталог. Цена приводится к канонической
// денежной строке, занятое имя приходит из хранилища как
// repository.ErrDuplicatePlan.
func (s *PlanService) Create(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error) {
	plan := models.Plan{
		Name:      req.Name,
		Price:     models.FormatPrice(*req.Price),
		CreatedAt: term.Now(),
	}
	id, err := s.repo.CreatePlan(ctx, plan)
	if err != nil {
		return nil, err
	}
	plan.ID = id

	s.log.Info("created new plan", slog.Int64("id", id), slog.String("name", plan.Name))
	return &plan, nil
}

// List возвращает все планы каталога.
func (s *PlanService) List(ctx context.Context) ([]*models.Plan, error) {
	return s.repo.ListPlans(ctx)
}
