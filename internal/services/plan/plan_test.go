package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
	"github.com/magabrotheeeer/subscription-manager/internal/storage/repository"
)

// MockPlanRepository реализует интерфейс PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) CreatePlan(ctx context.Context, plan models.Plan) (int64, error) {
	args := m.Called(ctx, plan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlanRepository) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Plan), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func floatPtr(v float64) *float64 { return &v }

func TestCreate(t *testing.T) {
	tests := []struct {
		name      string
		req       models.CreatePlanRequest
		setupMock func(*MockPlanRepository)
		wantPrice string
		wantErr   error
	}{
		{
			name: "успешное создание с канонической ценой",
			req:  models.CreatePlanRequest{Name: "basic", Price: floatPtr(200)},
			setupMock: func(m *MockPlanRepository) {
				m.On("CreatePlan", mock.Anything, mock.MatchedBy(func(p models.Plan) bool {
					return p.Name == "basic" && p.Price == "200.00" && p.CreatedAt > 0
				})).Return(int64(3), nil)
			},
			wantPrice: "200.00",
		},
		{
			name: "цена с дробной частью",
			req:  models.CreatePlanRequest{Name: "premium", Price: floatPtr(499.9)},
			setupMock: func(m *MockPlanRepository) {
				m.On("CreatePlan", mock.Anything, mock.MatchedBy(func(p models.Plan) bool {
					return p.Price == "499.90"
				})).Return(int64(4), nil)
			},
			wantPrice: "499.90",
		},
		{
			name: "бесплатный план",
			req:  models.CreatePlanRequest{Name: "free", Price: floatPtr(0)},
			setupMock: func(m *MockPlanRepository) {
				m.On("CreatePlan", mock.Anything, mock.MatchedBy(func(p models.Plan) bool {
					return p.Price == "0.00"
				})).Return(int64(5), nil)
			},
			wantPrice: "0.00",
		},
		{
			name: "занятое имя плана",
			req:  models.CreatePlanRequest{Name: "basic", Price: floatPtr(200)},
			setupMock: func(m *MockPlanRepository) {
				m.On("CreatePlan", mock.Anything, mock.AnythingOfType("models.Plan")).
					Return(int64(0), repository.ErrDuplicatePlan)
			},
			wantErr: repository.ErrDuplicatePlan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPlanRepository)
			tt.setupMock(repo)
			service := NewPlanService(repo, testLogger())

			plan, err := service.Create(context.Background(), tt.req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, plan)
			} else {
				require.NoError(t, err)
				require.NotNil(t, plan)
				assert.Equal(t, tt.req.Name, plan.Name)
				assert.Equal(t, tt.wantPrice, plan.Price)
				assert.NotZero(t, plan.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestList(t *testing.T) {
	plans := []*models.Plan{
		{ID: 1, Name: "basic", Price: "200.00", CreatedAt: 1700000000},
		{ID: 2, Name: "premium", Price: "500.00", CreatedAt: 1700000100},
	}

	repo := new(MockPlanRepository)
	repo.On("ListPlans", mock.Anything).Return(plans, nil)
	service := NewPlanService(repo, testLogger())

	got, err := service.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, plans, got)
	repo.AssertExpectations(t)
}
