package mocks

import (
	"context"

	"order-service/internal/domain"
	"order-service/internal/infra"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockWalletClient struct {
	mock.Mock
}

type MockSummaryClient struct {
	mock.Mock
}

type MockAuthClient struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUsername(ctx context.Context, username string) ([]domain.Order, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ReplaceItems(ctx context.Context, id string, items []domain.OrderItem) (*domain.Order, error) {
	args := m.Called(ctx, id, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockWalletClient) Pay(ctx context.Context, token, username string, nominal float64) error {
	args := m.Called(ctx, token, username, nominal)
	return args.Error(0)
}

func (m *MockSummaryClient) GenerateSummary(ctx context.Context, req infra.SummaryRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockSummaryClient) GetSummary(ctx context.Context, orderID string) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
}

func (m *MockAuthClient) ResolveToken(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data interface{}) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}
