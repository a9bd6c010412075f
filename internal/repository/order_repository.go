package repository

import (
	"context"

	"order-service/internal/domain"
)

type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByUsername(ctx context.Context, username string) ([]domain.Order, error)
	ReplaceItems(ctx context.Context, id string, items []domain.OrderItem) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	Delete(ctx context.Context, id string) (*domain.Order, error)
}
