package mysql

import (
	"context"
	"errors"

	"order-service/internal/domain"
	"order-service/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	// Line items are created through the association in the same transaction.
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("OrderItems").First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByUsername(ctx context.Context, username string) ([]domain.Order, error) {
	out := make([]domain.Order, 0)
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("username = ?", username).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	// An empty result is valid; the caller decides what it means.
	return out, nil
}

func (r *orderRepo) ReplaceItems(ctx context.Context, id string, items []domain.OrderItem) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&o, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].OrderID = id
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return tx.Model(&o).Update("updated_at", tx.NowFunc()).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	o.OrderItems = items
	return &o, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *orderRepo) Delete(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("OrderItems").First(&o, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Order{}, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}
