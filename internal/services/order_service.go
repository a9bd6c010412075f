package services

import (
	"context"
	"errors"
	"time"

	"order-service/internal/domain"
	"order-service/internal/infra"
	rabbit "order-service/internal/infra/rabbitmq"
	"order-service/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyOrderItems = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("item quantity must be positive")
)

const summaryCacheTTL = 5 * time.Minute

// OrderServiceInterface is what the HTTP layer depends on.
type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, params CreateOrderParams) (*domain.Order, string, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, string, error)
	ListOrders(ctx context.Context, username string) ([]domain.Order, error)
	UpdateOrderItems(ctx context.Context, id string, items []domain.OrderItem) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string) (*domain.Order, error)
}

var _ OrderServiceInterface = (*OrderService)(nil)

// CreateOrderParams carries the resolved identity and the order details.
// The bearer token is forwarded to the wallet service as-is.
type CreateOrderParams struct {
	Identity        domain.Identity
	Token           string
	DeliveryService string
	Items           []domain.OrderItem
}

type OrderService struct {
	repo        repository.OrderRepository
	wallet      infra.WalletClientInterface
	summary     infra.SummaryClientInterface
	publisher   rabbit.PublisherInterface
	redisClient *redis.Client
	logger      *zap.Logger
	summaryGrp  singleflight.Group
}

func NewOrderService(
	r repository.OrderRepository,
	wallet infra.WalletClientInterface,
	summary infra.SummaryClientInterface,
	pub rabbit.PublisherInterface,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		repo:      r,
		wallet:    wallet,
		summary:   summary,
		publisher: pub,
		logger:    logger,
	}
}

func (u *OrderService) SetRedisClient(client *redis.Client) {
	u.redisClient = client
}

// CreateOrder runs the full placement workflow: validate, persist as
// pending, debit the wallet, then request the summary document. A declined
// payment deletes the pending record so no unpaid order survives.
func (u *OrderService) CreateOrder(ctx context.Context, params CreateOrderParams) (*domain.Order, string, error) {
	if err := validateItems(params.Items); err != nil {
		return nil, "", err
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		Username:        params.Identity.Username,
		Nama:            params.Identity.Nama,
		Alamat:          params.Identity.Alamat,
		DeliveryService: params.DeliveryService,
		Status:          domain.StatusPending,
		OrderItems:      params.Items,
		CreatedAt:       time.Now(),
	}
	total := order.Total()

	if err := u.repo.Save(ctx, order); err != nil {
		return nil, "", err
	}

	if err := u.wallet.Pay(ctx, params.Token, order.Username, total); err != nil {
		u.compensateFailedPayment(ctx, order, total, err)
		return nil, "", err
	}

	if err := u.repo.UpdateStatus(ctx, order.ID, domain.StatusPaid); err != nil {
		u.logger.Error("failed to mark order paid",
			zap.String("order_id", order.ID), zap.Error(err))
	}
	order.Status = domain.StatusPaid

	link, err := u.summary.GenerateSummary(ctx, infra.SummaryRequest{
		OrderID:         order.ID,
		CustomerName:    order.Nama,
		CustomerAddress: order.Alamat,
		DeliveryService: order.DeliveryService,
		OrderItems:      order.OrderItems,
	})
	if err != nil {
		// Payment already went through, the order stands. The summary can be
		// fetched again on a later read.
		u.logger.Warn("summary generation failed",
			zap.String("order_id", order.ID), zap.Error(err))
		link = ""
	} else {
		u.cacheSummary(ctx, order.ID, link)
	}

	if err := u.repo.UpdateStatus(ctx, order.ID, domain.StatusConfirmed); err != nil {
		u.logger.Error("failed to mark order confirmed",
			zap.String("order_id", order.ID), zap.Error(err))
	}
	order.Status = domain.StatusConfirmed

	go u.publishOrderCreated(context.Background(), order, total)

	return order, link, nil
}

// compensateFailedPayment removes the pending record created before the
// wallet call so a declined payment leaves nothing behind.
func (u *OrderService) compensateFailedPayment(ctx context.Context, order *domain.Order, total float64, cause error) {
	u.logger.Warn("payment failed, rolling back order",
		zap.String("order_id", order.ID),
		zap.String("username", order.Username),
		zap.Float64("total", total),
		zap.Error(cause))

	if _, err := u.repo.Delete(ctx, order.ID); err != nil {
		// The record stays behind marked failed so it can be cleaned up later.
		u.logger.Error("compensation delete failed",
			zap.String("order_id", order.ID), zap.Error(err))
		if err := u.repo.UpdateStatus(ctx, order.ID, domain.StatusFailed); err != nil {
			u.logger.Error("failed to mark order failed",
				zap.String("order_id", order.ID), zap.Error(err))
		}
	}

	go func() {
		evt := domain.OrderPaymentFailedEvent{
			OrderID:  order.ID,
			Username: order.Username,
			Total:    total,
			Reason:   cause.Error(),
			FailedAt: time.Now(),
		}
		if err := u.publisher.Publish(context.Background(), "order.payment_failed", evt); err != nil {
			u.logger.Error("failed to publish payment failed event",
				zap.String("order_id", order.ID), zap.Error(err))
		}
	}()
}

func (u *OrderService) publishOrderCreated(ctx context.Context, order *domain.Order, total float64) {
	evt := domain.OrderCreatedEvent{
		OrderID:   order.ID,
		Username:  order.Username,
		Total:     total,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	}

	if err := u.publisher.Publish(ctx, "order.created", evt); err != nil {
		u.logger.Error("failed to publish order created event",
			zap.String("order_id", order.ID), zap.Error(err))
	}
}

// GetOrder returns the stored order enriched with its summary download link.
// A summary-service failure degrades to an empty link, not a failed read.
func (u *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, string, error) {
	o, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if o == nil {
		return nil, "", ErrOrderNotFound
	}

	link, err := u.getSummaryWithCache(ctx, id)
	if err != nil {
		u.logger.Warn("summary lookup failed",
			zap.String("order_id", id), zap.Error(err))
		link = ""
	}
	return o, link, nil
}

func (u *OrderService) ListOrders(ctx context.Context, username string) ([]domain.Order, error) {
	orders, err := u.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (u *OrderService) UpdateOrderItems(ctx context.Context, id string, items []domain.OrderItem) (*domain.Order, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	o, err := u.repo.ReplaceItems(ctx, id, items)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	u.dropCachedSummary(ctx, id)
	return o, nil
}

func (u *OrderService) DeleteOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := u.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	u.dropCachedSummary(ctx, id)
	return o, nil
}

func validateItems(items []domain.OrderItem) error {
	if len(items) == 0 {
		return ErrEmptyOrderItems
	}
	for _, item := range items {
		if item.Quantity <= 0 || item.Price < 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// getSummaryWithCache serves the download link from redis when possible and
// collapses concurrent fetches for the same order into one remote call.
func (u *OrderService) getSummaryWithCache(ctx context.Context, orderID string) (string, error) {
	cacheKey := summaryCacheKey(orderID)

	if u.redisClient != nil {
		cached, err := u.redisClient.Get(ctx, cacheKey).Result()
		if err == nil && cached != "" {
			return cached, nil
		}
	}

	v, err, _ := u.summaryGrp.Do(orderID, func() (interface{}, error) {
		link, err := u.summary.GetSummary(ctx, orderID)
		if err != nil {
			return "", err
		}
		u.cacheSummary(ctx, orderID, link)
		return link, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (u *OrderService) cacheSummary(ctx context.Context, orderID, link string) {
	if u.redisClient == nil || link == "" {
		return
	}
	u.redisClient.Set(ctx, summaryCacheKey(orderID), link, summaryCacheTTL)
}

func (u *OrderService) dropCachedSummary(ctx context.Context, orderID string) {
	if u.redisClient == nil {
		return
	}
	u.redisClient.Del(ctx, summaryCacheKey(orderID))
}

func summaryCacheKey(orderID string) string {
	return "summary:" + orderID
}
