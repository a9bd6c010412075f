package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"order-service/internal/domain"
	"order-service/internal/infra"
	"order-service/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newTestService(repo *mocks.MockOrderRepository, wallet *mocks.MockWalletClient, summary *mocks.MockSummaryClient, pub *mocks.MockPublisher) *OrderService {
	return NewOrderService(repo, wallet, summary, pub, zap.NewNop())
}

func TestOrderService_CreateOrder(t *testing.T) {
	tests := []struct {
		name          string
		items         []domain.OrderItem
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockWalletClient, *mocks.MockSummaryClient, *mocks.MockPublisher)
		expectedError error
		expectedLink  string
	}{
		{
			name:  "successful order creation",
			items: CreateTestItems(),
			setupMocks: func(mockRepo *mocks.MockOrderRepository, mockWallet *mocks.MockWalletClient, mockSummary *mocks.MockSummaryClient, mockPub *mocks.MockPublisher) {
				mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				mockWallet.On("Pay", mock.Anything, TestToken, TestUsername, TestTotal).Return(nil)
				mockRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("string"), domain.StatusPaid).Return(nil)
				mockSummary.On("GenerateSummary", mock.Anything, mock.AnythingOfType("infra.SummaryRequest")).Return(TestDownloadLink, nil)
				mockRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("string"), domain.StatusConfirmed).Return(nil)
				mockPub.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()
			},
			expectedLink: TestDownloadLink,
		},
		{
			name:  "payment declined rolls back the record",
			items: CreateTestItems(),
			setupMocks: func(mockRepo *mocks.MockOrderRepository, mockWallet *mocks.MockWalletClient, mockSummary *mocks.MockSummaryClient, mockPub *mocks.MockPublisher) {
				mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				mockWallet.On("Pay", mock.Anything, TestToken, TestUsername, TestTotal).Return(infra.ErrPaymentDeclined)
				mockRepo.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(CreateTestOrder(TestOrderID, TestUsername, domain.StatusPending), nil)
				mockPub.On("Publish", mock.Anything, "order.payment_failed", mock.Anything).Return(nil).Maybe()
			},
			expectedError: infra.ErrPaymentDeclined,
		},
		{
			name:  "wallet unreachable rolls back the record",
			items: CreateTestItems(),
			setupMocks: func(mockRepo *mocks.MockOrderRepository, mockWallet *mocks.MockWalletClient, mockSummary *mocks.MockSummaryClient, mockPub *mocks.MockPublisher) {
				mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				mockWallet.On("Pay", mock.Anything, TestToken, TestUsername, TestTotal).Return(infra.ErrRemoteUnavailable)
				mockRepo.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(CreateTestOrder(TestOrderID, TestUsername, domain.StatusPending), nil)
				mockPub.On("Publish", mock.Anything, "order.payment_failed", mock.Anything).Return(nil).Maybe()
			},
			expectedError: infra.ErrRemoteUnavailable,
		},
		{
			name:  "summary failure does not fail the order",
			items: CreateTestItems(),
			setupMocks: func(mockRepo *mocks.MockOrderRepository, mockWallet *mocks.MockWalletClient, mockSummary *mocks.MockSummaryClient, mockPub *mocks.MockPublisher) {
				mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				mockWallet.On("Pay", mock.Anything, TestToken, TestUsername, TestTotal).Return(nil)
				mockRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("string"), domain.StatusPaid).Return(nil)
				mockSummary.On("GenerateSummary", mock.Anything, mock.AnythingOfType("infra.SummaryRequest")).Return("", infra.ErrRemoteUnavailable)
				mockRepo.On("UpdateStatus", mock.Anything, mock.AnythingOfType("string"), domain.StatusConfirmed).Return(nil)
				mockPub.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil).Maybe()
			},
			expectedLink: "",
		},
		{
			name:          "empty order items",
			items:         nil,
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockWalletClient, *mocks.MockSummaryClient, *mocks.MockPublisher) {},
			expectedError: ErrEmptyOrderItems,
		},
		{
			name:          "non-positive quantity",
			items:         []domain.OrderItem{{Name: "Kopi Gayo", Price: 10, Quantity: 0}},
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockWalletClient, *mocks.MockSummaryClient, *mocks.MockPublisher) {},
			expectedError: ErrInvalidQuantity,
		},
		{
			name:  "repository save error",
			items: CreateTestItems(),
			setupMocks: func(mockRepo *mocks.MockOrderRepository, mockWallet *mocks.MockWalletClient, mockSummary *mocks.MockSummaryClient, mockPub *mocks.MockPublisher) {
				mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			mockWallet := new(mocks.MockWalletClient)
			mockSummary := new(mocks.MockSummaryClient)
			mockPub := new(mocks.MockPublisher)

			tt.setupMocks(mockRepo, mockWallet, mockSummary, mockPub)

			service := newTestService(mockRepo, mockWallet, mockSummary, mockPub)

			order, link, err := service.CreateOrder(context.Background(), CreateOrderParams{
				Identity:        CreateTestIdentity(),
				Token:           TestToken,
				DeliveryService: TestDeliveryService,
				Items:           tt.items,
			})

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, order)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, order)
				assert.NotEmpty(t, order.ID)
				assert.Equal(t, TestUsername, order.Username)
				assert.Equal(t, domain.StatusConfirmed, order.Status)
				assert.Equal(t, tt.expectedLink, link)
				assert.WithinDuration(t, time.Now(), order.CreatedAt, time.Second)
			}

			// Event publishing runs in a goroutine.
			time.Sleep(100 * time.Millisecond)

			mockRepo.AssertExpectations(t)
			mockWallet.AssertExpectations(t)
			mockSummary.AssertExpectations(t)
			mockPub.AssertExpectations(t)
		})
	}
}

func TestOrderService_CreateOrder_NoOrphanAfterDecline(t *testing.T) {
	mockRepo := new(mocks.MockOrderRepository)
	mockWallet := new(mocks.MockWalletClient)
	mockSummary := new(mocks.MockSummaryClient)
	mockPub := new(mocks.MockPublisher)

	var savedID string
	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
		savedID = args.Get(1).(*domain.Order).ID
	})
	mockWallet.On("Pay", mock.Anything, TestToken, TestUsername, TestTotal).Return(infra.ErrPaymentDeclined)
	mockRepo.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(CreateTestOrder(TestOrderID, TestUsername, domain.StatusPending), nil).Run(func(args mock.Arguments) {
		assert.Equal(t, savedID, args.String(1))
	})
	mockPub.On("Publish", mock.Anything, "order.payment_failed", mock.Anything).Return(nil).Maybe()

	service := newTestService(mockRepo, mockWallet, mockSummary, mockPub)

	order, _, err := service.CreateOrder(context.Background(), CreateOrderParams{
		Identity: CreateTestIdentity(),
		Token:    TestToken,
		Items:    CreateTestItems(),
	})

	assert.ErrorIs(t, err, infra.ErrPaymentDeclined)
	assert.Nil(t, order)

	time.Sleep(100 * time.Millisecond)

	mockRepo.AssertCalled(t, "Delete", mock.Anything, savedID)
	mockRepo.AssertExpectations(t)
}

func TestOrderService_GetOrder(t *testing.T) {
	tests := []struct {
		name          string
		orderID       string
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockSummaryClient)
		expectedError error
		expectedLink  string
	}{
		{
			name:    "successful retrieval with summary",
			orderID: TestOrderID,
			setupMocks: func(mockRepo *mocks.MockOrderRepository, mockSummary *mocks.MockSummaryClient) {
				mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(CreateTestOrder(TestOrderID, TestUsername, domain.StatusConfirmed), nil)
				mockSummary.On("GetSummary", mock.Anything, TestOrderID).Return(TestDownloadLink, nil)
			},
			expectedLink: TestDownloadLink,
		},
		{
			name:    "summary failure degrades to empty link",
			orderID: TestOrderID,
			setupMocks: func(mockRepo *mocks.MockOrderRepository, mockSummary *mocks.MockSummaryClient) {
				mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(CreateTestOrder(TestOrderID, TestUsername, domain.StatusConfirmed), nil)
				mockSummary.On("GetSummary", mock.Anything, TestOrderID).Return("", infra.ErrRemoteUnavailable)
			},
			expectedLink: "",
		},
		{
			name:    "order not found",
			orderID: "missing",
			setupMocks: func(mockRepo *mocks.MockOrderRepository, mockSummary *mocks.MockSummaryClient) {
				mockRepo.On("FindByID", mock.Anything, "missing").Return(nil, nil)
			},
			expectedError: ErrOrderNotFound,
		},
		{
			name:    "repository error",
			orderID: TestOrderID,
			setupMocks: func(mockRepo *mocks.MockOrderRepository, mockSummary *mocks.MockSummaryClient) {
				mockRepo.On("FindByID", mock.Anything, TestOrderID).Return(nil, errors.New("database connection error"))
			},
			expectedError: errors.New("database connection error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			mockWallet := new(mocks.MockWalletClient)
			mockSummary := new(mocks.MockSummaryClient)
			mockPub := new(mocks.MockPublisher)

			tt.setupMocks(mockRepo, mockSummary)

			service := newTestService(mockRepo, mockWallet, mockSummary, mockPub)
			order, link, err := service.GetOrder(context.Background(), tt.orderID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, order)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, order)
				assert.Equal(t, tt.orderID, order.ID)
				assert.Equal(t, tt.expectedLink, link)
			}

			mockRepo.AssertExpectations(t)
			mockSummary.AssertExpectations(t)
		})
	}
}

func TestOrderService_ListOrders(t *testing.T) {
	tests := []struct {
		name          string
		username      string
		setupMocks    func(*mocks.MockOrderRepository)
		expectedError error
		expectedLen   int
	}{
		{
			name:     "orders found",
			username: TestUsername,
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				orders := []domain.Order{
					*CreateTestOrder("a", TestUsername, domain.StatusConfirmed),
					*CreateTestOrder("b", TestUsername, domain.StatusConfirmed),
				}
				mockRepo.On("FindByUsername", mock.Anything, TestUsername).Return(orders, nil)
			},
			expectedLen: 2,
		},
		{
			name:     "no orders is an empty list, not an error",
			username: "nobody",
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("FindByUsername", mock.Anything, "nobody").Return(nil, nil)
			},
			expectedLen: 0,
		},
		{
			name:     "repository error",
			username: TestUsername,
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("FindByUsername", mock.Anything, TestUsername).Return(nil, errors.New("database error"))
			},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			tt.setupMocks(mockRepo)

			service := newTestService(mockRepo, new(mocks.MockWalletClient), new(mocks.MockSummaryClient), new(mocks.MockPublisher))
			orders, err := service.ListOrders(context.Background(), tt.username)

			if tt.expectedError != nil {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, orders)
				assert.Len(t, orders, tt.expectedLen)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestOrderService_UpdateOrderItems(t *testing.T) {
	newItems := []domain.OrderItem{
		{Name: "Teh Tarik", Price: 5, Quantity: 3},
	}

	tests := []struct {
		name          string
		orderID       string
		items         []domain.OrderItem
		setupMocks    func(*mocks.MockOrderRepository)
		expectedError error
	}{
		{
			name:    "successful replacement",
			orderID: TestOrderID,
			items:   newItems,
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				updated := CreateTestOrder(TestOrderID, TestUsername, domain.StatusConfirmed)
				updated.OrderItems = newItems
				mockRepo.On("ReplaceItems", mock.Anything, TestOrderID, newItems).Return(updated, nil)
			},
		},
		{
			name:          "empty items rejected",
			orderID:       TestOrderID,
			items:         []domain.OrderItem{},
			setupMocks:    func(*mocks.MockOrderRepository) {},
			expectedError: ErrEmptyOrderItems,
		},
		{
			name:    "order not found",
			orderID: "missing",
			items:   newItems,
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("ReplaceItems", mock.Anything, "missing", newItems).Return(nil, nil)
			},
			expectedError: ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			tt.setupMocks(mockRepo)

			service := newTestService(mockRepo, new(mocks.MockWalletClient), new(mocks.MockSummaryClient), new(mocks.MockPublisher))
			order, err := service.UpdateOrderItems(context.Background(), tt.orderID, tt.items)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, order)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, order)
				assert.Equal(t, newItems, order.OrderItems)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestOrderService_DeleteOrder(t *testing.T) {
	tests := []struct {
		name          string
		orderID       string
		setupMocks    func(*mocks.MockOrderRepository)
		expectedError error
	}{
		{
			name:    "successful delete returns the record",
			orderID: TestOrderID,
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("Delete", mock.Anything, TestOrderID).Return(CreateTestOrder(TestOrderID, TestUsername, domain.StatusConfirmed), nil)
			},
		},
		{
			name:    "second delete is not found",
			orderID: TestOrderID,
			setupMocks: func(mockRepo *mocks.MockOrderRepository) {
				mockRepo.On("Delete", mock.Anything, TestOrderID).Return(nil, nil)
			},
			expectedError: ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockOrderRepository)
			tt.setupMocks(mockRepo)

			service := newTestService(mockRepo, new(mocks.MockWalletClient), new(mocks.MockSummaryClient), new(mocks.MockPublisher))
			order, err := service.DeleteOrder(context.Background(), tt.orderID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, order)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, order)
				assert.Equal(t, tt.orderID, order.ID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
