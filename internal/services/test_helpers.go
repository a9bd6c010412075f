package services

import (
	"time"

	"order-service/internal/domain"
)

func CreateTestOrder(id, username string, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:              id,
		Username:        username,
		Nama:            TestNama,
		Alamat:          TestAlamat,
		DeliveryService: TestDeliveryService,
		Status:          status,
		OrderItems:      CreateTestItems(),
		CreatedAt:       time.Now(),
	}
}

func CreateTestItems() []domain.OrderItem {
	return []domain.OrderItem{
		{Name: "Kopi Gayo", Price: 10, Quantity: 2},
	}
}

func CreateTestIdentity() domain.Identity {
	return domain.Identity{
		Username: TestUsername,
		Nama:     TestNama,
		Alamat:   TestAlamat,
	}
}

const (
	TestOrderID         = "c7f2e9a4-1111-2222-3333-444455556666"
	TestUsername        = "u1"
	TestNama            = "Agus Salim"
	TestAlamat          = "Jl. Merdeka No. 1"
	TestDeliveryService = "AnterSekalian"
	TestToken           = "token123"
	TestDownloadLink    = "http://tk.ordersummary.getoboru.xyz/files/order.pdf"
	TestTotal           = float64(20)
)
