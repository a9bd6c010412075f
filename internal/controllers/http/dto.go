package http

import "order-service/internal/domain"

type OrderItemPayload struct {
	Name     string       `json:"name" binding:"required"`
	Image    string       `json:"image"`
	Price    domain.Price `json:"price" binding:"required"`
	Quantity int          `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	Username        string             `json:"username"`
	Nama            string             `json:"nama"`
	Alamat          string             `json:"alamat"`
	DeliveryService string             `json:"deliveryService"`
	OrderItems      []OrderItemPayload `json:"orderItems" binding:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	OrderItems []OrderItemPayload `json:"orderItems" binding:"required,min=1,dive"`
}

// orderWithSummary is the enriched response envelope body for reads and
// creates: the persisted order plus the summary download link.
type orderWithSummary struct {
	domain.Order
	Summary string `json:"summary,omitempty"`
}

func toDomainItems(items []OrderItemPayload) []domain.OrderItem {
	out := make([]domain.OrderItem, len(items))
	for i, item := range items {
		out[i] = domain.OrderItem{
			Name:     item.Name,
			Image:    item.Image,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
	}
	return out
}
