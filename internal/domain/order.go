package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusConfirmed OrderStatus = "confirmed"
	StatusFailed    OrderStatus = "failed"
)

// Price accepts both JSON numbers and numeric strings; older storefront
// clients send prices as strings.
type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid price %q", s)
	}
	*p = Price(v)
	return nil
}

type OrderItem struct {
	ID       uint64 `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID  string `json:"-" gorm:"size:36;not null;index"`
	Name     string `json:"name" gorm:"not null"`
	Image    string `json:"image,omitempty"`
	Price    Price  `json:"price" gorm:"not null"`
	Quantity int    `json:"quantity" gorm:"not null"`
}

type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;size:36"`
	Username        string      `json:"username" gorm:"not null;index"`
	Nama            string      `json:"nama" gorm:"not null"`
	Alamat          string      `json:"alamat" gorm:"not null"`
	DeliveryService string      `json:"deliveryService,omitempty"`
	Status          OrderStatus `json:"status" gorm:"type:enum('pending','paid','confirmed','failed');default:'pending'"`
	OrderItems      []OrderItem `json:"orderItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time   `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time   `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Total is the amount submitted to the wallet service.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.OrderItems {
		total += float64(item.Price) * float64(item.Quantity)
	}
	return total
}

// Identity is the user resolved by the remote token introspection.
type Identity struct {
	Username string `json:"username"`
	Nama     string `json:"nama"`
	Alamat   string `json:"alamat"`
}
