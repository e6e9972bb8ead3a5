package model

import (
	"encoding/json"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodCOD      PaymentMethod = "cod"
	PaymentMethodCashfree PaymentMethod = "cashfree"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// 注文時に確定した配送先。orders.shipping_address にJSONで保存し、以後変更しない。
type ShippingAddress struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//人間向けの注文番号（内部IDとは別、ユニーク）
	OrderNumber string `gorm:"type:varchar(50);not null;uniqueIndex" json:"order_number"`

	Subtotal     float64 `gorm:"not null" json:"subtotal"`
	ShippingCost float64 `gorm:"not null" json:"shipping_cost"`
	TotalAmount  float64 `gorm:"not null" json:"total_amount"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	OrderStatus   OrderStatus   `gorm:"type:varchar(20);not null;index" json:"order_status"`

	//配送先スナップショット（ShippingAddressのJSON）
	ShippingAddressJSON string `gorm:"column:shipping_address;type:jsonb;not null" json:"-"`

	//Cashfree側の注文ID。セッション作成後にセットされる。
	CFOrderID string `gorm:"column:cf_order_id;type:varchar(100)" json:"cf_order_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// DecodeShippingAddressは保存済みの配送先JSONを復元する。
func (o Order) DecodeShippingAddress() (ShippingAddress, error) {
	var addr ShippingAddress
	err := json.Unmarshal([]byte(o.ShippingAddressJSON), &addr)
	return addr, err
}
