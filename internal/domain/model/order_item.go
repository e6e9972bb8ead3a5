package model

import "time"

// 注文明細。商品名・価格は注文時点のスナップショットで、後からは変更しない。
type OrderItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64     `gorm:"not null;index" json:"order_id"`
	ProductID   int64     `gorm:"not null;index" json:"product_id"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"`
	Price       float64   `gorm:"not null" json:"price"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	Subtotal    float64   `gorm:"not null" json:"subtotal"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
