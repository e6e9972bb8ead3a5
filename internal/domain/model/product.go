package model

import (
	"time"

	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  int64  `gorm:"not null;index" json:"category_id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	//Priceは割引前の定価。表示・計算にはEffectivePriceを使う。
	Price              float64 `gorm:"not null" json:"price"`
	DiscountPercentage float64 `gorm:"not null;default:0" json:"discount_percentage"`

	Stock  int64         `gorm:"not null" json:"stock"`
	Rating float64       `gorm:"not null;default:0" json:"rating"`
	Status ProductStatus `gorm:"type:varchar(20);not null;index;default:'active'" json:"status"`

	Images []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// 商品画像（表示順つき）
type ProductImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	ImageURL  string    `gorm:"type:varchar(500);not null" json:"image_url"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
