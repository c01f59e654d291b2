package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the storefront catalog row that taxonomy mappings point at.
type Product struct {
	ID        int64               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string              `gorm:"column:name;not null" json:"name"`
	Price     decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null;default:0" json:"price"`
	Rating    decimal.NullDecimal `gorm:"column:rating;type:numeric(3,2)" json:"rating"`
	Image     *string             `gorm:"column:image" json:"image"`
	Category  *string             `gorm:"column:category" json:"category"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Product) TableName() string { return "products" }
