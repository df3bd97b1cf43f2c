package models

import (
	"time"

	"github.com/phoolcraft/phool-backend/pkg/types"
)

// CatalogFields is the shape shared by the products and cards tables.
type CatalogFields struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	Price       int64           `gorm:"column:price;not null" json:"price"`
	Category    string          `gorm:"column:category;not null" json:"category"`
	Images      types.ImageList `gorm:"column:images" json:"images"`
	Description string          `gorm:"column:description" json:"description"`
	InStock     bool            `gorm:"column:in_stock;not null" json:"in_stock"`
	IsCustom    bool            `gorm:"column:is_custom;not null" json:"is_custom"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// RecordID returns the server-assigned identifier.
func (c CatalogFields) RecordID() int64 {
	return c.ID
}

// Product is a handcrafted catalog listing.
type Product struct {
	CatalogFields
}

func (Product) TableName() string {
	return "products"
}

// Card is a greeting card listing. Cards are usually personalised.
type Card struct {
	CatalogFields
}

func (Card) TableName() string {
	return "cards"
}

// Catalog exposes the shared fields to code that handles both tables.
func (c *CatalogFields) Catalog() *CatalogFields {
	return c
}
