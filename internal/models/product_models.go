package models

import "time"

// Category groups products in the catalog. Names are unique case-insensitively.
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Product represents a catalog item sold at the point of sale.
// BuyingPrice and SellingPrice are non-negative; Stock is non-negative.
type Product struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name" binding:"required"`
	Brand        *string   `json:"brand,omitempty" db:"brand"`
	CategoryID   int64     `json:"category_id" db:"category_id" binding:"required"`
	Barcode      *string   `json:"barcode,omitempty" db:"barcode"`
	Supplier     *string   `json:"supplier,omitempty" db:"supplier"`
	BuyingPrice  float64   `json:"buying_price" db:"buying_price"`
	SellingPrice float64   `json:"selling_price" db:"selling_price"`
	Stock        int       `json:"stock" db:"stock"`
	ReorderLevel int       `json:"reorder_level" db:"reorder_level"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	Category     *Category `json:"category,omitempty"` // For joining with Category
}
