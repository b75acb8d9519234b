package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product mirrors the catalog backend's product resource. The cart treats
// products as immutable reference data and never writes these fields back.
type Product struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	SKU               string           `json:"sku"`
	Barcode           string           `json:"barcode,omitempty"`
	Description       string           `json:"description,omitempty"`
	Price             decimal.Decimal  `json:"price"`
	CostPrice         *decimal.Decimal `json:"cost_price,omitempty"`
	ImageURL          string           `json:"image_url,omitempty"`
	CategoryID        string           `json:"category_id,omitempty"`
	IsActive          bool             `json:"is_active"`
	StockQuantity     int              `json:"stock_quantity"`
	LowStockThreshold int              `json:"low_stock_threshold"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Category is read-only reference data used for grid filtering.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Color       string    `json:"color,omitempty"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductPage is the list envelope returned by GET /products.
type ProductPage struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Size  int       `json:"size"`
}

// CategoryList is the envelope returned by GET /categories.
type CategoryList struct {
	Items []Category `json:"items"`
	Total int        `json:"total"`
}

// ProductInput carries the writable product fields for create/update calls.
type ProductInput struct {
	Name              string           `json:"name"`
	SKU               string           `json:"sku"`
	Barcode           string           `json:"barcode,omitempty"`
	Description       string           `json:"description,omitempty"`
	Price             decimal.Decimal  `json:"price"`
	CostPrice         *decimal.Decimal `json:"cost_price,omitempty"`
	ImageURL          string           `json:"image_url,omitempty"`
	CategoryID        string           `json:"category_id,omitempty"`
	IsActive          bool             `json:"is_active"`
	StockQuantity     int              `json:"stock_quantity"`
	LowStockThreshold int              `json:"low_stock_threshold"`
}
