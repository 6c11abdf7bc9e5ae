package domain

import "github.com/shopspring/decimal"

// ProductImage is one color variant of a product.
type ProductImage struct {
	Color     string `json:"color"`
	ColorCode string `json:"colorCode"`
	Image     string `json:"image"`
}

// Product is a catalog entry. Products are immutable once created.
type Product struct {
	ProductID   string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Vendor      string          `json:"vendor"`
	Price       decimal.Decimal `json:"price"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	InStock     bool            `json:"inStock"`
	Images      []ProductImage  `json:"images"`
	Timestamps
}
