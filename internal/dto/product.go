package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/neptunetech/storefront/internal/core/domain"
	"github.com/neptunetech/storefront/internal/validation"
	"github.com/shopspring/decimal"
)

func init() {
	validation.RegisterFloat64Type(Price{})
}

// Price accepts either a JSON number or a numeric string. Unparsable input does
// not fail decoding; it is reported by validation instead so that every field
// problem is returned together.
type Price struct {
	Value decimal.Decimal
	Valid bool
}

// NewPrice returns a valid Price.
func NewPrice(d decimal.Decimal) Price {
	return Price{Value: d, Valid: true}
}

func (p *Price) UnmarshalJSON(data []byte) error {
	*p = Price{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	if raw == "" {
		return nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	if f := d.InexactFloat64(); math.IsInf(f, 0) {
		return nil
	}
	p.Value, p.Valid = d, true
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return []byte(p.Value.String()), nil
}

// Float64Value is used by the "nonnegative" rule. Invalid prices report NaN.
func (p Price) Float64Value() float64 {
	if !p.Valid {
		return math.NaN()
	}
	return p.Value.InexactFloat64()
}

// ProductImageRequest is one color variant in a product submission.
type ProductImageRequest struct {
	Color     string `json:"color" validate:"required"`
	ColorCode string `json:"colorCode" validate:"required,colorcode"`
	Image     string `json:"image" validate:"required,url"`
}

// CreateProductRequest is the product creation payload.
type CreateProductRequest struct {
	Name        string                `json:"name" validate:"required"`
	Description *string               `json:"description,omitempty"`
	Vendor      *string               `json:"vendor,omitempty"`
	Price       Price                 `json:"price" validate:"nonnegative"`
	Brand       *string               `json:"brand,omitempty"`
	Category    *string               `json:"category,omitempty"`
	InStock     *bool                 `json:"inStock,omitempty"`
	Images      []ProductImageRequest `json:"images" validate:"required,min=1,max=5,dive"`
}

func (CreateProductRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"Name.required":       "Name is required",
		"Price.nonnegative":   "Price must be a non-negative number",
		"Images.required":     "At least one image is required",
		"Images.min":          "At least one image is required",
		"Images.max":          "You can upload up to 5 images",
		"Color.required":      "Image color is required",
		"ColorCode.required":  "Invalid hex color",
		"ColorCode.colorcode": "Invalid hex color",
		"Image.required":      "Image URL must be a valid URL",
		"Image.url":           "Image URL must be a valid URL",
	}
}

// ToProduct applies defaults: optional text fields become "" and InStock
// defaults to true.
func (r CreateProductRequest) ToProduct() domain.Product {
	images := make([]domain.ProductImage, len(r.Images))
	for i, img := range r.Images {
		images[i] = domain.ProductImage{Color: img.Color, ColorCode: img.ColorCode, Image: img.Image}
	}
	inStock := true
	if r.InStock != nil {
		inStock = *r.InStock
	}
	return domain.Product{
		Name:        r.Name,
		Description: valueOrEmpty(r.Description),
		Vendor:      valueOrEmpty(r.Vendor),
		Price:       r.Price.Value,
		Brand:       valueOrEmpty(r.Brand),
		Category:    valueOrEmpty(r.Category),
		InStock:     inStock,
		Images:      images,
	}
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ProductResponse is the public shape of a product.
type ProductResponse struct {
	ProductID   string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Vendor      string                `json:"vendor"`
	Price       decimal.Decimal       `json:"price"`
	Brand       string                `json:"brand"`
	Category    string                `json:"category"`
	InStock     bool                  `json:"inStock"`
	Images      []domain.ProductImage `json:"images"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

func ToProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ProductID:   p.ProductID,
		Name:        p.Name,
		Description: p.Description,
		Vendor:      p.Vendor,
		Price:       p.Price,
		Brand:       p.Brand,
		Category:    p.Category,
		InStock:     p.InStock,
		Images:      p.Images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToListProductResponse(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ToProductResponse(p)
	}
	return out
}

// UploadImagesResponse lists uploaded images in submission order.
type UploadImagesResponse struct {
	Images []domain.UploadedImage `json:"images"`
}
