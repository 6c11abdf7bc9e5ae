package repositories

import (
	"context"

	"github.com/neptunetech/storefront/internal/core/domain"
)

// ProductReader defines read operations for the catalog.
type ProductReader interface {
	// FindProducts lists all products, newest first.
	FindProducts(ctx context.Context) ([]domain.Product, error)

	// FindProductByID retrieves a product by its UUID.
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)
}

// ProductWriter defines write operations for the catalog.
type ProductWriter interface {
	SaveProduct(ctx context.Context, product domain.Product) error
}

// ProductRepositoryFacade combines all product-related repository interfaces
type ProductRepositoryFacade interface {
	ProductReader
	ProductWriter
}
