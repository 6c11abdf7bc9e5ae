package services

import (
	"context"

	"github.com/neptunetech/storefront/internal/core/domain"
	"github.com/neptunetech/storefront/internal/dto"
)

// ProductReaderSvc defines catalog queries.
type ProductReaderSvc interface {
	// GetAllProducts lists every product, newest first.
	GetAllProducts(ctx context.Context) ([]domain.Product, error)

	// GetProductByID returns apperrors.ErrNotFound for unknown or malformed IDs.
	GetProductByID(ctx context.Context, productID string) (*domain.Product, error)
}

// ProductWriterSvc defines catalog writes.
type ProductWriterSvc interface {
	// AddProduct validates and stores a new product.
	AddProduct(ctx context.Context, req dto.CreateProductRequest) (*domain.Product, error)
}

// ProductSvcFacade combines all product-related service interfaces
type ProductSvcFacade interface {
	ProductReaderSvc
	ProductWriterSvc
}

// ImageSvcFacade uploads product images.
type ImageSvcFacade interface {
	// UploadImages stores the files one after another and returns them in submission order.
	UploadImages(ctx context.Context, files []domain.ImageFile) ([]domain.UploadedImage, error)
}
