package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/neptunetech/storefront/internal/apperrors"
	"github.com/neptunetech/storefront/internal/core/domain"
	portsrepo "github.com/neptunetech/storefront/internal/core/ports/repositories"
	portssvc "github.com/neptunetech/storefront/internal/core/ports/services"
	"github.com/neptunetech/storefront/internal/dto"
	"github.com/neptunetech/storefront/internal/validation"
)

type productService struct {
	BaseService
	productRepo portsrepo.ProductRepositoryFacade
}

type ProductServiceOption func(*productService)

func WithProductClock(clock func() time.Time) ProductServiceOption {
	return func(s *productService) {
		s.Clock = clock
	}
}

func NewProductService(productRepo portsrepo.ProductRepositoryFacade, options ...ProductServiceOption) portssvc.ProductSvcFacade {
	s := &productService{productRepo: productRepo}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *productService) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.productRepo.FindProducts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *productService) GetProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return nil, apperrors.NewNotFoundError("Product not found")
	}

	product, err := s.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Product not found")
		}
		s.LogError(ctx, err, "Failed to get product", slog.String("product_id", productID))
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *productService) AddProduct(ctx context.Context, req dto.CreateProductRequest) (*domain.Product, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	now := s.Now()
	product := req.ToProduct()
	product.ProductID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.productRepo.SaveProduct(ctx, product); err != nil {
		s.LogError(ctx, err, "Failed to save product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.LogInfo(ctx, "Product created", slog.String("product_id", product.ProductID))
	return &product, nil
}
