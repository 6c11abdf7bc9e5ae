package pgsql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/neptunetech/storefront/internal/core/domain"
	portsrepo "github.com/neptunetech/storefront/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

const productColumns = `product_id::text, name, description, vendor, price::text, brand, category, in_stock, images, created_at, updated_at`

type PgxProductRepository struct {
	BaseRepository
}

func newPgxProductRepository(db DB) portsrepo.ProductRepositoryFacade {
	return &PgxProductRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.ProductRepositoryFacade = (*PgxProductRepository)(nil)

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var price string
	var images []byte
	err := row.Scan(
		&p.ProductID,
		&p.Name,
		&p.Description,
		&p.Vendor,
		&price,
		&p.Brand,
		&p.Category,
		&p.InStock,
		&images,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("invalid stored price %q: %w", price, err)
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return nil, fmt.Errorf("invalid stored images: %w", err)
	}
	return &p, nil
}

func (r *PgxProductRepository) SaveProduct(ctx context.Context, product domain.Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to encode product images: %w", err)
	}
	query := `
        INSERT INTO products (product_id, name, description, vendor, price, brand, category, in_stock, images, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9::jsonb, $10, $11);
    `
	_, err = r.Pool.Exec(ctx, query,
		product.ProductID,
		product.Name,
		product.Description,
		product.Vendor,
		product.Price.String(),
		product.Brand,
		product.Category,
		product.InStock,
		string(images),
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return wrapWriteErr(err, "failed to save product")
	}
	return nil
}

func (r *PgxProductRepository) FindProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", rows.Err())
	}
	return products, nil
}

func (r *PgxProductRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1;`
	p, err := scanProduct(r.Pool.QueryRow(ctx, query, productID))
	if err != nil {
		return nil, wrapReadErr(err, fmt.Sprintf("failed to find product %s", productID))
	}
	return p, nil
}
