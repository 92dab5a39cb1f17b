package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
)

// StaticCatalog implements ports.ProductSource over a fixed product list.
type StaticCatalog struct {
	products []domain.Product
}

var _ ports.ProductSource = (*StaticCatalog)(nil)

// NewStaticCatalog returns a catalog over the given products, or the
// built-in beauty catalog when none are given.
func NewStaticCatalog(products ...domain.Product) *StaticCatalog {
	if len(products) == 0 {
		products = domain.Products()
	}
	return &StaticCatalog{products: products}
}

// List returns a copy of the products.
func (c *StaticCatalog) List(ctx context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

// Get returns the product with the given ID.
func (c *StaticCatalog) Get(ctx context.Context, id int) (domain.Product, error) {
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrProductNotFound)
}
