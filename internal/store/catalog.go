package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/banking/retirement-service/internal/domain"
	"github.com/banking/retirement-service/internal/pkg/logger"
)

// Catalog is the immutable, ordered product catalog loaded once at startup
type Catalog struct {
	products []domain.Product
}

// LoadCatalog reads the product catalog from a JSON document
func LoadCatalog(path string, log *logger.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading product catalog: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decoding product catalog %s: %w", path, err)
	}

	log.CatalogLoaded(path, len(products))
	return &Catalog{products: products}, nil
}

// Products returns the catalog in load order. Callers must treat the
// returned slice as read-only.
func (c *Catalog) Products() []domain.Product {
	return c.products
}

// Len returns the number of products in the catalog
func (c *Catalog) Len() int {
	return len(c.products)
}
