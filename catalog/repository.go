package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"gofalre.io/storefront/models"
)

// CategoryAll is the tag that matches every product.
const CategoryAll = "all"

// ErrProductNotFound is returned by GetByID for unknown ids.
var ErrProductNotFound = errors.New("product not found")

//go:embed catalog.yaml
var defaultCatalog []byte

var _ Repository = (*repository)(nil)

type Repository interface {
	List(ctx context.Context) ([]*models.Product, error)
	GetByID(ctx context.Context, id uint64) (*models.Product, error)
	Categories(ctx context.Context) ([]*models.Category, error)
	Filter(ctx context.Context, filter Filter) ([]*models.Product, error)
	Featured(ctx context.Context, limit int) ([]*models.Product, error)
}

// Filter narrows the product list. An empty Category or CategoryAll matches
// every category; Query matches name or description, ignoring case.
type Filter struct {
	Category string
	Query    string
}

type document struct {
	Categories []*models.Category `yaml:"categories"`
	Products   []*models.Product  `yaml:"products"`
}

type repository struct {
	products   []*models.Product
	byID       map[uint64]*models.Product
	categories []*models.Category
	logger     *zap.Logger
}

// NewRepository loads the catalog from path, or the built-in catalog when
// path is empty.
func NewRepository(path string, logger *zap.Logger) (Repository, error) {
	raw := defaultCatalog
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			logger.Error("Failed to read catalog", zap.String("path", path), zap.Error(err))
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
	}

	return newRepository(raw, logger)
}

func newRepository(raw []byte, logger *zap.Logger) (*repository, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		logger.Error("Failed to parse catalog", zap.Error(err))
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	byID := make(map[uint64]*models.Product, len(doc.Products))
	for _, p := range doc.Products {
		if p.ID == 0 {
			return nil, fmt.Errorf("catalog product %q has no id", p.Name)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog product id %d is repeated", p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("catalog product %d has negative price", p.ID)
		}
		byID[p.ID] = p
	}

	categories := doc.Categories
	if len(categories) == 0 || categories[0].ID != CategoryAll {
		categories = append([]*models.Category{{ID: CategoryAll, Name: "All Products"}}, categories...)
	}

	logger.Debug("Catalog loaded", zap.Int("products", len(doc.Products)), zap.Int("categories", len(categories)))

	return &repository{
		products:   doc.Products,
		byID:       byID,
		categories: categories,
		logger:     logger,
	}, nil
}

func (r *repository) List(_ context.Context) ([]*models.Product, error) {
	return clone(r.products), nil
}

func (r *repository) GetByID(_ context.Context, id uint64) (*models.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	product := *p
	return &product, nil
}

func (r *repository) Categories(_ context.Context) ([]*models.Category, error) {
	categories := make([]*models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		category := *c
		categories = append(categories, &category)
	}
	return categories, nil
}

func (r *repository) Filter(_ context.Context, filter Filter) ([]*models.Product, error) {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	category := strings.TrimSpace(filter.Category)

	matched := make([]*models.Product, 0, len(r.products))
	for _, p := range r.products {
		if category != "" && category != CategoryAll && p.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		matched = append(matched, p)
	}
	return clone(matched), nil
}

// Featured returns the first limit products in catalog order.
func (r *repository) Featured(_ context.Context, limit int) ([]*models.Product, error) {
	if limit <= 0 || limit > len(r.products) {
		limit = len(r.products)
	}
	return clone(r.products[:limit]), nil
}

func clone(products []*models.Product) []*models.Product {
	out := make([]*models.Product, 0, len(products))
	for _, p := range products {
		product := *p
		out = append(out, &product)
	}
	return out
}
