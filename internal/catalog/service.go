package catalog

import (
	"context"
	"errors"
	"strings"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	Create(ctx context.Context, p Product) (int64, error)
	Get(ctx context.Context, id int64) (Product, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	List(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
}

// Service coordinates catalog operations.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ErrInvalidStockLevels indicates min level above max level.
var ErrInvalidStockLevels = errors.New("catalog: min stock level exceeds max stock level")

// Create registers a new product with its opening stock.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (ProductView, error) {
	if req.MaxStockLevel > 0 && req.MinStockLevel > req.MaxStockLevel {
		return ProductView{}, ErrInvalidStockLevels
	}
	p := Product{
		Name:          strings.TrimSpace(req.Name),
		SKU:           strings.ToUpper(strings.TrimSpace(req.SKU)),
		Barcode:       strings.TrimSpace(req.Barcode),
		Variant:       strings.TrimSpace(req.Variant),
		Category:      strings.TrimSpace(req.Category),
		Price:         req.Price,
		Cost:          req.Cost,
		GodownStock:   req.GodownStock,
		CounterStock:  req.CounterStock,
		MinStockLevel: req.MinStockLevel,
		MaxStockLevel: req.MaxStockLevel,
	}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return ProductView{}, err
	}
	created, err := s.repo.Get(ctx, id)
	if err != nil {
		return ProductView{}, err
	}
	return viewOf(created), nil
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, id int64) (ProductView, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return ProductView{}, err
	}
	return viewOf(p), nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (ProductView, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return ProductView{}, err
	}

	minLevel := existing.MinStockLevel
	maxLevel := existing.MaxStockLevel
	if req.MinStockLevel != nil {
		minLevel = *req.MinStockLevel
	}
	if req.MaxStockLevel != nil {
		maxLevel = *req.MaxStockLevel
	}
	if maxLevel > 0 && minLevel > maxLevel {
		return ProductView{}, ErrInvalidStockLevels
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Barcode != nil {
		updates["barcode"] = strings.TrimSpace(*req.Barcode)
	}
	if req.Variant != nil {
		updates["variant"] = strings.TrimSpace(*req.Variant)
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Cost != nil {
		updates["cost"] = *req.Cost
	}
	if req.MinStockLevel != nil {
		updates["min_stock_level"] = minLevel
	}
	if req.MaxStockLevel != nil {
		updates["max_stock_level"] = maxLevel
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return ProductView{}, err
	}
	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return ProductView{}, err
	}
	return viewOf(updated), nil
}

// Deactivate retires a product from the POS without deleting its history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, map[string]any{"is_active": false})
}

// List returns filtered products with stock status attached.
func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]ProductView, int, error) {
	products, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, viewOf(p))
	}
	return views, total, nil
}

// LowStock returns every product at or below its minimum level.
func (s *Service) LowStock(ctx context.Context) ([]ProductView, error) {
	views, _, err := s.List(ctx, ListProductsRequest{OnlyLow: true, OnlyActive: true, PerPage: 500})
	return views, err
}

// Filter is an in-memory case-insensitive substring match on name, sku and
// barcode. Input order is preserved; there is no ranking.
func Filter(products []Product, query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products
	}
	matched := []Product{}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.SKU), q) ||
			strings.Contains(strings.ToLower(p.Barcode), q) {
			matched = append(matched, p)
		}
	}
	return matched
}
