package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	products map[int64]Product
	order    []int64
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: map[int64]Product{}}
}

func (r *memoryRepo) Create(ctx context.Context, p Product) (int64, error) {
	for _, existing := range r.products {
		if existing.SKU == p.SKU {
			return 0, ErrDuplicateSKU
		}
	}
	r.nextID++
	p.ID = r.nextID
	p.IsActive = true
	r.products[p.ID] = p
	r.order = append(r.order, p.ID)
	return p.ID, nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	p, ok := r.products[id]
	if !ok {
		return ErrNotFound
	}
	for col, val := range updates {
		switch col {
		case "name":
			p.Name = val.(string)
		case "price":
			p.Price = val.(float64)
		case "cost":
			p.Cost = val.(float64)
		case "min_stock_level":
			p.MinStockLevel = val.(int)
		case "max_stock_level":
			p.MaxStockLevel = val.(int)
		case "is_active":
			p.IsActive = val.(bool)
		}
	}
	r.products[id] = p
	return nil
}

func (r *memoryRepo) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	all := make([]Product, 0, len(r.order))
	for _, id := range r.order {
		p := r.products[id]
		if req.OnlyActive && !p.IsActive {
			continue
		}
		if req.OnlyLow && p.TotalStock() > p.MinStockLevel {
			continue
		}
		all = append(all, p)
	}
	filtered := Filter(all, req.Search)
	return filtered, len(filtered), nil
}

func TestCreateAndGet(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{
		Name: "Old Monk", SKU: "om-750", Price: 850, Cost: 600,
		GodownStock: 40, CounterStock: 6, MinStockLevel: 10, MaxStockLevel: 80,
	})
	require.NoError(t, err)
	require.Equal(t, "OM-750", created.SKU)
	require.Equal(t, 46, created.TotalStock)
	require.Equal(t, StockStatusNormal, created.StockStatus)

	_, err = svc.Create(ctx, CreateProductRequest{Name: "Dup", SKU: "om-750"})
	require.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestStockStatus(t *testing.T) {
	low := Product{GodownStock: 3, CounterStock: 2, MinStockLevel: 5, MaxStockLevel: 50}
	require.Equal(t, StockStatusLow, low.Status())

	over := Product{GodownStock: 45, CounterStock: 10, MinStockLevel: 5, MaxStockLevel: 50}
	require.Equal(t, StockStatusOver, over.Status())

	normal := Product{GodownStock: 20, CounterStock: 5, MinStockLevel: 5, MaxStockLevel: 50}
	require.Equal(t, StockStatusNormal, normal.Status())

	// No max configured means the product can never be overstocked.
	noMax := Product{GodownStock: 100, CounterStock: 100, MinStockLevel: 5}
	require.Equal(t, StockStatusNormal, noMax.Status())
}

func TestFilterPreservesOrder(t *testing.T) {
	products := []Product{
		{ID: 1, Name: "Kingfisher Strong", SKU: "KF-S"},
		{ID: 2, Name: "Budweiser", SKU: "BUD", Barcode: "890123"},
		{ID: 3, Name: "Kingfisher Ultra", SKU: "KF-U"},
	}

	matched := Filter(products, "kingfisher")
	require.Len(t, matched, 2)
	require.Equal(t, int64(1), matched[0].ID)
	require.Equal(t, int64(3), matched[1].ID)

	matched = Filter(products, "kf-u")
	require.Len(t, matched, 1)
	require.Equal(t, int64(3), matched[0].ID)

	matched = Filter(products, "890123")
	require.Len(t, matched, 1)
	require.Equal(t, int64(2), matched[0].ID)

	require.Len(t, Filter(products, ""), 3)
	require.Empty(t, Filter(products, "no such drink"))
}

func TestUpdateRejectsInvalidLevels(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{Name: "Soda", SKU: "SODA", MinStockLevel: 5, MaxStockLevel: 50})
	require.NoError(t, err)

	badMin := 80
	_, err = svc.Update(ctx, created.ID, UpdateProductRequest{MinStockLevel: &badMin})
	require.ErrorIs(t, err, ErrInvalidStockLevels)
}

func TestDeactivateHidesFromActiveList(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{Name: "Seasonal Ale", SKU: "ALE"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, created.ID))

	views, _, err := svc.List(ctx, ListProductsRequest{OnlyActive: true})
	require.NoError(t, err)
	require.Empty(t, views)
}
