package catalog

import "context"

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	ListActive(ctx context.Context) ([]Category, error)
	// CountActiveByIDs is used to check that every referenced category exists.
	CountActiveByIDs(ctx context.Context, ids []string) (int64, error)
	SoftDelete(ctx context.Context, id string) error
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	CreateBatch(ctx context.Context, ps []Product) error
	Save(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	// ListActive returns active products, optionally narrowed to one category.
	ListActive(ctx context.Context, categoryID string) ([]Product, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
}
