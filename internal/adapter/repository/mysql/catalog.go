package mysql

import (
	"context"

	"gorm.io/gorm"

	"medquote-backend/internal/domain/catalog"
)

type CategoryRepository struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) *CategoryRepository { return &CategoryRepository{db: db} }

func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*catalog.Category, error) {
	var out catalog.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CategoryRepository) ListActive(ctx context.Context) ([]catalog.Category, error) {
	var out []catalog.Category
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *CategoryRepository) CountActiveByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&catalog.Category{}).
		Where("id IN ? AND is_active = ?", ids, true).
		Count(&n).Error
	return n, err
}

// SoftDelete sets deleted_at; gorm scopes it out of every later query.
func (r *CategoryRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&catalog.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type ProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) *ProductRepository { return &ProductRepository{db: db} }

func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepository) CreateBatch(ctx context.Context, ps []catalog.Product) error {
	if len(ps) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ps).Error
}

func (r *ProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	var out catalog.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ProductRepository) ListActive(ctx context.Context, categoryID string) ([]catalog.Product, error) {
	var out []catalog.Product
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	err := q.Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *ProductRepository) ListBySupplier(ctx context.Context, supplierID string) ([]catalog.Product, error) {
	var out []catalog.Product
	err := r.db.WithContext(ctx).Where("supplier_id = ?", supplierID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *ProductRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&catalog.Product{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, err
}
