package catalog

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"medquote-backend/internal/domain/errs"
)

var (
	ErrCategoryNotFound = errs.New(errs.KindNotFound, "category not found")
	ErrCategoryInUse    = errs.New(errs.KindConflict, "category is referenced by suppliers or products")
	ErrCategoryExists   = errs.New(errs.KindConflict, "category with the same name already exists")
	ErrProductNotFound  = errs.New(errs.KindNotFound, "product not found")
	ErrNotProductOwner  = errs.New(errs.KindForbidden, "product belongs to another supplier")
)

// Table: categories (soft-deletable)
type Category struct {
	ID          string         `gorm:"primaryKey;type:char(32)" json:"id"`
	Name        string         `gorm:"size:255;not null;uniqueIndex:ux_categories_name" json:"name"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool           `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string { return "categories" }

// Table: products (supplier catalog entries)
type Product struct {
	ID               string                      `gorm:"primaryKey;type:char(32)" json:"id"`
	Name             string                      `gorm:"size:255;not null" json:"name"`
	CategoryID       string                      `gorm:"type:char(32);not null;index:idx_products_category_active" json:"category_id"`
	SupplierID       string                      `gorm:"type:char(32);not null;index" json:"supplier_id"`
	Unit             string                      `gorm:"size:32;not null" json:"unit"`
	DefaultUnitPrice float64                     `gorm:"type:decimal(18,2);not null" json:"default_unit_price"`
	MinOrderQty      int                         `gorm:"not null" json:"min_order_quantity"`
	DeliveryTime     string                      `gorm:"size:64;not null" json:"delivery_time"`
	IsActive         bool                        `gorm:"not null;index:idx_products_category_active" json:"is_active"`
	ImageRefs        datatypes.JSONSlice[string] `json:"image_refs,omitempty"`
	CreatedAt        time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "products" }
