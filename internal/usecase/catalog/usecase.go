package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "medquote-backend/internal/domain/catalog"
	"medquote-backend/internal/domain/uow"
	applog "medquote-backend/internal/infrastructure/logger"
	"medquote-backend/internal/usecase/access"
	"medquote-backend/pkg/id"
)

type ProductInput struct {
	Name             string   `json:"name" validate:"required,max=255"`
	CategoryID       string   `json:"category_id" validate:"required,hex32"`
	Unit             string   `json:"unit" validate:"required,max=32"`
	DefaultUnitPrice float64  `json:"default_unit_price" validate:"gt=0,dec2"`
	MinOrderQty      int      `json:"min_order_quantity" validate:"gte=1"`
	DeliveryTime     string   `json:"delivery_time" validate:"required,max=64"`
	ImageRefs        []string `json:"image_refs,omitempty" validate:"omitempty,max=10,dive,max=512"`
}

type Usecase struct {
	uow   uow.UnitOfWork
	repos uow.Repos
	guard *access.Guard
}

func NewUsecase(tx uow.UnitOfWork, repos uow.Repos, guard *access.Guard) *Usecase {
	return &Usecase{uow: tx, repos: repos, guard: guard}
}

func (u *Usecase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return u.repos.Categories.ListActive(ctx)
}

// ListProducts returns active products, all of them when categoryID is empty.
func (u *Usecase) ListProducts(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return u.repos.Products.ListActive(ctx, categoryID)
}

func (u *Usecase) ListMine(ctx context.Context, identity string) ([]domain.Product, error) {
	_, s, err := u.guard.RequireSupplier(ctx, identity)
	if err != nil {
		return nil, err
	}
	return u.repos.Products.ListBySupplier(ctx, s.ID)
}

// CreateProduct adds a product to the caller's catalog. The product's category
// joins the supplier's category set so matching RFQs reach them.
func (u *Usecase) CreateProduct(ctx context.Context, identity string, in ProductInput) (*domain.Product, error) {
	_, s, err := u.guard.RequireSupplier(ctx, identity)
	if err != nil {
		return nil, err
	}
	p := &domain.Product{
		ID:               id.NewID32(),
		Name:             in.Name,
		CategoryID:       in.CategoryID,
		SupplierID:       s.ID,
		Unit:             in.Unit,
		DefaultUnitPrice: in.DefaultUnitPrice,
		MinOrderQty:      in.MinOrderQty,
		DeliveryTime:     in.DeliveryTime,
		IsActive:         true,
		ImageRefs:        in.ImageRefs,
	}
	err = u.uow.WithinTx(ctx, func(tx uow.Repos) error {
		if err := activeCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		if err := tx.Products.Create(ctx, p); err != nil {
			return err
		}
		return tx.Suppliers.AddCategories(ctx, s.ID, []string{in.CategoryID})
	})
	if err != nil {
		return nil, err
	}
	applog.Ctx(ctx).Info("product created", zap.String("product_id", p.ID), zap.String("supplier_id", s.ID))
	return p, nil
}

func (u *Usecase) UpdateProduct(ctx context.Context, identity, productID string, in ProductInput) (*domain.Product, error) {
	_, s, err := u.guard.RequireSupplier(ctx, identity)
	if err != nil {
		return nil, err
	}
	var out *domain.Product
	err = u.uow.WithinTx(ctx, func(tx uow.Repos) error {
		p, err := owned(ctx, tx, s.ID, productID)
		if err != nil {
			return err
		}
		if p.CategoryID != in.CategoryID {
			if err := activeCategory(ctx, tx, in.CategoryID); err != nil {
				return err
			}
			if err := tx.Suppliers.AddCategories(ctx, s.ID, []string{in.CategoryID}); err != nil {
				return err
			}
		}
		p.Name = in.Name
		p.CategoryID = in.CategoryID
		p.Unit = in.Unit
		p.DefaultUnitPrice = in.DefaultUnitPrice
		p.MinOrderQty = in.MinOrderQty
		p.DeliveryTime = in.DeliveryTime
		p.ImageRefs = in.ImageRefs
		if err := tx.Products.Save(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// SetProductActive toggles whether the product takes part in auto-quotation.
func (u *Usecase) SetProductActive(ctx context.Context, identity, productID string, active bool) (*domain.Product, error) {
	_, s, err := u.guard.RequireSupplier(ctx, identity)
	if err != nil {
		return nil, err
	}
	p, err := owned(ctx, u.repos, s.ID, productID)
	if err != nil {
		return nil, err
	}
	p.IsActive = active
	if err := u.repos.Products.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func owned(ctx context.Context, r uow.Repos, supplierID, productID string) (*domain.Product, error) {
	p, err := r.Products.GetByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.SupplierID != supplierID {
		return nil, domain.ErrNotProductOwner
	}
	return p, nil
}

func activeCategory(ctx context.Context, r uow.Repos, categoryID string) error {
	c, err := r.Categories.GetByID(ctx, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrCategoryNotFound
	}
	if err != nil {
		return err
	}
	if !c.IsActive {
		return domain.ErrCategoryNotFound
	}
	return nil
}
