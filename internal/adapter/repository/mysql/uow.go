package mysql

import (
	"context"

	"gorm.io/gorm"

	"medquote-backend/internal/domain/account"
	"medquote-backend/internal/domain/rfq"
	"medquote-backend/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Users:      NewUserRepository(tx),
		Hospitals:  NewHospitalRepository(tx),
		Suppliers:  NewSupplierRepository(tx),
		Categories: NewCategoryRepository(tx),
		Products:   NewProductRepository(tx),
		RFQs:       NewRFQRepository(tx),
		Quotations: NewQuotationRepository(tx),
		Credits:    NewCreditRepository(tx),
	}
}

// Repos returns repositories bound to the root connection (no tx).
func (u *GormUoW) Repos() uow.Repos { return reposFor(u.db) }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinRFQTx(ctx context.Context, rfqID string, fn func(r uow.Repos, q *rfq.RFQ) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the rfq row up-front so status checks are race-free
		q, err := r.RFQs.GetByIDForUpdate(ctx, rfqID)
		if err != nil {
			return err
		}
		return fn(r, q)
	})
}

func (u *GormUoW) WithinSupplierTx(ctx context.Context, supplierID string, fn func(r uow.Repos, s *account.Supplier) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		s, err := r.Suppliers.GetByIDForUpdate(ctx, supplierID)
		if err != nil {
			return err
		}
		return fn(r, s)
	})
}
