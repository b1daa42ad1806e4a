package uow

import (
	"context"

	"medquote-backend/internal/domain/account"
	"medquote-backend/internal/domain/catalog"
	"medquote-backend/internal/domain/credit"
	"medquote-backend/internal/domain/quotation"
	"medquote-backend/internal/domain/rfq"
)

// Repos are bound to the same transaction.
type Repos struct {
	Users      account.UserRepository
	Hospitals  account.HospitalRepository
	Suppliers  account.SupplierRepository
	Categories catalog.CategoryRepository
	Products   catalog.ProductRepository
	RFQs       rfq.Repository
	Quotations quotation.Repository
	Credits    credit.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the rfq row first, then pass it in
	WithinRFQTx(ctx context.Context, rfqID string, fn func(r Repos, q *rfq.RFQ) error) error
	// lock the supplier row first (credit balance), then pass it in
	WithinSupplierTx(ctx context.Context, supplierID string, fn func(r Repos, s *account.Supplier) error) error
}
