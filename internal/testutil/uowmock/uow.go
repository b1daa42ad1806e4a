// Package uowmock is a function-backed uow.UnitOfWork for failure-path tests.
package uowmock

import (
	"context"
	"errors"

	"medquote-backend/internal/domain/account"
	"medquote-backend/internal/domain/rfq"
	"medquote-backend/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW routes each method to its Fn field; unset ones return errUnimplemented.
type UoW struct {
	WithinTxFn         func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinRFQTxFn      func(ctx context.Context, rfqID string, fn func(r uow.Repos, q *rfq.RFQ) error) error
	WithinSupplierTxFn func(ctx context.Context, supplierID string, fn func(r uow.Repos, s *account.Supplier) error) error
}

// Failing returns a UoW whose every transaction fails with err before fn runs.
func Failing(err error) *UoW {
	return &UoW{
		WithinTxFn: func(context.Context, func(uow.Repos) error) error { return err },
		WithinRFQTxFn: func(context.Context, string, func(uow.Repos, *rfq.RFQ) error) error {
			return err
		},
		WithinSupplierTxFn: func(context.Context, string, func(uow.Repos, *account.Supplier) error) error {
			return err
		},
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinRFQTx(ctx context.Context, rfqID string, fn func(r uow.Repos, q *rfq.RFQ) error) error {
	if m.WithinRFQTxFn != nil {
		return m.WithinRFQTxFn(ctx, rfqID, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinSupplierTx(ctx context.Context, supplierID string, fn func(r uow.Repos, s *account.Supplier) error) error {
	if m.WithinSupplierTxFn != nil {
		return m.WithinSupplierTxFn(ctx, supplierID, fn)
	}
	return errUnimplemented
}
