package credit

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"medquote-backend/internal/domain/account"
	domain "medquote-backend/internal/domain/credit"
	"medquote-backend/internal/domain/setting"
	"medquote-backend/internal/domain/uow"
	applog "medquote-backend/internal/infrastructure/logger"
	"medquote-backend/internal/infrastructure/payment"
	"medquote-backend/internal/usecase/access"
)

// Checkout creates hosted payment sessions.
type Checkout interface {
	CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error)
}

type Usecase struct {
	uow       uow.UnitOfWork
	credits   domain.Repository
	suppliers account.SupplierRepository
	guard     *access.Guard
	settings  setting.Reader
	checkout  Checkout
}

func NewUsecase(tx uow.UnitOfWork, repos uow.Repos, guard *access.Guard, settings setting.Reader, checkout Checkout) *Usecase {
	return &Usecase{
		uow:       tx,
		credits:   repos.Credits,
		suppliers: repos.Suppliers,
		guard:     guard,
		settings:  settings,
		checkout:  checkout,
	}
}

func (u *Usecase) Packages() []Package {
	out := make([]Package, len(packages))
	copy(out, packages)
	return out
}

func (u *Usecase) Balance(ctx context.Context, identity string) (*BalanceDTO, error) {
	_, s, err := u.guard.RequireSupplier(ctx, identity)
	if err != nil {
		return nil, err
	}
	enabled, err := u.settings.CreditSystemEnabled(ctx)
	if err != nil {
		return nil, err
	}
	return &BalanceDTO{SupplierID: s.ID, Balance: s.CreditBalance, Unlimited: s.Unlimited, CreditSystemEnabled: enabled}, nil
}

func (u *Usecase) History(ctx context.Context, identity string, limit int) ([]domain.Transaction, error) {
	_, s, err := u.guard.RequireSupplier(ctx, identity)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return u.credits.ListBySupplier(ctx, s.ID, limit)
}

func (u *Usecase) StartCheckout(ctx context.Context, identity, packageID string) (*CheckoutDTO, error) {
	_, s, err := u.guard.RequireSupplier(ctx, identity)
	if err != nil {
		return nil, err
	}
	if s.Unlimited {
		return nil, domain.ErrUnlimitedSupplier
	}
	pkg, ok := findPackage(packageID)
	if !ok {
		return nil, domain.ErrUnknownPackage
	}
	sess, err := u.checkout.CreateCheckout(ctx, payment.CheckoutRequest{
		SupplierID: s.ID,
		PackageID:  pkg.ID,
		Credits:    pkg.Credits,
		PriceCents: pkg.PriceCents,
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout: %w", err)
	}
	return &CheckoutDTO{SessionID: sess.ID, URL: sess.URL, Package: pkg}, nil
}

// ConfirmPurchase credits a paid checkout session. The session id is the
// ledger reference, so webhook replays return the original row.
func (u *Usecase) ConfirmPurchase(ctx context.Context, in ConfirmPurchaseInput) (*domain.Transaction, bool, error) {
	pkg, ok := findPackage(in.PackageID)
	if !ok {
		return nil, false, domain.ErrUnknownPackage
	}
	return u.Purchase(ctx, in.SupplierID, pkg.Credits, "purchase of "+pkg.Name+" package", in.SessionID)
}

// Purchase adds amount credits once per reference. The bool reports a replay.
func (u *Usecase) Purchase(ctx context.Context, supplierID string, amount int64, description, reference string) (*domain.Transaction, bool, error) {
	if prev, err := u.credits.GetByReference(ctx, reference); err == nil {
		return prev, true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	var t *domain.Transaction
	err := u.uow.WithinSupplierTx(ctx, supplierID, func(r uow.Repos, s *account.Supplier) error {
		var err error
		t, err = Post(ctx, r, s, domain.TypePurchase, amount, description, &reference)
		return err
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, account.ErrSupplierNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// concurrent delivery of the same webhook won the insert
		prev, gerr := u.credits.GetByReference(ctx, reference)
		if gerr != nil {
			return nil, false, gerr
		}
		return prev, true, nil
	case err != nil:
		return nil, false, err
	}
	Committed(t)
	applog.Ctx(ctx).Info("credits purchased",
		zap.String("supplier_id", supplierID), zap.Int64("amount", amount), zap.Int64("balance_after", t.BalanceAfter))
	return t, false, nil
}

// Adjust posts an admin correction; the balance may not go below zero.
func (u *Usecase) Adjust(ctx context.Context, supplierID string, delta int64, description string) (*domain.Transaction, error) {
	if description == "" {
		description = "admin adjustment"
	}
	var t *domain.Transaction
	err := u.uow.WithinSupplierTx(ctx, supplierID, func(r uow.Repos, s *account.Supplier) error {
		if s.Unlimited {
			return domain.ErrUnlimitedSupplier
		}
		var err error
		t, err = Post(ctx, r, s, domain.TypeAdminAdjustment, delta, description, nil)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, account.ErrSupplierNotFound
	}
	if err != nil {
		return nil, err
	}
	Committed(t)
	return t, nil
}

func (u *Usecase) VerifyConsistency(ctx context.Context, supplierID string) (*ConsistencyDTO, error) {
	s, err := u.suppliers.GetByID(ctx, supplierID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, account.ErrSupplierNotFound
	}
	if err != nil {
		return nil, err
	}
	sum, err := u.credits.SumBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	ok := sum == s.CreditBalance
	if !ok {
		applog.Ctx(ctx).Error("ledger drift detected",
			zap.String("supplier_id", s.ID), zap.Int64("balance", s.CreditBalance), zap.Int64("ledger_sum", sum))
	}
	return &ConsistencyDTO{SupplierID: s.ID, Balance: s.CreditBalance, LedgerSum: sum, Consistent: ok}, nil
}
