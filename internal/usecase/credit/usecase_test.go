package credit

import (
	"context"
	"errors"
	"testing"

	"medquote-backend/internal/domain/account"
	domain "medquote-backend/internal/domain/credit"
	"medquote-backend/internal/domain/uow"
	"medquote-backend/internal/infrastructure/payment"
	"medquote-backend/internal/testutil/fixture"
	"medquote-backend/internal/usecase/access"
)

// ----- test doubles -----

type mockCheckout struct {
	CreateCheckoutFn func(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error)
}

func (m *mockCheckout) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	if m.CreateCheckoutFn != nil {
		return m.CreateCheckoutFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func newUsecase(env *fixture.Env, co Checkout) *Usecase {
	g := access.NewGuard(env.Repos.Users, env.Repos.Hospitals, env.Repos.Suppliers)
	return NewUsecase(env.UoW, env.Repos, g, env.Settings, co)
}

// ----- tests -----

func TestPost_RejectsOverdraftAndKeepsBalance(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	_, s := env.Supplier(t, "auth|s", 0)

	err := env.UoW.WithinSupplierTx(ctx, s.ID, func(r uow.Repos, locked *account.Supplier) error {
		_, err := Post(ctx, r, locked, domain.TypeDeduction, -1, "quotation", nil)
		return err
	})
	if !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("err=%v", err)
	}
	if bal := env.AssertLedger(t, s.ID); bal != 0 {
		t.Fatalf("balance=%d", bal)
	}
}

func TestPurchase_IdempotentOnReference(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	_, s := env.Supplier(t, "auth|s", 2)
	uc := newUsecase(env, nil)

	in := ConfirmPurchaseInput{SessionID: "cs_abc", SupplierID: s.ID, PackageID: "pack_10"}
	first, replay, err := uc.ConfirmPurchase(ctx, in)
	if err != nil || replay {
		t.Fatalf("first: %v replay=%v", err, replay)
	}
	if first.BalanceAfter != 12 || first.Type != domain.TypePurchase {
		t.Fatalf("tx=%+v", first)
	}

	second, replay, err := uc.ConfirmPurchase(ctx, in)
	if err != nil || !replay {
		t.Fatalf("second: %v replay=%v", err, replay)
	}
	if second.ID != first.ID {
		t.Fatalf("replay should return the original row")
	}
	if bal := env.AssertLedger(t, s.ID); bal != 12 {
		t.Fatalf("balance=%d", bal)
	}
}

func TestConfirmPurchase_UnlimitedSupplierTracksLedger(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	_, s := env.Supplier(t, "auth|s", 0)
	s.Unlimited = true
	if err := env.Repos.Suppliers.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	uc := newUsecase(env, nil)

	tx, replay, err := uc.ConfirmPurchase(ctx, ConfirmPurchaseInput{SessionID: "cs_unl", SupplierID: s.ID, PackageID: "pack_10"})
	if err != nil || replay {
		t.Fatalf("confirm: %v replay=%v", err, replay)
	}
	if tx.BalanceAfter != 10 {
		t.Fatalf("balance_after=%d", tx.BalanceAfter)
	}
	if bal := env.AssertLedger(t, s.ID); bal != 10 {
		t.Fatalf("balance=%d", bal)
	}
}

func TestConfirmPurchase_Errors(t *testing.T) {
	env := fixture.New(t)
	uc := newUsecase(env, nil)
	ctx := context.Background()

	if _, _, err := uc.ConfirmPurchase(ctx, ConfirmPurchaseInput{SessionID: "cs", SupplierID: "x", PackageID: "pack_7"}); !errors.Is(err, domain.ErrUnknownPackage) {
		t.Fatalf("unknown package: %v", err)
	}
	_, _, err := uc.ConfirmPurchase(ctx, ConfirmPurchaseInput{SessionID: "cs", SupplierID: "00000000000000000000000000000000", PackageID: "pack_10"})
	if !errors.Is(err, account.ErrSupplierNotFound) {
		t.Fatalf("unknown supplier: %v", err)
	}
}

func TestAdjust(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	_, s := env.Supplier(t, "auth|s", 3)
	uc := newUsecase(env, nil)

	if _, err := uc.Adjust(ctx, s.ID, -4, ""); !errors.Is(err, domain.ErrInsufficientCredits) {
		t.Fatalf("overdraft: %v", err)
	}
	if _, err := uc.Adjust(ctx, s.ID, 0, ""); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("zero: %v", err)
	}
	tx, err := uc.Adjust(ctx, s.ID, -3, "chargeback")
	if err != nil || tx.BalanceAfter != 0 {
		t.Fatalf("adjust: %v %+v", err, tx)
	}
	if bal := env.AssertLedger(t, s.ID); bal != 0 {
		t.Fatalf("balance=%d", bal)
	}

	s2, _ := env.Repos.Suppliers.GetByID(ctx, s.ID)
	s2.Unlimited = true
	_ = env.Repos.Suppliers.Save(ctx, s2)
	if _, err := uc.Adjust(ctx, s.ID, 5, ""); !errors.Is(err, domain.ErrUnlimitedSupplier) {
		t.Fatalf("unlimited: %v", err)
	}
}

func TestVerifyConsistency_DetectsDrift(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	_, s := env.Supplier(t, "auth|s", 5)
	uc := newUsecase(env, nil)

	got, err := uc.VerifyConsistency(ctx, s.ID)
	if err != nil || !got.Consistent || got.LedgerSum != 5 {
		t.Fatalf("consistent: %v %+v", err, got)
	}

	// write the balance behind the ledger's back
	env.DB.Model(&account.Supplier{}).Where("id = ?", s.ID).Update("credit_balance", 9)
	got, _ = uc.VerifyConsistency(ctx, s.ID)
	if got.Consistent || got.Balance != 9 || got.LedgerSum != 5 {
		t.Fatalf("drift not detected: %+v", got)
	}
}

func TestStartCheckout(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	_, s := env.Supplier(t, "auth|s", 1)

	var seen payment.CheckoutRequest
	uc := newUsecase(env, &mockCheckout{
		CreateCheckoutFn: func(_ context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
			seen = req
			return &payment.Session{ID: "cs_1", URL: "http://pay/cs_1"}, nil
		},
	})

	dto, err := uc.StartCheckout(ctx, "auth|s", "pack_50")
	if err != nil {
		t.Fatalf("StartCheckout: %v", err)
	}
	if dto.SessionID != "cs_1" || dto.Package.Credits != 50 {
		t.Fatalf("dto=%+v", dto)
	}
	if seen.SupplierID != s.ID || seen.Credits != 50 {
		t.Fatalf("request=%+v", seen)
	}
	if _, err := uc.StartCheckout(ctx, "auth|s", "nope"); !errors.Is(err, domain.ErrUnknownPackage) {
		t.Fatalf("unknown package: %v", err)
	}
}

func TestBalanceAndHistory(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	_, s := env.Supplier(t, "auth|s", 5)
	uc := newUsecase(env, nil)
	if _, err := uc.Adjust(ctx, s.ID, 2, "bonus"); err != nil {
		t.Fatal(err)
	}

	b, err := uc.Balance(ctx, "auth|s")
	if err != nil || b.Balance != 7 || !b.CreditSystemEnabled {
		t.Fatalf("balance: %v %+v", err, b)
	}
	h, err := uc.History(ctx, "auth|s", 0)
	if err != nil || len(h) != 2 {
		t.Fatalf("history: %v %d", err, len(h))
	}
	if len(uc.Packages()) != 3 {
		t.Fatalf("packages=%v", uc.Packages())
	}
}
