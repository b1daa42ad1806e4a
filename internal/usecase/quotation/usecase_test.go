package quotation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"medquote-backend/internal/adapter/repository/mysql"
	"medquote-backend/internal/domain/account"
	"medquote-backend/internal/domain/catalog"
	"medquote-backend/internal/domain/credit"
	"medquote-backend/internal/domain/notification"
	domain "medquote-backend/internal/domain/quotation"
	"medquote-backend/internal/domain/rfq"
	"medquote-backend/internal/domain/uow"
	"medquote-backend/internal/testutil/fixture"
	"medquote-backend/internal/testutil/notifymock"
	"medquote-backend/internal/usecase/access"
	"medquote-backend/pkg/id"
)

func newUsecase(env *fixture.Env) (*Usecase, *notifymock.Recorder) {
	g := access.NewGuard(env.Repos.Users, env.Repos.Hospitals, env.Repos.Suppliers)
	rec := &notifymock.Recorder{}
	return NewUsecase(env.UoW, env.Repos, g, env.Settings, rec, Options{LowCreditThreshold: 1}), rec
}

func submit(rfqID string, price float64) SubmitInput {
	return SubmitInput{RFQID: rfqID, UnitPrice: price, DeliveryTime: "2 days"}
}

func count(t *testing.T, env *fixture.Env, rfqID string) int {
	t.Helper()
	qs, err := env.Repos.Quotations.ListByRFQ(context.Background(), rfqID)
	if err != nil {
		t.Fatal(err)
	}
	return len(qs)
}

func TestEndToEndScenario(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	cat := env.Category(t, "PPE")
	hu, h := env.Hospital(t, "auth|h", account.StatusApproved)
	_, s1 := env.Supplier(t, "auth|s1", 0, cat.ID)
	env.Product(t, s1.ID, cat.ID, 100)
	_, s2 := env.Supplier(t, "auth|s2", 1, cat.ID)
	r := env.RFQ(t, h, hu.ID, cat.ID, 10)
	uc, rec := newUsecase(env)

	n, err := uc.AutoGenerate(ctx, r.ID)
	if err != nil || n != 1 {
		t.Fatalf("AutoGenerate: n=%d err=%v", n, err)
	}
	auto, err := env.Repos.Quotations.GetByRFQAndSupplier(ctx, r.ID, s1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if auto.TotalPrice != 1000 || !auto.IsAutoGenerated || auto.CreditsCharged != 0 {
		t.Fatalf("auto=%+v", auto)
	}
	if bal := env.AssertLedger(t, s1.ID); bal != 0 {
		t.Fatalf("auto quotation charged credits: balance=%d", bal)
	}

	manual, err := uc.Submit(ctx, "auth|s2", submit(r.ID, 90))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if manual.TotalPrice != 900 || manual.IsAutoGenerated || manual.CreditsCharged != 1 {
		t.Fatalf("manual=%+v", manual)
	}
	if bal := env.AssertLedger(t, s2.ID); bal != 0 {
		t.Fatalf("s2 balance=%d", bal)
	}
	hist, _ := env.Repos.Credits.ListBySupplier(ctx, s2.ID, 10)
	deductions := 0
	for _, tx := range hist {
		if tx.Type == credit.TypeDeduction {
			deductions++
			if tx.Amount != -1 || tx.BalanceAfter != 0 {
				t.Fatalf("deduction=%+v", tx)
			}
		}
	}
	if deductions != 1 {
		t.Fatalf("ledger=%+v", hist)
	}
	if low := rec.OfType(notification.TypeLowCredits); len(low) != 1 || low[0].SupplierID != s2.ID {
		t.Fatalf("low_credits=%+v", low)
	}

	won, err := uc.Accept(ctx, "auth|h", manual.ID)
	if err != nil || won.Status != domain.StatusAccepted {
		t.Fatalf("Accept: %v %+v", err, won)
	}
	gotRFQ, _ := env.Repos.RFQs.GetByID(ctx, r.ID)
	if gotRFQ.Status != rfq.StatusFulfilled {
		t.Fatalf("rfq status=%s", gotRFQ.Status)
	}
	loser, _ := env.Repos.Quotations.GetByID(ctx, auto.ID)
	if loser.Status != domain.StatusRejected {
		t.Fatalf("auto quotation status=%s", loser.Status)
	}
	if acc := rec.OfType(notification.TypeQuotationAccepted); len(acc) != 1 || acc[0].SupplierID != s2.ID {
		t.Fatalf("accepted=%+v", acc)
	}
	if rej := rec.OfType(notification.TypeQuotationRejected); len(rej) != 1 || rej[0].SupplierID != s1.ID {
		t.Fatalf("rejected=%+v", rej)
	}
}

func TestAutoGenerate_Idempotent(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	cat := env.Category(t, "PPE")
	hu, h := env.Hospital(t, "auth|h", account.StatusApproved)
	_, s1 := env.Supplier(t, "auth|s1", 0, cat.ID)
	env.Product(t, s1.ID, cat.ID, 10)
	env.Product(t, s1.ID, cat.ID, 12)
	_, s2 := env.Supplier(t, "auth|s2", 0, cat.ID)
	env.Product(t, s2.ID, cat.ID, 11)
	_, pending := env.Supplier(t, "auth|s3", 0, cat.ID)
	pending.VerificationStatus = account.StatusPending
	if err := env.Repos.Suppliers.Save(ctx, pending); err != nil {
		t.Fatal(err)
	}
	env.Product(t, pending.ID, cat.ID, 1)
	r := env.RFQ(t, h, hu.ID, cat.ID, 2)
	uc, rec := newUsecase(env)

	first, err := uc.AutoGenerate(ctx, r.ID)
	if err != nil || first != 2 {
		t.Fatalf("first run: n=%d err=%v", first, err)
	}
	second, err := uc.AutoGenerate(ctx, r.ID)
	if err != nil || second != 0 {
		t.Fatalf("second run: n=%d err=%v", second, err)
	}
	if got := count(t, env, r.ID); got != 2 {
		t.Fatalf("quotations=%d, want 2", got)
	}
	if msgs := rec.OfType(notification.TypeQuotationSubmitted); len(msgs) != 1 || msgs[0].HospitalID != h.ID {
		t.Fatalf("summary notifications=%+v", msgs)
	}
}

func TestAutoGenerate_SkipsClosedAndMissing(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	cat := env.Category(t, "PPE")
	hu, h := env.Hospital(t, "auth|h", account.StatusApproved)
	_, s := env.Supplier(t, "auth|s", 0, cat.ID)
	env.Product(t, s.ID, cat.ID, 10)
	r := env.RFQ(t, h, hu.ID, cat.ID, 2)
	r.Status = rfq.StatusClosed
	if err := env.Repos.RFQs.Save(ctx, r); err != nil {
		t.Fatal(err)
	}
	uc, _ := newUsecase(env)

	if n, err := uc.AutoGenerate(ctx, r.ID); err != nil || n != 0 {
		t.Fatalf("closed rfq: n=%d err=%v", n, err)
	}
	if _, err := uc.AutoGenerate(ctx, id.NewID32()); !errors.Is(err, rfq.ErrNotFound) {
		t.Fatalf("missing rfq: err=%v", err)
	}
}

func TestSubmit_ZeroBalanceRejected(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	cat := env.Category(t, "PPE")
	hu, h := env.Hospital(t, "auth|h", account.StatusApproved)
	_, s := env.Supplier(t, "auth|s", 0, cat.ID)
	r := env.RFQ(t, h, hu.ID, cat.ID, 1)
	uc, rec := newUsecase(env)

	if _, err := uc.Submit(ctx, "auth|s", submit(r.ID, 5)); !errors.Is(err, credit.ErrInsufficientCredits) {
		t.Fatalf("err=%v", err)
	}
	if got := count(t, env, r.ID); got != 0 {
		t.Fatalf("quotations=%d", got)
	}
	if bal := env.AssertLedger(t, s.ID); bal != 0 {
		t.Fatalf("balance=%d", bal)
	}
	if len(rec.Msgs) != 0 {
		t.Fatalf("failed submission notified: %+v", rec.Msgs)
	}
}

// rejectingUoW rejects the supplier right before its row is locked, as an
// admin decision committing between the guard check and the transaction would.
type rejectingUoW struct {
	*mysql.GormUoW
	repos uow.Repos
}

func (u rejectingUoW) WithinSupplierTx(ctx context.Context, supplierID string, fn func(r uow.Repos, s *account.Supplier) error) error {
	s, err := u.repos.Suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return err
	}
	s.VerificationStatus = account.StatusRejected
	if err := u.repos.Suppliers.Save(ctx, s); err != nil {
		return err
	}
	return u.GormUoW.WithinSupplierTx(ctx, supplierID, fn)
}

func TestSubmit_RejectedWhileInFlightIsNotCharged(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	cat := env.Category(t, "PPE")
	hu, h := env.Hospital(t, "auth|h", account.StatusApproved)
	_, s := env.Supplier(t, "auth|s", 3, cat.ID)
	r := env.RFQ(t, h, hu.ID, cat.ID, 1)
	g := access.NewGuard(env.Repos.Users, env.Repos.Hospitals, env.Repos.Suppliers)
	rec := &notifymock.Recorder{}
	uc := NewUsecase(rejectingUoW{GormUoW: env.UoW, repos: env.Repos}, env.Repos, g, env.Settings, rec, Options{LowCreditThreshold: 1})

	if _, err := uc.Submit(ctx, "auth|s", submit(r.ID, 5)); !errors.Is(err, account.ErrSupplierNotApproved) {
		t.Fatalf("err=%v", err)
	}
	if got := count(t, env, r.ID); got != 0 {
		t.Fatalf("quotations=%d", got)
	}
	if bal := env.AssertLedger(t, s.ID); bal != 3 {
		t.Fatalf("balance=%d", bal)
	}
	if len(rec.Msgs) != 0 {
		t.Fatalf("rejected submission notified: %+v", rec.Msgs)
	}
}

func TestSubmit_FreeWhenUnlimitedOrDisabled(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	cat := env.Category(t, "PPE")
	hu, h := env.Hospital(t, "auth|h", account.StatusApproved)
	_, unlimited := env.Supplier(t, "auth|admin-s", 0, cat.ID)
	unlimited.Unlimited = true
	if err := env.Repos.Suppliers.Save(ctx, unlimited); err != nil {
		t.Fatal(err)
	}
	_, broke := env.Supplier(t, "auth|broke", 0, cat.ID)
	r := env.RFQ(t, h, hu.ID, cat.ID, 3)
	uc, _ := newUsecase(env)

	q, err := uc.Submit(ctx, "auth|admin-s", submit(r.ID, 5))
	if err != nil || q.CreditsCharged != 0 {
		t.Fatalf("unlimited: %v %+v", err, q)
	}

	if err := env.Settings.SetCreditSystemEnabled(ctx, false); err != nil {
		t.Fatal(err)
	}
	q, err = uc.Submit(ctx, "auth|broke", submit(r.ID, 6))
	if err != nil || q.CreditsCharged != 0 {
		t.Fatalf("credits disabled: %v %+v", err, q)
	}
	if bal := env.AssertLedger(t, broke.ID); bal != 0 {
		t.Fatalf("balance=%d", bal)
	}

	// withdrawing a free quotation refunds nothing
	out, err := uc.Withdraw(ctx, "auth|broke", q.ID)
	if err != nil || out.Refunded != 0 || out.BalanceAfter != 0 {
		t.Fatalf("withdraw free: %v %+v", err, out)
	}
}

func TestSubmit_Rejections(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	cat := env.Category(t, "PPE")
	hu, h := env.Hospital(t, "auth|h", account.StatusApproved)
	_, s := env.Supplier(t, "auth|s", 5, cat.ID)
	_, other := env.Supplier(t, "auth|other", 5, cat.ID)
	foreign := env.Product(t, other.ID, cat.ID, 3)
	open := env.RFQ(t, h, hu.ID, cat.ID, 1)
	closed := env.RFQ(t, h, hu.ID, cat.ID, 1)
	closed.Status = rfq.StatusClosed
	if err := env.Repos.RFQs.Save(ctx, closed); err != nil {
		t.Fatal(err)
	}
	uc, _ := newUsecase(env)

	if _, err := uc.Submit(ctx, "auth|s", submit(open.ID, 5)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	missingProduct := id.NewID32()
	tests := []struct {
		name string
		in   SubmitInput
		want error
	}{
		{"duplicate", submit(open.ID, 7), domain.ErrDuplicate},
		{"closed rfq", submit(closed.ID, 7), rfq.ErrNotOpen},
		{"missing rfq", submit(id.NewID32(), 7), rfq.ErrNotFound},
		{"zero price", submit(open.ID, 0), domain.ErrInvalidPrice},
		{"missing product", SubmitInput{RFQID: env.RFQ(t, h, hu.ID, cat.ID, 1).ID, UnitPrice: 1, DeliveryTime: "1d", ProductID: &missingProduct}, catalog.ErrProductNotFound},
		{"not own product", SubmitInput{RFQID: env.RFQ(t, h, hu.ID, cat.ID, 1).ID, UnitPrice: 1, DeliveryTime: "1d", ProductID: &foreign.ID}, catalog.ErrNotProductOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := uc.Submit(ctx, "auth|s", tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("err=%v want %v", err, tt.want)
			}
		})
	}
	if bal := env.AssertLedger(t, s.ID); bal != 4 {
		t.Fatalf("only the first submission may charge: balance=%d", bal)
	}
}

func TestSubmit_ConcurrentSpendNeverOverdraws(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	cat := env.Category(t, "PPE")
	hu, h := env.Hospital(t, "auth|h", account.StatusApproved)
	_, s := env.Supplier(t, "auth|s", 2, cat.ID)
	var rfqs []string
	for i := 0; i < 5; i++ {
		rfqs = append(rfqs, env.RFQ(t, h, hu.ID, cat.ID, 1).ID)
	}
	uc, _ := newUsecase(env)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for _, rid := range rfqs {
		wg.Add(1)
		go func(rid string) {
			defer wg.Done()
			_, err := uc.Submit(ctx, "auth|s", submit(rid, 1))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, credit.ErrInsufficientCredits) {
				fail++
			}
		}(rid)
	}
	wg.Wait()

	if ok != 2 || fail != 3 {
		t.Fatalf("ok=%d fail=%d, want 2/3", ok, fail)
	}
	if bal := env.AssertLedger(t, s.ID); bal != 0 {
		t.Fatalf("balance=%d", bal)
	}
}

func TestUpdate(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	cat := env.Category(t, "PPE")
	hu, h := env.Hospital(t, "auth|h", account.StatusApproved)
	env.Supplier(t, "auth|s", 3, cat.ID)
	env.Supplier(t, "auth|other", 3, cat.ID)
	r := env.RFQ(t, h, hu.ID, cat.ID, 4)
	uc, _ := newUsecase(env)

	q, err := uc.Submit(ctx, "auth|s", submit(r.ID, 10))
	if err != nil {
		t.Fatal(err)
	}
	notes := "bulk discount"
	got, err := uc.Update(ctx, "auth|s", q.ID, UpdateInput{UnitPrice: 7.5, DeliveryTime: "1 day", Notes: &notes})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.TotalPrice != 30 || got.DeliveryTime != "1 day" || *got.Notes != notes {
		t.Fatalf("updated=%+v", got)
	}

	if _, err := uc.Update(ctx, "auth|other", q.ID, UpdateInput{UnitPrice: 1, DeliveryTime: "x"}); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("other supplier: err=%v", err)
	}
	if _, err := uc.Update(ctx, "auth|s", id.NewID32(), UpdateInput{UnitPrice: 1, DeliveryTime: "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing: err=%v", err)
	}

	r.Status = rfq.StatusClosed
	if err := env.Repos.RFQs.Save(ctx, r); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Update(ctx, "auth|s", q.ID, UpdateInput{UnitPrice: 1, DeliveryTime: "x"}); !errors.Is(err, rfq.ErrNotOpen) {
		t.Fatalf("closed rfq: err=%v", err)
	}
}

func TestWithdraw_RefundsExactCharge(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	cat := env.Category(t, "PPE")
	hu, h := env.Hospital(t, "auth|h", account.StatusApproved)
	_, s := env.Supplier(t, "auth|s", 1, cat.ID)
	env.Supplier(t, "auth|other", 1, cat.ID)
	r := env.RFQ(t, h, hu.ID, cat.ID, 1)
	uc, _ := newUsecase(env)

	q, err := uc.Submit(ctx, "auth|s", submit(r.ID, 10))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Withdraw(ctx, "auth|other", q.ID); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("other supplier: err=%v", err)
	}

	out, err := uc.Withdraw(ctx, "auth|s", q.ID)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if out.Refunded != 1 || out.BalanceAfter != 1 {
		t.Fatalf("out=%+v", out)
	}
	if bal := env.AssertLedger(t, s.ID); bal != 1 {
		t.Fatalf("balance=%d", bal)
	}
	if got := count(t, env, r.ID); got != 0 {
		t.Fatalf("quotation not deleted")
	}
	if _, err := uc.Withdraw(ctx, "auth|s", q.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second withdraw: err=%v", err)
	}
}

func TestWithdraw_AcceptedIsFinal(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	cat := env.Category(t, "PPE")
	hu, h := env.Hospital(t, "auth|h", account.StatusApproved)
	env.Supplier(t, "auth|s", 1, cat.ID)
	r := env.RFQ(t, h, hu.ID, cat.ID, 1)
	uc, _ := newUsecase(env)

	q, err := uc.Submit(ctx, "auth|s", submit(r.ID, 10))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Accept(ctx, "auth|h", q.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Withdraw(ctx, "auth|s", q.ID); !errors.Is(err, domain.ErrNotPending) {
		t.Fatalf("err=%v", err)
	}
}

func TestAccept_OnlyOneWinner(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	cat := env.Category(t, "PPE")
	hu, h := env.Hospital(t, "auth|h", account.StatusApproved)
	env.Hospital(t, "auth|other", account.StatusApproved)
	env.Supplier(t, "auth|s1", 1, cat.ID)
	env.Supplier(t, "auth|s2", 1, cat.ID)
	r := env.RFQ(t, h, hu.ID, cat.ID, 1)
	uc, _ := newUsecase(env)

	q1, err := uc.Submit(ctx, "auth|s1", submit(r.ID, 10))
	if err != nil {
		t.Fatal(err)
	}
	q2, err := uc.Submit(ctx, "auth|s2", submit(r.ID, 11))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Accept(ctx, "auth|other", q1.ID); !errors.Is(err, rfq.ErrNotOwner) {
		t.Fatalf("other hospital: err=%v", err)
	}

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i, qid := range []string{q1.ID, q2.ID} {
		wg.Add(1)
		go func(i int, qid string) {
			defer wg.Done()
			_, errs[i] = uc.Accept(ctx, "auth|h", qid)
		}(i, qid)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, rfq.ErrNotOpen):
		default:
			t.Fatalf("unexpected err=%v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("succeeded=%d, want 1", succeeded)
	}
	qs, _ := env.Repos.Quotations.ListByRFQ(ctx, r.ID)
	accepted := 0
	for _, q := range qs {
		if q.Status == domain.StatusAccepted {
			accepted++
		} else if q.Status != domain.StatusRejected {
			t.Fatalf("sibling left as %s", q.Status)
		}
	}
	if accepted != 1 {
		t.Fatalf("accepted=%d", accepted)
	}
}

func TestLists(t *testing.T) {
	env := fixture.New(t)
	ctx := context.Background()
	cat := env.Category(t, "PPE")
	hu, h := env.Hospital(t, "auth|h", account.StatusApproved)
	env.Hospital(t, "auth|other", account.StatusApproved)
	env.Supplier(t, "auth|s", 2, cat.ID)
	r1 := env.RFQ(t, h, hu.ID, cat.ID, 1)
	r2 := env.RFQ(t, h, hu.ID, cat.ID, 1)
	uc, _ := newUsecase(env)

	for _, rid := range []string{r1.ID, r2.ID} {
		if _, err := uc.Submit(ctx, "auth|s", submit(rid, 3)); err != nil {
			t.Fatal(err)
		}
	}
	mine, err := uc.ListForSupplier(ctx, "auth|s")
	if err != nil || len(mine) != 2 {
		t.Fatalf("ListForSupplier: %v len=%d", err, len(mine))
	}
	onR1, err := uc.ListForRFQ(ctx, "auth|h", r1.ID)
	if err != nil || len(onR1) != 1 {
		t.Fatalf("ListForRFQ: %v len=%d", err, len(onR1))
	}
	if _, err := uc.ListForRFQ(ctx, "auth|other", r1.ID); !errors.Is(err, rfq.ErrNotOwner) {
		t.Fatalf("other hospital: err=%v", err)
	}
}
