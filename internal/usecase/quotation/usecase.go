package quotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"medquote-backend/internal/domain/account"
	"medquote-backend/internal/domain/catalog"
	"medquote-backend/internal/domain/credit"
	"medquote-backend/internal/domain/notification"
	domain "medquote-backend/internal/domain/quotation"
	"medquote-backend/internal/domain/rfq"
	"medquote-backend/internal/domain/setting"
	"medquote-backend/internal/domain/uow"
	applog "medquote-backend/internal/infrastructure/logger"
	"medquote-backend/internal/infrastructure/metrics"
	"medquote-backend/internal/usecase/access"
	ledger "medquote-backend/internal/usecase/credit"
	"medquote-backend/pkg/id"
)

const submissionCost int64 = 1

type Usecase struct {
	uow          uow.UnitOfWork
	repos        uow.Repos
	guard        *access.Guard
	settings     setting.Reader
	notifier     notification.Notifier
	lowThreshold int64
}

func NewUsecase(tx uow.UnitOfWork, repos uow.Repos, guard *access.Guard, settings setting.Reader, notifier notification.Notifier, opts Options) *Usecase {
	return &Usecase{
		uow:          tx,
		repos:        repos,
		guard:        guard,
		settings:     settings,
		notifier:     notifier,
		lowThreshold: opts.LowCreditThreshold,
	}
}

// AutoGenerate quotes an open RFQ on behalf of every approved supplier with
// an active product in its category. Suppliers that already quoted are
// skipped, so re-runs are safe. Returns the number of quotations created.
func (u *Usecase) AutoGenerate(ctx context.Context, rfqID string) (int, error) {
	log := applog.Ctx(ctx).With(zap.String("rfq_id", rfqID))

	var (
		created int
		target  *rfq.RFQ
	)
	err := u.uow.WithinRFQTx(ctx, rfqID, func(tx uow.Repos, r *rfq.RFQ) error {
		target = r
		if r.Status != rfq.StatusOpen {
			return nil
		}
		products, err := tx.Products.ListActive(ctx, r.CategoryID)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(products))
		for _, p := range products {
			// oldest active product speaks for its supplier
			if seen[p.SupplierID] {
				continue
			}
			seen[p.SupplierID] = true

			s, err := tx.Suppliers.GetByID(ctx, p.SupplierID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if !s.Approved() {
				continue
			}
			_, err = tx.Quotations.GetByRFQAndSupplier(ctx, r.ID, s.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			productID := p.ID
			q := &domain.Quotation{
				ID:              id.NewID32(),
				RFQID:           r.ID,
				SupplierID:      s.ID,
				ProductID:       &productID,
				DeliveryTime:    p.DeliveryTime,
				IsAutoGenerated: true,
				Status:          domain.StatusPending,
			}
			q.Reprice(p.DefaultUnitPrice, r.Quantity)
			if err := tx.Quotations.Create(ctx, q); err != nil {
				return fmt.Errorf("auto quotation for supplier %s: %w", s.ID, err)
			}
			created++
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, rfq.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	if created > 0 {
		metrics.QuotationsCreated.WithLabelValues("auto").Add(float64(created))
		u.notifier.Notify(ctx, notification.Message{
			Type:       notification.TypeQuotationSubmitted,
			Title:      "Quotations received",
			Body:       fmt.Sprintf("%d catalog quotation(s) were generated for %s.", created, target.ProductName),
			RFQID:      &target.ID,
			HospitalID: target.HospitalID,
			Metadata:   map[string]any{"auto_generated": created},
		})
	}
	log.Info("auto quotation done", zap.Int("created", created), zap.String("status", string(target.Status)))
	return created, nil
}

// Submit records a supplier's manual quotation and debits one credit in the
// same transaction.
func (u *Usecase) Submit(ctx context.Context, identity string, in SubmitInput) (*domain.Quotation, error) {
	_, s, err := u.guard.RequireSupplier(ctx, identity)
	if err != nil {
		return nil, err
	}
	if in.UnitPrice <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	enabled, err := u.settings.CreditSystemEnabled(ctx)
	if err != nil {
		return nil, err
	}

	var (
		q     *domain.Quotation
		debit *credit.Transaction
		r     *rfq.RFQ
	)
	err = u.uow.WithinSupplierTx(ctx, s.ID, func(tx uow.Repos, locked *account.Supplier) error {
		// an admin decision may have landed since the guard read the row
		if !locked.Approved() {
			return account.ErrSupplierNotApproved
		}
		r, err = tx.RFQs.GetByIDForUpdate(ctx, in.RFQID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rfq.ErrNotFound
		}
		if err != nil {
			return err
		}
		if r.Status != rfq.StatusOpen {
			return rfq.ErrNotOpen
		}
		_, err = tx.Quotations.GetByRFQAndSupplier(ctx, r.ID, locked.ID)
		if err == nil {
			return domain.ErrDuplicate
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if in.ProductID != nil {
			p, err := tx.Products.GetByID(ctx, *in.ProductID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return catalog.ErrProductNotFound
			}
			if err != nil {
				return err
			}
			if p.SupplierID != locked.ID {
				return catalog.ErrNotProductOwner
			}
		}

		cost := submissionCost
		if locked.Unlimited || !enabled {
			cost = 0
		}
		q = &domain.Quotation{
			ID:             id.NewID32(),
			RFQID:          r.ID,
			SupplierID:     locked.ID,
			ProductID:      in.ProductID,
			DeliveryTime:   in.DeliveryTime,
			Notes:          in.Notes,
			CreditsCharged: cost,
			Status:         domain.StatusPending,
		}
		q.Reprice(in.UnitPrice, r.Quantity)
		if cost > 0 {
			ref := "quotation:" + q.ID
			debit, err = ledger.Post(ctx, tx, locked, credit.TypeDeduction, -cost, "quotation for "+r.ProductName, &ref)
			if err != nil {
				return err
			}
		}
		if err := tx.Quotations.Create(ctx, q); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicate
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ledger.Committed(debit)
	metrics.QuotationsCreated.WithLabelValues("manual").Inc()
	applog.Ctx(ctx).Info("quotation submitted",
		zap.String("quotation_id", q.ID), zap.String("rfq_id", r.ID),
		zap.String("supplier_id", s.ID), zap.Int64("credits_charged", q.CreditsCharged))

	msgs := []notification.Message{{
		Type:        notification.TypeQuotationSubmitted,
		Title:       "New quotation",
		Body:        fmt.Sprintf("%s quoted %.2f for %s.", s.CompanyName, q.TotalPrice, r.ProductName),
		RFQID:       &r.ID,
		QuotationID: &q.ID,
		HospitalID:  r.HospitalID,
	}}
	if debit != nil && debit.BalanceAfter <= u.lowThreshold {
		msgs = append(msgs, notification.Message{
			Type:       notification.TypeLowCredits,
			Title:      "Credits running low",
			Body:       fmt.Sprintf("You have %d credit(s) left.", debit.BalanceAfter),
			SupplierID: s.ID,
			Metadata:   map[string]any{"balance": debit.BalanceAfter},
		})
	}
	u.notifier.Notify(ctx, msgs...)
	return q, nil
}

// Update reprices a pending quotation while its RFQ is still open.
func (u *Usecase) Update(ctx context.Context, identity, quotationID string, in UpdateInput) (*domain.Quotation, error) {
	_, s, err := u.guard.RequireSupplier(ctx, identity)
	if err != nil {
		return nil, err
	}
	if in.UnitPrice <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	cur, err := u.repos.Quotations.GetByID(ctx, quotationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if cur.SupplierID != s.ID {
		return nil, domain.ErrNotOwner
	}

	var out *domain.Quotation
	err = u.uow.WithinRFQTx(ctx, cur.RFQID, func(tx uow.Repos, r *rfq.RFQ) error {
		q, err := tx.Quotations.GetByIDForUpdate(ctx, quotationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if q.Status != domain.StatusPending {
			return domain.ErrNotPending
		}
		if r.Status != rfq.StatusOpen {
			return rfq.ErrNotOpen
		}
		q.Reprice(in.UnitPrice, r.Quantity)
		q.DeliveryTime = in.DeliveryTime
		q.Notes = in.Notes
		if err := tx.Quotations.Save(ctx, q); err != nil {
			return err
		}
		out = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Withdraw deletes a pending quotation and refunds what its submission cost.
func (u *Usecase) Withdraw(ctx context.Context, identity, quotationID string) (*WithdrawDTO, error) {
	_, s, err := u.guard.RequireSupplier(ctx, identity)
	if err != nil {
		return nil, err
	}

	var (
		out    *WithdrawDTO
		refund *credit.Transaction
	)
	err = u.uow.WithinSupplierTx(ctx, s.ID, func(tx uow.Repos, locked *account.Supplier) error {
		q, err := tx.Quotations.GetByIDForUpdate(ctx, quotationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if q.SupplierID != locked.ID {
			return domain.ErrNotOwner
		}
		if q.Status != domain.StatusPending {
			return domain.ErrNotPending
		}
		if err := tx.Quotations.Delete(ctx, q.ID); err != nil {
			return err
		}
		if q.CreditsCharged > 0 {
			ref := "withdrawal:" + q.ID
			refund, err = ledger.Post(ctx, tx, locked, credit.TypeRefund, q.CreditsCharged, "withdrawn quotation", &ref)
			if err != nil {
				return err
			}
		}
		out = &WithdrawDTO{QuotationID: q.ID, Refunded: q.CreditsCharged, BalanceAfter: locked.CreditBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ledger.Committed(refund)
	return out, nil
}

// Accept picks the winning quotation: it is accepted, every pending sibling
// rejected and the RFQ fulfilled, all under the RFQ lock.
func (u *Usecase) Accept(ctx context.Context, identity, quotationID string) (*domain.Quotation, error) {
	_, h, err := u.guard.RequireHospital(ctx, identity)
	if err != nil {
		return nil, err
	}
	cur, err := u.repos.Quotations.GetByID(ctx, quotationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var (
		won    *domain.Quotation
		lost   []domain.Quotation
		target *rfq.RFQ
	)
	err = u.uow.WithinRFQTx(ctx, cur.RFQID, func(tx uow.Repos, r *rfq.RFQ) error {
		if r.HospitalID != h.ID {
			return rfq.ErrNotOwner
		}
		// a second acceptance loses here, after the lock
		if r.Status != rfq.StatusOpen {
			return rfq.ErrNotOpen
		}
		q, err := tx.Quotations.GetByIDForUpdate(ctx, quotationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}
		if q.Status != domain.StatusPending {
			return domain.ErrNotPending
		}

		siblings, err := tx.Quotations.ListByRFQ(ctx, r.ID)
		if err != nil {
			return err
		}
		for _, sib := range siblings {
			if sib.ID != q.ID && sib.Status == domain.StatusPending {
				lost = append(lost, sib)
			}
		}

		q.Status = domain.StatusAccepted
		if err := tx.Quotations.Save(ctx, q); err != nil {
			return err
		}
		if _, err := tx.Quotations.RejectPendingExcept(ctx, r.ID, q.ID); err != nil {
			return err
		}
		r.Status = rfq.StatusFulfilled
		r.StatusUpdatedAt = time.Now().UTC()
		if err := tx.RFQs.Save(ctx, r); err != nil {
			return err
		}
		won, target = q, r
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, rfq.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	metrics.QuotationsAccepted.Inc()
	applog.Ctx(ctx).Info("quotation accepted",
		zap.String("quotation_id", won.ID), zap.String("rfq_id", target.ID), zap.Int("rejected", len(lost)))

	msgs := make([]notification.Message, 0, len(lost)+1)
	msgs = append(msgs, notification.Message{
		Type:        notification.TypeQuotationAccepted,
		Title:       "Quotation accepted",
		Body:        fmt.Sprintf("Your quotation for %s was accepted.", target.ProductName),
		RFQID:       &target.ID,
		QuotationID: &won.ID,
		SupplierID:  won.SupplierID,
	})
	for i := range lost {
		msgs = append(msgs, notification.Message{
			Type:        notification.TypeQuotationRejected,
			Title:       "Quotation not selected",
			Body:        fmt.Sprintf("The hospital chose another offer for %s.", target.ProductName),
			RFQID:       &target.ID,
			QuotationID: &lost[i].ID,
			SupplierID:  lost[i].SupplierID,
		})
	}
	u.notifier.Notify(ctx, msgs...)
	return won, nil
}

func (u *Usecase) ListForSupplier(ctx context.Context, identity string) ([]domain.Quotation, error) {
	_, s, err := u.guard.RequireSupplier(ctx, identity)
	if err != nil {
		return nil, err
	}
	return u.repos.Quotations.ListBySupplier(ctx, s.ID)
}

// ListForRFQ returns the RFQ's quotations, cheapest first. Owner only.
func (u *Usecase) ListForRFQ(ctx context.Context, identity, rfqID string) ([]domain.Quotation, error) {
	_, h, err := u.guard.RequireHospital(ctx, identity)
	if err != nil {
		return nil, err
	}
	r, err := u.repos.RFQs.GetByID(ctx, rfqID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, rfq.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.HospitalID != h.ID {
		return nil, rfq.ErrNotOwner
	}
	return u.repos.Quotations.ListByRFQ(ctx, r.ID)
}
