package rfq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"medquote-backend/internal/domain/catalog"
	"medquote-backend/internal/domain/errs"
	"medquote-backend/internal/domain/notification"
	domain "medquote-backend/internal/domain/rfq"
	"medquote-backend/internal/domain/uow"
	applog "medquote-backend/internal/infrastructure/logger"
	"medquote-backend/internal/infrastructure/metrics"
	"medquote-backend/internal/usecase/access"
	"medquote-backend/pkg/id"
)

// Scheduler defers auto-quotation for a committed RFQ.
type Scheduler interface {
	Schedule(ctx context.Context, rfqID string) error
}

type Usecase struct {
	uow       uow.UnitOfWork
	repos     uow.Repos
	guard     *access.Guard
	scheduler Scheduler
	notifier  notification.Notifier
}

func NewUsecase(tx uow.UnitOfWork, repos uow.Repos, guard *access.Guard, scheduler Scheduler, notifier notification.Notifier) *Usecase {
	return &Usecase{uow: tx, repos: repos, guard: guard, scheduler: scheduler, notifier: notifier}
}

// Create opens an RFQ for the caller's hospital. Auto-quotation runs later
// on the job queue; the caller never waits for it.
func (u *Usecase) Create(ctx context.Context, identity string, in CreateInput) (*domain.RFQ, error) {
	usr, h, err := u.guard.RequireHospital(ctx, identity)
	if err != nil {
		return nil, err
	}
	if in.Quantity < 1 {
		return nil, errs.ErrInvalidInput
	}
	urgency := domain.Urgency(in.Urgency)
	if urgency == "" {
		urgency = domain.UrgencyStandard
	}
	if !urgency.Valid() {
		return nil, errs.ErrInvalidInput
	}

	r := &domain.RFQ{
		ID:               id.NewID32(),
		HospitalID:       h.ID,
		ProductName:      in.ProductName,
		CategoryID:       in.CategoryID,
		ProductID:        in.ProductID,
		Quantity:         in.Quantity,
		Unit:             in.Unit,
		DeliveryLocation: in.DeliveryLocation,
		Urgency:          urgency,
		Specifications:   in.Specifications,
		Status:           domain.StatusOpen,
		CreatedBy:        usr.ID,
		StatusUpdatedAt:  time.Now().UTC(),
	}
	err = u.uow.WithinTx(ctx, func(tx uow.Repos) error {
		c, err := tx.Categories.GetByID(ctx, in.CategoryID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !c.IsActive) {
			return catalog.ErrCategoryNotFound
		}
		if err != nil {
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
			if p.CategoryID != in.CategoryID {
				return errs.New(errs.KindInvalid, "product does not belong to the rfq category")
			}
		}
		return tx.RFQs.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	metrics.RFQsCreated.Inc()
	log := applog.Ctx(ctx).With(zap.String("rfq_id", r.ID))
	log.Info("rfq created", zap.String("hospital_id", h.ID), zap.String("category_id", r.CategoryID))

	if err := u.scheduler.Schedule(ctx, r.ID); err != nil {
		// the RFQ stands; an admin can re-trigger generation
		log.Error("schedule auto-quotation", zap.Error(err))
	}
	u.announce(ctx, r)
	return r, nil
}

// announce tells every approved supplier in the category about a new RFQ.
func (u *Usecase) announce(ctx context.Context, r *domain.RFQ) {
	suppliers, err := u.repos.Suppliers.ListApprovedByCategory(ctx, r.CategoryID)
	if err != nil {
		applog.Ctx(ctx).Warn("announce rfq: list suppliers", zap.String("rfq_id", r.ID), zap.Error(err))
		return
	}
	msgs := make([]notification.Message, 0, len(suppliers))
	for _, s := range suppliers {
		msgs = append(msgs, notification.Message{
			Type:       notification.TypeNewRFQ,
			Title:      "New RFQ in your category",
			Body:       fmt.Sprintf("%d %s of %s requested (%s).", r.Quantity, r.Unit, r.ProductName, r.Urgency),
			RFQID:      &r.ID,
			SupplierID: s.ID,
			Metadata:   map[string]any{"urgency": string(r.Urgency), "category_id": r.CategoryID},
		})
	}
	u.notifier.Notify(ctx, msgs...)
}

// UpdateStatus lets the hospital close an open RFQ. Fulfilled is reached only
// by accepting a quotation, and terminal RFQs never change again.
func (u *Usecase) UpdateStatus(ctx context.Context, identity, rfqID string, next domain.Status) (*domain.RFQ, error) {
	_, h, err := u.guard.RequireHospital(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !next.Valid() {
		return nil, errs.ErrInvalidInput
	}

	var out *domain.RFQ
	err = u.uow.WithinRFQTx(ctx, rfqID, func(tx uow.Repos, r *domain.RFQ) error {
		if r.HospitalID != h.ID {
			return domain.ErrNotOwner
		}
		if next != domain.StatusClosed || !r.CanTransitionTo(next) {
			return domain.ErrInvalidTransition
		}
		r.Status = next
		r.StatusUpdatedAt = time.Now().UTC()
		if err := tx.RFQs.Save(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u.notifyClosed(ctx, out)
	return out, nil
}

func (u *Usecase) notifyClosed(ctx context.Context, r *domain.RFQ) {
	qs, err := u.repos.Quotations.ListByRFQ(ctx, r.ID)
	if err != nil {
		applog.Ctx(ctx).Warn("rfq closed: list quotations", zap.String("rfq_id", r.ID), zap.Error(err))
		return
	}
	msgs := make([]notification.Message, 0, len(qs))
	for _, q := range qs {
		qid := q.ID
		msgs = append(msgs, notification.Message{
			Type:        notification.TypeRFQClosed,
			Title:       "RFQ closed",
			Body:        fmt.Sprintf("The hospital closed the RFQ for %s.", r.ProductName),
			RFQID:       &r.ID,
			QuotationID: &qid,
			SupplierID:  q.SupplierID,
		})
	}
	u.notifier.Notify(ctx, msgs...)
}

func (u *Usecase) ListForHospital(ctx context.Context, identity string) ([]SummaryDTO, error) {
	_, h, err := u.guard.RequireHospital(ctx, identity)
	if err != nil {
		return nil, err
	}
	rs, err := u.repos.RFQs.ListByHospital(ctx, h.ID)
	if err != nil {
		return nil, err
	}
	counts, err := u.repos.Quotations.CountByRFQs(ctx, ids(rs))
	if err != nil {
		return nil, err
	}
	out := make([]SummaryDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, SummaryDTO{RFQ: r, QuotationCount: counts[r.ID]})
	}
	return out, nil
}

// Get returns an RFQ with its quotations, cheapest first. Owner only.
func (u *Usecase) Get(ctx context.Context, identity, rfqID string) (*DetailDTO, error) {
	_, h, err := u.guard.RequireHospital(ctx, identity)
	if err != nil {
		return nil, err
	}
	r, err := u.repos.RFQs.GetByID(ctx, rfqID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.HospitalID != h.ID {
		return nil, domain.ErrNotOwner
	}
	qs, err := u.repos.Quotations.ListByRFQ(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return &DetailDTO{RFQ: *r, Quotations: qs}, nil
}

// GetAvailable lists open RFQs in the supplier's categories.
func (u *Usecase) GetAvailable(ctx context.Context, identity string) ([]AvailableDTO, error) {
	_, s, err := u.guard.RequireSupplier(ctx, identity)
	if err != nil {
		return nil, err
	}
	cats, err := u.repos.Suppliers.CategoryIDs(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return []AvailableDTO{}, nil
	}
	rs, err := u.repos.RFQs.ListOpenByCategories(ctx, cats)
	if err != nil {
		return nil, err
	}
	rfqIDs := ids(rs)
	counts, err := u.repos.Quotations.CountByRFQs(ctx, rfqIDs)
	if err != nil {
		return nil, err
	}
	quoted, err := u.repos.Quotations.QuotedRFQIDs(ctx, s.ID, rfqIDs)
	if err != nil {
		return nil, err
	}
	out := make([]AvailableDTO, 0, len(rs))
	for _, r := range rs {
		out = append(out, AvailableDTO{RFQ: r, AlreadyQuoted: quoted[r.ID], QuotationCount: counts[r.ID]})
	}
	return out, nil
}

func ids(rs []domain.RFQ) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}
