package admin

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"medquote-backend/internal/domain/account"
	"medquote-backend/internal/domain/catalog"
	"medquote-backend/internal/domain/credit"
	"medquote-backend/internal/domain/notification"
	"medquote-backend/internal/domain/rfq"
	"medquote-backend/internal/domain/setting"
	"medquote-backend/internal/domain/uow"
	applog "medquote-backend/internal/infrastructure/logger"
	"medquote-backend/internal/usecase/access"
	ledger "medquote-backend/internal/usecase/credit"
	"medquote-backend/pkg/id"
)

type Scheduler interface {
	Schedule(ctx context.Context, rfqID string) error
}

// Ledger is the admin slice of the credit usecase.
type Ledger interface {
	Adjust(ctx context.Context, supplierID string, delta int64, description string) (*credit.Transaction, error)
	VerifyConsistency(ctx context.Context, supplierID string) (*ledger.ConsistencyDTO, error)
}

type Usecase struct {
	uow       uow.UnitOfWork
	repos     uow.Repos
	guard     *access.Guard
	settings  setting.Repository
	ledger    Ledger
	scheduler Scheduler
	notifier  notification.Notifier
}

func NewUsecase(tx uow.UnitOfWork, repos uow.Repos, guard *access.Guard, settings setting.Repository, l Ledger, scheduler Scheduler, notifier notification.Notifier) *Usecase {
	return &Usecase{
		uow:       tx,
		repos:     repos,
		guard:     guard,
		settings:  settings,
		ledger:    l,
		scheduler: scheduler,
		notifier:  notifier,
	}
}

func decision(status account.VerificationStatus) error {
	if status != account.StatusApproved && status != account.StatusRejected {
		return account.ErrInvalidStatus
	}
	return nil
}

func (u *Usecase) PendingAccounts(ctx context.Context, identity string) (*PendingDTO, error) {
	if _, err := u.guard.RequireAdmin(ctx, identity); err != nil {
		return nil, err
	}
	hs, err := u.repos.Hospitals.ListByStatus(ctx, account.StatusPending)
	if err != nil {
		return nil, err
	}
	ss, err := u.repos.Suppliers.ListByStatus(ctx, account.StatusPending)
	if err != nil {
		return nil, err
	}
	return &PendingDTO{Hospitals: hs, Suppliers: ss}, nil
}

// SetHospitalVerification decides a hospital and its owning user. Staff are
// verified on their own.
func (u *Usecase) SetHospitalVerification(ctx context.Context, identity, hospitalID string, status account.VerificationStatus) (*account.Hospital, error) {
	if _, err := u.guard.RequireAdmin(ctx, identity); err != nil {
		return nil, err
	}
	if err := decision(status); err != nil {
		return nil, err
	}

	var (
		out     *account.Hospital
		touched []string
	)
	err := u.uow.WithinTx(ctx, func(tx uow.Repos) error {
		h, err := tx.Hospitals.GetByID(ctx, hospitalID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.ErrHospitalNotFound
		}
		if err != nil {
			return err
		}
		h.VerificationStatus = status
		if err := tx.Hospitals.Save(ctx, h); err != nil {
			return err
		}
		users, err := tx.Users.ListByHospitalID(ctx, h.ID)
		if err != nil {
			return err
		}
		for i := range users {
			if users[i].AccountType != account.TypeHospital {
				continue
			}
			users[i].VerificationStatus = status
			if err := tx.Users.Save(ctx, &users[i]); err != nil {
				return err
			}
			touched = append(touched, users[i].ID)
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	applog.Ctx(ctx).Info("hospital verification set", zap.String("hospital_id", out.ID), zap.String("status", string(status)))
	u.announce(ctx, status, "hospital "+out.Name, touched)
	return out, nil
}

func (u *Usecase) SetSupplierVerification(ctx context.Context, identity, supplierID string, status account.VerificationStatus) (*account.Supplier, error) {
	if _, err := u.guard.RequireAdmin(ctx, identity); err != nil {
		return nil, err
	}
	if err := decision(status); err != nil {
		return nil, err
	}

	var (
		out     *account.Supplier
		touched []string
	)
	err := u.uow.WithinSupplierTx(ctx, supplierID, func(tx uow.Repos, s *account.Supplier) error {
		s.VerificationStatus = status
		if err := tx.Suppliers.Save(ctx, s); err != nil {
			return err
		}
		users, err := tx.Users.ListBySupplierID(ctx, s.ID)
		if err != nil {
			return err
		}
		for i := range users {
			if users[i].AccountType != account.TypeSupplier {
				continue
			}
			users[i].VerificationStatus = status
			if err := tx.Users.Save(ctx, &users[i]); err != nil {
				return err
			}
			touched = append(touched, users[i].ID)
		}
		out = s
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, account.ErrSupplierNotFound
	}
	if err != nil {
		return nil, err
	}
	applog.Ctx(ctx).Info("supplier verification set", zap.String("supplier_id", out.ID), zap.String("status", string(status)))
	u.announce(ctx, status, "supplier "+out.CompanyName, touched)
	return out, nil
}

// SetUserVerification decides a single user, typically hospital staff.
func (u *Usecase) SetUserVerification(ctx context.Context, identity, userID string, status account.VerificationStatus) (*account.User, error) {
	if _, err := u.guard.RequireAdmin(ctx, identity); err != nil {
		return nil, err
	}
	if err := decision(status); err != nil {
		return nil, err
	}
	usr, err := u.repos.Users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, account.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	usr.VerificationStatus = status
	if err := u.repos.Users.Save(ctx, usr); err != nil {
		return nil, err
	}
	u.announce(ctx, status, "account", []string{usr.ID})
	return usr, nil
}

func (u *Usecase) announce(ctx context.Context, status account.VerificationStatus, subject string, userIDs []string) {
	if len(userIDs) == 0 {
		return
	}
	m := notification.Message{
		Type:     notification.TypeAccountVerified,
		Title:    "Account approved",
		Body:     "Your " + subject + " has been approved.",
		UserIDs:  userIDs,
		Metadata: map[string]any{"status": string(status)},
	}
	if status == account.StatusRejected {
		m.Type = notification.TypeAccountRejected
		m.Title = "Account rejected"
		m.Body = "Your " + subject + " was not approved."
	}
	u.notifier.Notify(ctx, m)
}

func (u *Usecase) CreditSystemEnabled(ctx context.Context, identity string) (bool, error) {
	if _, err := u.guard.RequireAdmin(ctx, identity); err != nil {
		return false, err
	}
	return u.settings.CreditSystemEnabled(ctx)
}

func (u *Usecase) SetCreditSystemEnabled(ctx context.Context, identity string, enabled bool) error {
	admin, err := u.guard.RequireAdmin(ctx, identity)
	if err != nil {
		return err
	}
	if err := u.settings.SetCreditSystemEnabled(ctx, enabled); err != nil {
		return err
	}
	applog.Ctx(ctx).Warn("credit system toggled", zap.Bool("enabled", enabled), zap.String("admin_id", admin.ID))
	return nil
}

func (u *Usecase) AdjustCredits(ctx context.Context, identity, supplierID string, delta int64, description string) (*credit.Transaction, error) {
	admin, err := u.guard.RequireAdmin(ctx, identity)
	if err != nil {
		return nil, err
	}
	t, err := u.ledger.Adjust(ctx, supplierID, delta, description)
	if err != nil {
		return nil, err
	}
	applog.Ctx(ctx).Info("credits adjusted",
		zap.String("supplier_id", supplierID), zap.Int64("delta", delta), zap.String("admin_id", admin.ID))
	return t, nil
}

func (u *Usecase) VerifyConsistency(ctx context.Context, identity, supplierID string) (*ledger.ConsistencyDTO, error) {
	if _, err := u.guard.RequireAdmin(ctx, identity); err != nil {
		return nil, err
	}
	return u.ledger.VerifyConsistency(ctx, supplierID)
}

// RetriggerAutoQuotation queues the generator again for an open RFQ.
func (u *Usecase) RetriggerAutoQuotation(ctx context.Context, identity, rfqID string) error {
	if _, err := u.guard.RequireAdmin(ctx, identity); err != nil {
		return err
	}
	r, err := u.repos.RFQs.GetByID(ctx, rfqID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rfq.ErrNotFound
	}
	if err != nil {
		return err
	}
	if r.Status != rfq.StatusOpen {
		return rfq.ErrNotOpen
	}
	return u.scheduler.Schedule(ctx, r.ID)
}

func (u *Usecase) CreateCategory(ctx context.Context, identity string, in CategoryInput) (*catalog.Category, error) {
	if _, err := u.guard.RequireAdmin(ctx, identity); err != nil {
		return nil, err
	}
	c := &catalog.Category{
		ID:          id.NewID32(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		IsActive:    true,
	}
	if err := u.repos.Categories.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, catalog.ErrCategoryExists
		}
		return nil, err
	}
	return c, nil
}

// DeleteCategory soft-deletes a category nobody references.
func (u *Usecase) DeleteCategory(ctx context.Context, identity, categoryID string) error {
	if _, err := u.guard.RequireAdmin(ctx, identity); err != nil {
		return err
	}
	return u.uow.WithinTx(ctx, func(tx uow.Repos) error {
		if _, err := tx.Categories.GetByID(ctx, categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return catalog.ErrCategoryNotFound
			}
			return err
		}
		suppliers, err := tx.Suppliers.CountByCategory(ctx, categoryID)
		if err != nil {
			return err
		}
		products, err := tx.Products.CountByCategory(ctx, categoryID)
		if err != nil {
			return err
		}
		if suppliers+products > 0 {
			return catalog.ErrCategoryInUse
		}
		return tx.Categories.SoftDelete(ctx, categoryID)
	})
}
