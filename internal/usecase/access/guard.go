package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"medquote-backend/internal/domain/account"
	"medquote-backend/internal/domain/errs"
	applog "medquote-backend/internal/infrastructure/logger"
	"medquote-backend/pkg/id"
)

// Guard turns the caller's external identity into an authorized account.
type Guard struct {
	users     account.UserRepository
	hospitals account.HospitalRepository
	suppliers account.SupplierRepository
}

func NewGuard(users account.UserRepository, hospitals account.HospitalRepository, suppliers account.SupplierRepository) *Guard {
	return &Guard{users: users, hospitals: hospitals, suppliers: suppliers}
}

type Profile struct {
	User     *account.User     `json:"user"`
	Hospital *account.Hospital `json:"hospital,omitempty"`
	Supplier *account.Supplier `json:"supplier,omitempty"`
}

// Resolve returns the registered user for identity.
func (g *Guard) Resolve(ctx context.Context, identity string) (*account.User, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, errs.ErrUnauthenticated
	}
	u, err := g.users.GetByExternalID(ctx, identity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, errs.ErrForbidden
	}
	return u, nil
}

func (g *Guard) approved(ctx context.Context, identity string) (*account.User, error) {
	u, err := g.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if u.VerificationStatus != account.StatusApproved {
		return nil, errs.ErrNotApproved
	}
	return u, nil
}

// RequireHospital admits approved hospital owners and staff, and admins
// acting through their admin-owned hospital.
func (g *Guard) RequireHospital(ctx context.Context, identity string) (*account.User, *account.Hospital, error) {
	u, err := g.approved(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	switch u.AccountType {
	case account.TypeHospital, account.TypeHospitalStaff, account.TypeAdmin:
	default:
		return nil, nil, errs.ErrForbidden
	}
	if u.HospitalID == nil {
		return nil, nil, errs.ErrForbidden
	}
	h, err := g.hospitals.GetByID(ctx, *u.HospitalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, account.ErrHospitalNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if h.VerificationStatus != account.StatusApproved {
		return nil, nil, account.ErrHospitalNotApproved
	}
	return u, h, nil
}

// RequireSupplier admits approved supplier users, and admins acting through
// their admin-owned supplier.
func (g *Guard) RequireSupplier(ctx context.Context, identity string) (*account.User, *account.Supplier, error) {
	u, err := g.approved(ctx, identity)
	if err != nil {
		return nil, nil, err
	}
	if u.AccountType != account.TypeSupplier && u.AccountType != account.TypeAdmin {
		return nil, nil, errs.ErrForbidden
	}
	if u.SupplierID == nil {
		return nil, nil, errs.ErrForbidden
	}
	s, err := g.suppliers.GetByID(ctx, *u.SupplierID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, account.ErrSupplierNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if !s.Approved() {
		return nil, nil, account.ErrSupplierNotApproved
	}
	return u, s, nil
}

func (g *Guard) RequireAdmin(ctx context.Context, identity string) (*account.User, error) {
	u, err := g.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if u.AccountType != account.TypeAdmin {
		return nil, errs.ErrForbidden
	}
	return u, nil
}

// Profile returns the caller with linked entities. Unregistered callers get
// NOT_FOUND so clients can route them to registration.
func (g *Guard) Profile(ctx context.Context, identity string) (*Profile, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, errs.ErrUnauthenticated
	}
	u, err := g.users.GetByExternalID(ctx, identity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, account.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	p := &Profile{User: u}
	if u.HospitalID != nil {
		if p.Hospital, err = g.hospitals.GetByID(ctx, *u.HospitalID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if u.SupplierID != nil {
		if p.Supplier, err = g.suppliers.GetByID(ctx, *u.SupplierID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return p, nil
}

// BootstrapAdmins makes sure every identity has an approved admin user.
// Existing users are never retyped.
func (g *Guard) BootstrapAdmins(ctx context.Context, identities []string) error {
	log := applog.Ctx(ctx)
	for _, ident := range identities {
		u, err := g.users.GetByExternalID(ctx, ident)
		switch {
		case err == nil:
			if u.AccountType != account.TypeAdmin {
				log.Warn("admin bootstrap: identity already registered with another type",
					zap.String("user_id", u.ID), zap.String("account_type", string(u.AccountType)))
			}
			continue
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		admin := &account.User{
			ID:                 id.NewID32(),
			ExternalID:         ident,
			Name:               "Administrator",
			AccountType:        account.TypeAdmin,
			VerificationStatus: account.StatusApproved,
			IsActive:           true,
		}
		if err := g.users.Create(ctx, admin); err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		log.Info("admin bootstrap: created admin user", zap.String("user_id", admin.ID))
	}
	return nil
}
