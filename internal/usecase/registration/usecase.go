package registration

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"medquote-backend/internal/domain/account"
	"medquote-backend/internal/domain/catalog"
	"medquote-backend/internal/domain/credit"
	"medquote-backend/internal/domain/errs"
	"medquote-backend/internal/domain/uow"
	applog "medquote-backend/internal/infrastructure/logger"
	"medquote-backend/internal/usecase/access"
	creditUC "medquote-backend/internal/usecase/credit"
	"medquote-backend/pkg/id"
)

type Options struct {
	StartingCredits int64
	CodeMaxAttempts int
}

type Usecase struct {
	uow             uow.UnitOfWork
	guard           *access.Guard
	startingCredits int64
	codeAttempts    int
	newCode         func() (string, error)
}

func NewUsecase(tx uow.UnitOfWork, guard *access.Guard, opts Options) *Usecase {
	if opts.CodeMaxAttempts < 1 {
		opts.CodeMaxAttempts = 10
	}
	return &Usecase{
		uow:             tx,
		guard:           guard,
		startingCredits: opts.StartingCredits,
		codeAttempts:    opts.CodeMaxAttempts,
		newCode:         randomHospitalCode,
	}
}

// HOSP- followed by five random digits.
func randomHospitalCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("HOSP-%05d", n.Int64()), nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (u *Usecase) RegisterHospital(ctx context.Context, identity string, in RegisterHospitalInput) (*access.Profile, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, errs.ErrUnauthenticated
	}
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	var p *access.Profile
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := ensureUnregistered(ctx, r, identity); err != nil {
			return err
		}
		uid := id.NewID32()
		h := &account.Hospital{
			ID:                 id.NewID32(),
			Name:               in.Name,
			ContactPerson:      in.ContactPerson,
			Email:              in.Email,
			Phone:              in.Phone,
			LicenseRef:         in.LicenseRef,
			VerificationStatus: account.StatusPending,
			CreatedBy:          uid,
		}
		if err := u.insertHospital(ctx, r, h); err != nil {
			return err
		}
		usr := &account.User{
			ID:                 uid,
			ExternalID:         identity,
			Name:               in.ContactPerson,
			Email:              in.Email,
			Phone:              in.Phone,
			AccountType:        account.TypeHospital,
			VerificationStatus: account.StatusPending,
			IsActive:           true,
			HospitalID:         &h.ID,
		}
		if err := createUser(ctx, r, usr); err != nil {
			return err
		}
		p = &access.Profile{User: usr, Hospital: h}
		return nil
	})
	if err != nil {
		return nil, err
	}
	applog.Ctx(ctx).Info("hospital registered", zap.String("hospital_id", p.Hospital.ID), zap.String("code", p.Hospital.Code))
	return p, nil
}

func (u *Usecase) RegisterSupplier(ctx context.Context, identity string, in RegisterSupplierInput) (*access.Profile, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, errs.ErrUnauthenticated
	}
	in.Email = normalizeEmail(in.Email)
	in.CompanyName = strings.TrimSpace(in.CompanyName)

	var (
		p       *access.Profile
		welcome *credit.Transaction
	)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := ensureUnregistered(ctx, r, identity); err != nil {
			return err
		}
		uid := id.NewID32()
		s := &account.Supplier{
			ID:                 id.NewID32(),
			CompanyName:        in.CompanyName,
			ContactPerson:      in.ContactPerson,
			Email:              in.Email,
			Phone:              in.Phone,
			VerificationStatus: account.StatusPending,
			IsActive:           true,
			DocumentRefs:       in.DocumentRefs,
			CreatedBy:          uid,
		}
		if err := u.insertSupplier(ctx, r, s, in.CategoryIDs, in.Products); err != nil {
			return err
		}
		if u.startingCredits > 0 {
			var err error
			if welcome, err = creditUC.Post(ctx, r, s, credit.TypeAdminAdjustment, u.startingCredits, "welcome credits", nil); err != nil {
				return err
			}
		}
		usr := &account.User{
			ID:                 uid,
			ExternalID:         identity,
			Name:               in.ContactPerson,
			Email:              in.Email,
			Phone:              in.Phone,
			AccountType:        account.TypeSupplier,
			VerificationStatus: account.StatusPending,
			IsActive:           true,
			SupplierID:         &s.ID,
		}
		if err := createUser(ctx, r, usr); err != nil {
			return err
		}
		p = &access.Profile{User: usr, Supplier: s}
		return nil
	})
	if err != nil {
		return nil, err
	}
	creditUC.Committed(welcome)
	applog.Ctx(ctx).Info("supplier registered", zap.String("supplier_id", p.Supplier.ID), zap.Int("products", len(in.Products)))
	return p, nil
}

// RegisterHospitalStaff joins an approved hospital by its public code. The
// staff user is verified separately from the hospital.
func (u *Usecase) RegisterHospitalStaff(ctx context.Context, identity string, in RegisterStaffInput) (*access.Profile, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, errs.ErrUnauthenticated
	}

	var p *access.Profile
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		h, err := r.Hospitals.GetByCode(ctx, strings.TrimSpace(in.HospitalCode))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account.ErrHospitalNotFound
		}
		if err != nil {
			return err
		}
		if h.VerificationStatus != account.StatusApproved {
			return account.ErrHospitalNotApproved
		}
		if err := ensureUnregistered(ctx, r, identity); err != nil {
			return err
		}
		usr := &account.User{
			ID:                 id.NewID32(),
			ExternalID:         identity,
			Name:               in.Name,
			Email:              normalizeEmail(in.Email),
			Phone:              in.Phone,
			AccountType:        account.TypeHospitalStaff,
			VerificationStatus: account.StatusPending,
			IsActive:           true,
			HospitalID:         &h.ID,
		}
		if err := createUser(ctx, r, usr); err != nil {
			return err
		}
		p = &access.Profile{User: usr, Hospital: h}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SetupAdminHospital creates an approved hospital owned by the calling admin.
func (u *Usecase) SetupAdminHospital(ctx context.Context, identity string, in RegisterHospitalInput) (*access.Profile, error) {
	admin, err := u.guard.RequireAdmin(ctx, identity)
	if err != nil {
		return nil, err
	}
	in.Email = normalizeEmail(in.Email)

	var p *access.Profile
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if admin.HospitalID != nil {
			return account.ErrAdminHospitalExists
		}
		if _, err := r.Hospitals.GetAdminOwnedBy(ctx, admin.ID); err == nil {
			return account.ErrAdminHospitalExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		h := &account.Hospital{
			ID:                 id.NewID32(),
			Name:               strings.TrimSpace(in.Name),
			ContactPerson:      in.ContactPerson,
			Email:              in.Email,
			Phone:              in.Phone,
			LicenseRef:         in.LicenseRef,
			VerificationStatus: account.StatusApproved,
			AdminOwned:         true,
			CreatedBy:          admin.ID,
		}
		if err := u.insertHospital(ctx, r, h); err != nil {
			return err
		}
		admin.HospitalID = &h.ID
		if err := r.Users.Save(ctx, admin); err != nil {
			return err
		}
		p = &access.Profile{User: admin, Hospital: h}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SetupAdminSupplier creates an approved, unlimited supplier owned by the
// calling admin. Unlimited suppliers start at zero with no ledger rows.
func (u *Usecase) SetupAdminSupplier(ctx context.Context, identity string, in RegisterSupplierInput) (*access.Profile, error) {
	admin, err := u.guard.RequireAdmin(ctx, identity)
	if err != nil {
		return nil, err
	}
	in.Email = normalizeEmail(in.Email)

	var p *access.Profile
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if admin.SupplierID != nil {
			return account.ErrAdminSupplierExists
		}
		if _, err := r.Suppliers.GetAdminOwnedBy(ctx, admin.ID); err == nil {
			return account.ErrAdminSupplierExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		s := &account.Supplier{
			ID:                 id.NewID32(),
			CompanyName:        strings.TrimSpace(in.CompanyName),
			ContactPerson:      in.ContactPerson,
			Email:              in.Email,
			Phone:              in.Phone,
			Unlimited:          true,
			VerificationStatus: account.StatusApproved,
			IsActive:           true,
			AdminOwned:         true,
			DocumentRefs:       in.DocumentRefs,
			CreatedBy:          admin.ID,
		}
		if err := u.insertSupplier(ctx, r, s, in.CategoryIDs, in.Products); err != nil {
			return err
		}
		admin.SupplierID = &s.ID
		if err := r.Users.Save(ctx, admin); err != nil {
			return err
		}
		p = &access.Profile{User: admin, Supplier: s}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func ensureUnregistered(ctx context.Context, r uow.Repos, identity string) error {
	_, err := r.Users.GetByExternalID(ctx, identity)
	if err == nil {
		return account.ErrAlreadyRegistered
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func createUser(ctx context.Context, r uow.Repos, usr *account.User) error {
	err := r.Users.Create(ctx, usr)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return account.ErrAlreadyRegistered
	}
	return err
}

// insertHospital checks uniqueness and allocates a code with bounded retries.
// A duplicate key on insert is a code collision unless a name, email or phone
// twin has appeared in the meantime.
func (u *Usecase) insertHospital(ctx context.Context, r uow.Repos, h *account.Hospital) error {
	if _, err := r.Hospitals.FindDuplicate(ctx, h.Name, h.Email, h.Phone); err == nil {
		return account.ErrHospitalExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	for attempt := 1; attempt <= u.codeAttempts; attempt++ {
		code, err := u.newCode()
		if err != nil {
			return err
		}
		if _, err := r.Hospitals.GetByCode(ctx, code); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		h.Code = code
		err = r.Hospitals.Create(ctx, h)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if _, derr := r.Hospitals.FindDuplicate(ctx, h.Name, h.Email, h.Phone); derr == nil {
			return account.ErrHospitalExists
		}
	}
	applog.Ctx(ctx).Warn("hospital code space exhausted", zap.Int("attempts", u.codeAttempts))
	return account.ErrCodeSpaceExhausted
}

// insertSupplier writes the supplier, its category set and its initial
// products. Product categories join the set.
func (u *Usecase) insertSupplier(ctx context.Context, r uow.Repos, s *account.Supplier, categoryIDs []string, products []ProductInput) error {
	if _, err := r.Suppliers.FindDuplicate(ctx, s.CompanyName, s.Email, s.Phone); err == nil {
		return account.ErrSupplierExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	cats := uniq(categoryIDs)
	for _, p := range products {
		cats = uniq(append(cats, p.CategoryID))
	}
	if len(cats) > 0 {
		n, err := r.Categories.CountActiveByIDs(ctx, cats)
		if err != nil {
			return err
		}
		if n != int64(len(cats)) {
			return catalog.ErrCategoryNotFound
		}
	}

	if err := r.Suppliers.Create(ctx, s); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return account.ErrSupplierExists
		}
		return err
	}
	if err := r.Suppliers.AddCategories(ctx, s.ID, cats); err != nil {
		return err
	}
	if len(products) == 0 {
		return nil
	}
	rows := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		rows = append(rows, catalog.Product{
			ID:               id.NewID32(),
			Name:             p.Name,
			CategoryID:       p.CategoryID,
			SupplierID:       s.ID,
			Unit:             p.Unit,
			DefaultUnitPrice: p.DefaultUnitPrice,
			MinOrderQty:      p.MinOrderQty,
			DeliveryTime:     p.DeliveryTime,
			IsActive:         true,
			ImageRefs:        p.ImageRefs,
		})
	}
	return r.Products.CreateBatch(ctx, rows)
}

func uniq(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, s := range in {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
