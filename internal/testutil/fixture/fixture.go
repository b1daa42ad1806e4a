// Package fixture seeds a sqlite-backed store for usecase tests.
package fixture

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"medquote-backend/internal/adapter/repository/mysql"
	"medquote-backend/internal/domain/account"
	"medquote-backend/internal/domain/catalog"
	"medquote-backend/internal/domain/credit"
	"medquote-backend/internal/domain/rfq"
	"medquote-backend/internal/domain/uow"
	"medquote-backend/internal/testutil/testdb"
	"medquote-backend/pkg/id"
)

type Env struct {
	DB       *gorm.DB
	UoW      *mysql.GormUoW
	Repos    uow.Repos
	Notes    *mysql.NotificationRepository
	Settings *mysql.SettingRepository
}

func New(t *testing.T) *Env {
	t.Helper()
	db := testdb.Open(t)
	u := mysql.NewGormUoW(db)
	return &Env{
		DB:       db,
		UoW:      u,
		Repos:    u.Repos(),
		Notes:    mysql.NewNotificationRepository(db),
		Settings: mysql.NewSettingRepository(db),
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
}

func (e *Env) Category(t *testing.T, name string) *catalog.Category {
	t.Helper()
	c := &catalog.Category{ID: id.NewID32(), Name: name, IsActive: true}
	must(t, e.Repos.Categories.Create(context.Background(), c))
	return c
}

func (e *Env) Admin(t *testing.T, identity string) *account.User {
	t.Helper()
	u := &account.User{
		ID: id.NewID32(), ExternalID: identity, Name: "admin",
		AccountType: account.TypeAdmin, VerificationStatus: account.StatusApproved, IsActive: true,
	}
	must(t, e.Repos.Users.Create(context.Background(), u))
	return u
}

// Hospital seeds a hospital and its owner; both share status.
func (e *Env) Hospital(t *testing.T, identity string, status account.VerificationStatus) (*account.User, *account.Hospital) {
	t.Helper()
	ctx := context.Background()
	uid := id.NewID32()
	suffix := uid[:8]
	h := &account.Hospital{
		ID: id.NewID32(), Code: "HOSP-" + suffix[:5], Name: "Hospital " + suffix,
		ContactPerson: "Dr. " + suffix, Email: suffix + "@hospital.test", Phone: "+1" + suffix,
		VerificationStatus: status, CreatedBy: uid,
	}
	must(t, e.Repos.Hospitals.Create(ctx, h))
	u := &account.User{
		ID: uid, ExternalID: identity, Name: h.ContactPerson, Email: h.Email,
		AccountType: account.TypeHospital, VerificationStatus: status, IsActive: true, HospitalID: &h.ID,
	}
	must(t, e.Repos.Users.Create(ctx, u))
	return u, h
}

// Supplier seeds an approved supplier with an opening ledger row for balance,
// so balance and ledger agree from the start.
func (e *Env) Supplier(t *testing.T, identity string, balance int64, categoryIDs ...string) (*account.User, *account.Supplier) {
	t.Helper()
	ctx := context.Background()
	uid := id.NewID32()
	suffix := uid[:8]
	s := &account.Supplier{
		ID: id.NewID32(), CompanyName: "Supplier " + suffix, ContactPerson: "Ms. " + suffix,
		Email: suffix + "@supplier.test", Phone: "+2" + suffix, CreditBalance: balance,
		VerificationStatus: account.StatusApproved, IsActive: true, CreatedBy: uid,
	}
	must(t, e.Repos.Suppliers.Create(ctx, s))
	if balance > 0 {
		must(t, e.Repos.Credits.Append(ctx, &credit.Transaction{
			ID: id.NewID32(), SupplierID: s.ID, Amount: balance, Type: credit.TypeAdminAdjustment,
			Description: "opening balance", BalanceAfter: balance,
		}))
	}
	if len(categoryIDs) > 0 {
		must(t, e.Repos.Suppliers.AddCategories(ctx, s.ID, categoryIDs))
	}
	u := &account.User{
		ID: uid, ExternalID: identity, Name: s.ContactPerson, Email: s.Email,
		AccountType: account.TypeSupplier, VerificationStatus: account.StatusApproved, IsActive: true, SupplierID: &s.ID,
	}
	must(t, e.Repos.Users.Create(ctx, u))
	return u, s
}

func (e *Env) Product(t *testing.T, supplierID, categoryID string, price float64) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		ID: id.NewID32(), Name: "Gloves", CategoryID: categoryID, SupplierID: supplierID,
		Unit: "box", DefaultUnitPrice: price, MinOrderQty: 1, DeliveryTime: "3 days", IsActive: true,
	}
	must(t, e.Repos.Products.Create(context.Background(), p))
	return p
}

func (e *Env) RFQ(t *testing.T, h *account.Hospital, createdBy, categoryID string, qty int) *rfq.RFQ {
	t.Helper()
	r := &rfq.RFQ{
		ID: id.NewID32(), HospitalID: h.ID, ProductName: "Nitrile gloves", CategoryID: categoryID,
		Quantity: qty, Unit: "box", DeliveryLocation: "Ward 3", Urgency: rfq.UrgencyStandard,
		Status: rfq.StatusOpen, CreatedBy: createdBy, StatusUpdatedAt: time.Now().UTC(),
	}
	must(t, e.Repos.RFQs.Create(context.Background(), r))
	return r
}

// AssertLedger fails when the cached balance drifts from the ledger sum.
func (e *Env) AssertLedger(t *testing.T, supplierID string) int64 {
	t.Helper()
	ctx := context.Background()
	s, err := e.Repos.Suppliers.GetByID(ctx, supplierID)
	must(t, err)
	sum, err := e.Repos.Credits.SumBySupplier(ctx, supplierID)
	must(t, err)
	if sum != s.CreditBalance {
		t.Fatalf("ledger drift for %s: balance=%d sum=%d", supplierID, s.CreditBalance, sum)
	}
	return s.CreditBalance
}
