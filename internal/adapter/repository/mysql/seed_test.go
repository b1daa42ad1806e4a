package mysql

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"medquote-backend/internal/domain/account"
	"medquote-backend/internal/domain/catalog"
	"medquote-backend/internal/domain/quotation"
	"medquote-backend/internal/domain/rfq"
	"medquote-backend/pkg/id"
)

func seedCategory(t *testing.T, db *gorm.DB, name string) *catalog.Category {
	t.Helper()
	c := &catalog.Category{ID: id.NewID32(), Name: name, IsActive: true}
	if err := NewCategoryRepository(db).Create(context.Background(), c); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return c
}

func seedSupplier(t *testing.T, db *gorm.DB, status account.VerificationStatus, balance int64) *account.Supplier {
	t.Helper()
	sfx := id.NewID32()[:10]
	s := &account.Supplier{
		ID: id.NewID32(), CompanyName: "Supplier " + sfx, ContactPerson: "Contact " + sfx,
		Email: sfx + "@supplier.test", Phone: "+62" + sfx, CreditBalance: balance,
		VerificationStatus: status, IsActive: true, CreatedBy: id.NewID32(),
	}
	if err := NewSupplierRepository(db).Create(context.Background(), s); err != nil {
		t.Fatalf("seed supplier: %v", err)
	}
	return s
}

func seedRFQ(t *testing.T, db *gorm.DB, categoryID string, status rfq.Status) *rfq.RFQ {
	t.Helper()
	r := &rfq.RFQ{
		ID: id.NewID32(), HospitalID: id.NewID32(), ProductName: "Syringe 5ml", CategoryID: categoryID,
		Quantity: 100, Unit: "pcs", DeliveryLocation: "Pharmacy", Urgency: rfq.UrgencyStandard,
		Status: status, CreatedBy: id.NewID32(), StatusUpdatedAt: time.Now().UTC(),
	}
	if err := NewRFQRepository(db).Create(context.Background(), r); err != nil {
		t.Fatalf("seed rfq: %v", err)
	}
	return r
}

func makeQuotation(rfqID, supplierID string, total float64) *quotation.Quotation {
	return &quotation.Quotation{
		ID: id.NewID32(), RFQID: rfqID, SupplierID: supplierID,
		UnitPrice: total, TotalPrice: total, DeliveryTime: "3 days", Status: quotation.StatusPending,
	}
}
