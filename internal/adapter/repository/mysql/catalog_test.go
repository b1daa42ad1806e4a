package mysql

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"medquote-backend/internal/domain/account"
	"medquote-backend/internal/domain/catalog"
	"medquote-backend/internal/testutil/testdb"
	"medquote-backend/pkg/id"
)

func TestCategoryRepository_SoftDelete(t *testing.T) {
	db := testdb.Open(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()
	ppe := seedCategory(t, db, "PPE")
	lab := seedCategory(t, db, "Lab")

	if n, _ := repo.CountActiveByIDs(ctx, []string{ppe.ID, lab.ID, id.NewID32()}); n != 2 {
		t.Fatalf("CountActiveByIDs=%d", n)
	}
	if err := repo.SoftDelete(ctx, lab.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := repo.SoftDelete(ctx, lab.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second SoftDelete: err=%v", err)
	}
	if _, err := repo.GetByID(ctx, lab.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("deleted category still visible: err=%v", err)
	}
	active, err := repo.ListActive(ctx)
	if err != nil || len(active) != 1 || active[0].ID != ppe.ID {
		t.Fatalf("ListActive=%+v err=%v", active, err)
	}
	if n, _ := repo.CountActiveByIDs(ctx, nil); n != 0 {
		t.Fatalf("empty ids counted %d", n)
	}
}

func TestProductRepository_ListActive(t *testing.T) {
	db := testdb.Open(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	ppe := seedCategory(t, db, "PPE")
	lab := seedCategory(t, db, "Lab")
	s := seedSupplier(t, db, account.StatusApproved, 0)

	mk := func(categoryID string, active bool) catalog.Product {
		return catalog.Product{
			ID: id.NewID32(), Name: "Item", CategoryID: categoryID, SupplierID: s.ID, Unit: "box",
			DefaultUnitPrice: 2.5, MinOrderQty: 1, DeliveryTime: "1 day", IsActive: active,
			ImageRefs: []string{"img/1.png"},
		}
	}
	if err := repo.CreateBatch(ctx, []catalog.Product{mk(ppe.ID, true), mk(ppe.ID, false), mk(lab.ID, true)}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	all, _ := repo.ListActive(ctx, "")
	if len(all) != 2 {
		t.Fatalf("ListActive(all) len=%d", len(all))
	}
	inPPE, _ := repo.ListActive(ctx, ppe.ID)
	if len(inPPE) != 1 || len(inPPE[0].ImageRefs) != 1 {
		t.Fatalf("ListActive(ppe)=%+v", inPPE)
	}
	if n, _ := repo.CountByCategory(ctx, ppe.ID); n != 2 {
		t.Fatalf("CountByCategory counts inactive too, got %d", n)
	}
	if mine, _ := repo.ListBySupplier(ctx, s.ID); len(mine) != 3 {
		t.Fatalf("ListBySupplier len=%d", len(mine))
	}
}
