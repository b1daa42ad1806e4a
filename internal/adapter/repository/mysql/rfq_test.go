package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"medquote-backend/internal/domain/rfq"
	"medquote-backend/internal/testutil/testdb"
)

func TestRFQRepository_Listings(t *testing.T) {
	db := testdb.Open(t)
	repo := NewRFQRepository(db)
	ctx := context.Background()
	ppe := seedCategory(t, db, "PPE")
	lab := seedCategory(t, db, "Lab")
	open := seedRFQ(t, db, ppe.ID, rfq.StatusOpen)
	seedRFQ(t, db, ppe.ID, rfq.StatusClosed)
	seedRFQ(t, db, lab.ID, rfq.StatusOpen)

	got, err := repo.ListOpenByCategories(ctx, []string{ppe.ID})
	if err != nil || len(got) != 1 || got[0].ID != open.ID {
		t.Fatalf("ListOpenByCategories=%+v err=%v", got, err)
	}
	if none, err := repo.ListOpenByCategories(ctx, nil); err != nil || len(none) != 0 {
		t.Fatalf("no categories: %v %v", none, err)
	}
	if mine, _ := repo.ListByHospital(ctx, open.HospitalID); len(mine) != 1 {
		t.Fatalf("ListByHospital len=%d", len(mine))
	}
}

// sqlite ignores row locks, so the locking read is checked against the mysql dialect.
func TestRFQRepository_GetByIDForUpdate_LocksRow(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	gdb, err := gorm.Open(mysqldriver.New(mysqldriver.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	mock.ExpectQuery("SELECT \\* FROM `rfqs` WHERE id = \\? .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("r1", "open"))

	got, err := NewRFQRepository(gdb).GetByIDForUpdate(context.Background(), "r1")
	if err != nil {
		t.Fatalf("GetByIDForUpdate: %v", err)
	}
	if got.ID != "r1" || got.Status != rfq.StatusOpen {
		t.Fatalf("row=%+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
