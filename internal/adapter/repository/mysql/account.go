package mysql

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medquote-backend/internal/domain/account"
)

var forUpdate = clause.Locking{Strength: "UPDATE"}

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *account.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) Save(ctx context.Context, u *account.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*account.User, error) {
	var out account.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*account.User, error) {
	var out account.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepository) ListByHospitalID(ctx context.Context, hospitalID string) ([]account.User, error) {
	var out []account.User
	err := r.db.WithContext(ctx).Where("hospital_id = ?", hospitalID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *UserRepository) ListBySupplierID(ctx context.Context, supplierID string) ([]account.User, error) {
	var out []account.User
	err := r.db.WithContext(ctx).Where("supplier_id = ?", supplierID).Order("created_at ASC").Find(&out).Error
	return out, err
}

type HospitalRepository struct{ db *gorm.DB }

func NewHospitalRepository(db *gorm.DB) *HospitalRepository { return &HospitalRepository{db: db} }

func (r *HospitalRepository) Create(ctx context.Context, h *account.Hospital) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *HospitalRepository) Save(ctx context.Context, h *account.Hospital) error {
	return r.db.WithContext(ctx).Save(h).Error
}

func (r *HospitalRepository) GetByID(ctx context.Context, id string) (*account.Hospital, error) {
	var out account.Hospital
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *HospitalRepository) GetByCode(ctx context.Context, code string) (*account.Hospital, error) {
	var out account.Hospital
	if err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(code)).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *HospitalRepository) FindDuplicate(ctx context.Context, name, email, phone string) (*account.Hospital, error) {
	var out account.Hospital
	err := r.db.WithContext(ctx).
		Where("email = ? OR phone = ? OR LOWER(name) = ?", email, phone, strings.ToLower(strings.TrimSpace(name))).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *HospitalRepository) GetAdminOwnedBy(ctx context.Context, userID string) (*account.Hospital, error) {
	var out account.Hospital
	if err := r.db.WithContext(ctx).Where("admin_owned = ? AND created_by = ?", true, userID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *HospitalRepository) ListByStatus(ctx context.Context, status account.VerificationStatus) ([]account.Hospital, error) {
	var out []account.Hospital
	err := r.db.WithContext(ctx).Where("verification_status = ?", status).Order("created_at ASC").Find(&out).Error
	return out, err
}

type SupplierRepository struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) *SupplierRepository { return &SupplierRepository{db: db} }

func (r *SupplierRepository) Create(ctx context.Context, s *account.Supplier) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SupplierRepository) Save(ctx context.Context, s *account.Supplier) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*account.Supplier, error) {
	var out account.Supplier
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *SupplierRepository) GetByIDForUpdate(ctx context.Context, id string) (*account.Supplier, error) {
	var out account.Supplier
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *SupplierRepository) FindDuplicate(ctx context.Context, companyName, email, phone string) (*account.Supplier, error) {
	var out account.Supplier
	err := r.db.WithContext(ctx).
		Where("email = ? OR phone = ? OR LOWER(company_name) = ?", email, phone, strings.ToLower(strings.TrimSpace(companyName))).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *SupplierRepository) GetAdminOwnedBy(ctx context.Context, userID string) (*account.Supplier, error) {
	var out account.Supplier
	if err := r.db.WithContext(ctx).Where("admin_owned = ? AND created_by = ?", true, userID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *SupplierRepository) AddCategories(ctx context.Context, supplierID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	rows := make([]account.SupplierCategory, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		rows = append(rows, account.SupplierCategory{SupplierID: supplierID, CategoryID: id})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *SupplierRepository) CategoryIDs(ctx context.Context, supplierID string) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).Model(&account.SupplierCategory{}).
		Where("supplier_id = ?", supplierID).
		Order("category_id").
		Pluck("category_id", &out).Error
	return out, err
}

func (r *SupplierRepository) ListApprovedByCategory(ctx context.Context, categoryID string) ([]account.Supplier, error) {
	var out []account.Supplier
	err := r.db.WithContext(ctx).
		Joins("JOIN supplier_categories sc ON sc.supplier_id = suppliers.id").
		Where("sc.category_id = ? AND suppliers.verification_status = ? AND suppliers.is_active = ?",
			categoryID, account.StatusApproved, true).
		Find(&out).Error
	return out, err
}

func (r *SupplierRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&account.SupplierCategory{}).Where("category_id = ?", categoryID).Count(&n).Error
	return n, err
}

func (r *SupplierRepository) ListByStatus(ctx context.Context, status account.VerificationStatus) ([]account.Supplier, error) {
	var out []account.Supplier
	err := r.db.WithContext(ctx).Where("verification_status = ?", status).Order("created_at ASC").Find(&out).Error
	return out, err
}
