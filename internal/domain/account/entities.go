package account

import (
	"time"

	"gorm.io/datatypes"

	"medquote-backend/internal/domain/errs"
)

type AccountType string

const (
	TypeHospital      AccountType = "hospital"
	TypeHospitalStaff AccountType = "hospital_staff"
	TypeSupplier      AccountType = "supplier"
	TypeAdmin         AccountType = "admin"
)

type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusApproved VerificationStatus = "approved"
	StatusRejected VerificationStatus = "rejected"
)

// Valid reports whether s is one of the known verification states.
func (s VerificationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

var (
	ErrUserNotFound        = errs.New(errs.KindNotFound, "user not found")
	ErrHospitalNotFound    = errs.New(errs.KindNotFound, "hospital not found")
	ErrSupplierNotFound    = errs.New(errs.KindNotFound, "supplier not found")
	ErrAlreadyRegistered   = errs.New(errs.KindConflict, "caller already has a profile")
	ErrHospitalExists      = errs.New(errs.KindConflict, "hospital with the same name, email or phone already exists")
	ErrSupplierExists      = errs.New(errs.KindConflict, "supplier with the same company name, email or phone already exists")
	ErrHospitalNotApproved = errs.New(errs.KindForbidden, "hospital is not approved")
	ErrSupplierNotApproved = errs.New(errs.KindForbidden, "supplier is not approved")
	ErrAdminHospitalExists = errs.New(errs.KindConflict, "admin already owns a hospital")
	ErrAdminSupplierExists = errs.New(errs.KindConflict, "admin already owns a supplier")
	ErrCodeSpaceExhausted  = errs.New(errs.KindUnavailable, "could not allocate a hospital code, retry later")
	ErrInvalidStatus       = errs.New(errs.KindInvalid, "verification status must be approved or rejected")
)

// Table: users
type User struct {
	ID                 string             `gorm:"primaryKey;type:char(32)" json:"id"`
	ExternalID         string             `gorm:"size:128;not null;uniqueIndex:ux_users_external_id" json:"-"`
	Name               string             `gorm:"size:255;not null" json:"name"`
	Email              string             `gorm:"size:255;not null" json:"email"`
	Phone              string             `gorm:"size:32" json:"phone"`
	AccountType        AccountType        `gorm:"size:32;not null;index" json:"account_type"`
	VerificationStatus VerificationStatus `gorm:"size:16;not null" json:"verification_status"`
	IsActive           bool               `gorm:"not null" json:"is_active"`
	HospitalID         *string            `gorm:"type:char(32);index" json:"hospital_id,omitempty"`
	SupplierID         *string            `gorm:"type:char(32);index" json:"supplier_id,omitempty"`
	CreatedAt          time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) Approved() bool { return u.VerificationStatus == StatusApproved && u.IsActive }

// Table: hospitals
type Hospital struct {
	ID                 string             `gorm:"primaryKey;type:char(32)" json:"id"`
	Code               string             `gorm:"size:16;not null;uniqueIndex:ux_hospitals_code" json:"code"`
	Name               string             `gorm:"size:255;not null;index" json:"name"`
	ContactPerson      string             `gorm:"size:255;not null" json:"contact_person"`
	Email              string             `gorm:"size:255;not null;uniqueIndex:ux_hospitals_email" json:"email"`
	Phone              string             `gorm:"size:32;not null;uniqueIndex:ux_hospitals_phone" json:"phone"`
	LicenseRef         *string            `gorm:"size:255" json:"license_ref,omitempty"`
	VerificationStatus VerificationStatus `gorm:"size:16;not null;index" json:"verification_status"`
	AdminOwned         bool               `gorm:"not null" json:"admin_owned"`
	CreatedBy          string             `gorm:"type:char(32);not null;index" json:"created_by"`
	CreatedAt          time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Hospital) TableName() string { return "hospitals" }

// Table: suppliers
//
// CreditBalance is a cached projection of the supplier's credit ledger and is
// only written together with a ledger row. Unlimited suppliers are never debited.
type Supplier struct {
	ID                 string                      `gorm:"primaryKey;type:char(32)" json:"id"`
	CompanyName        string                      `gorm:"size:255;not null;index" json:"company_name"`
	ContactPerson      string                      `gorm:"size:255;not null" json:"contact_person"`
	Email              string                      `gorm:"size:255;not null;uniqueIndex:ux_suppliers_email" json:"email"`
	Phone              string                      `gorm:"size:32;not null;uniqueIndex:ux_suppliers_phone" json:"phone"`
	CreditBalance      int64                       `gorm:"not null" json:"credit_balance"`
	Unlimited          bool                        `gorm:"not null" json:"unlimited"`
	VerificationStatus VerificationStatus          `gorm:"size:16;not null;index" json:"verification_status"`
	IsActive           bool                        `gorm:"not null" json:"is_active"`
	AdminOwned         bool                        `gorm:"not null" json:"admin_owned"`
	DocumentRefs       datatypes.JSONSlice[string] `json:"document_refs,omitempty"`
	CreatedBy          string                      `gorm:"type:char(32);not null;index" json:"created_by"`
	CreatedAt          time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Supplier) TableName() string { return "suppliers" }

func (s *Supplier) Approved() bool { return s.VerificationStatus == StatusApproved && s.IsActive }

// Table: supplier_categories (supplier's category set)
type SupplierCategory struct {
	SupplierID string    `gorm:"primaryKey;type:char(32)"`
	CategoryID string    `gorm:"primaryKey;type:char(32);index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (SupplierCategory) TableName() string { return "supplier_categories" }
