package account

import "context"

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	// Users linked to a hospital (owner and staff) or to a supplier.
	ListByHospitalID(ctx context.Context, hospitalID string) ([]User, error)
	ListBySupplierID(ctx context.Context, supplierID string) ([]User, error)
}

type HospitalRepository interface {
	Create(ctx context.Context, h *Hospital) error
	Save(ctx context.Context, h *Hospital) error
	GetByID(ctx context.Context, id string) (*Hospital, error)
	GetByCode(ctx context.Context, code string) (*Hospital, error)
	// FindDuplicate returns any hospital sharing the email, the phone, or the
	// case-insensitive name.
	FindDuplicate(ctx context.Context, name, email, phone string) (*Hospital, error)
	GetAdminOwnedBy(ctx context.Context, userID string) (*Hospital, error)
	ListByStatus(ctx context.Context, status VerificationStatus) ([]Hospital, error)
}

type SupplierRepository interface {
	Create(ctx context.Context, s *Supplier) error
	Save(ctx context.Context, s *Supplier) error
	GetByID(ctx context.Context, id string) (*Supplier, error)
	// GetByIDForUpdate locks the supplier row; only meaningful inside a tx.
	GetByIDForUpdate(ctx context.Context, id string) (*Supplier, error)
	FindDuplicate(ctx context.Context, companyName, email, phone string) (*Supplier, error)
	GetAdminOwnedBy(ctx context.Context, userID string) (*Supplier, error)
	ListByStatus(ctx context.Context, status VerificationStatus) ([]Supplier, error)

	AddCategories(ctx context.Context, supplierID string, categoryIDs []string) error
	CategoryIDs(ctx context.Context, supplierID string) ([]string, error)
	ListApprovedByCategory(ctx context.Context, categoryID string) ([]Supplier, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
}
