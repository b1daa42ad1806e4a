package rfq

import "context"

type Repository interface {
	Create(ctx context.Context, r *RFQ) error
	Save(ctx context.Context, r *RFQ) error
	GetByID(ctx context.Context, id string) (*RFQ, error)
	// GetByIDForUpdate locks the row; status must be re-checked after it.
	GetByIDForUpdate(ctx context.Context, id string) (*RFQ, error)
	ListByHospital(ctx context.Context, hospitalID string) ([]RFQ, error)
	ListOpenByCategories(ctx context.Context, categoryIDs []string) ([]RFQ, error)
}
