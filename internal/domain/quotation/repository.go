package quotation

import "context"

type Repository interface {
	Create(ctx context.Context, q *Quotation) error
	Save(ctx context.Context, q *Quotation) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Quotation, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Quotation, error)
	GetByRFQAndSupplier(ctx context.Context, rfqID, supplierID string) (*Quotation, error)
	ListByRFQ(ctx context.Context, rfqID string) ([]Quotation, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]Quotation, error)
	// RejectPendingExcept rejects every pending sibling of keepID on rfqID.
	RejectPendingExcept(ctx context.Context, rfqID, keepID string) (int64, error)
	// CountByRFQs returns the number of quotations per rfq id.
	CountByRFQs(ctx context.Context, rfqIDs []string) (map[string]int64, error)
	// QuotedRFQIDs returns the subset of rfqIDs the supplier has quoted.
	QuotedRFQIDs(ctx context.Context, supplierID string, rfqIDs []string) (map[string]bool, error)
}
