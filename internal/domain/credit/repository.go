package credit

import "context"

type Repository interface {
	Append(ctx context.Context, t *Transaction) error
	ListBySupplier(ctx context.Context, supplierID string, limit int) ([]Transaction, error)
	SumBySupplier(ctx context.Context, supplierID string) (int64, error)
	GetByReference(ctx context.Context, reference string) (*Transaction, error)
}
