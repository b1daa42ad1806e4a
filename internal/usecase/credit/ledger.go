package credit

import (
	"context"

	"medquote-backend/internal/domain/account"
	domain "medquote-backend/internal/domain/credit"
	"medquote-backend/internal/domain/uow"
	"medquote-backend/internal/infrastructure/metrics"
	"medquote-backend/pkg/id"
)

// Post appends one ledger row and moves the cached balance with it. s must be
// locked by the caller's transaction (uow.WithinSupplierTx).
func Post(ctx context.Context, r uow.Repos, s *account.Supplier, typ domain.Type, amount int64, description string, reference *string) (*domain.Transaction, error) {
	next, err := domain.Apply(s.CreditBalance, typ, amount)
	if err != nil {
		return nil, err
	}
	t := &domain.Transaction{
		ID:           id.NewID32(),
		SupplierID:   s.ID,
		Amount:       amount,
		Type:         typ,
		Description:  description,
		BalanceAfter: next,
		Reference:    reference,
	}
	if err := r.Credits.Append(ctx, t); err != nil {
		return nil, err
	}
	s.CreditBalance = next
	if err := r.Suppliers.Save(ctx, s); err != nil {
		return nil, err
	}
	return t, nil
}

// Committed counts ledger rows once their transaction has committed.
func Committed(ts ...*domain.Transaction) {
	for _, t := range ts {
		if t != nil {
			metrics.CreditTransactions.WithLabelValues(string(t.Type)).Inc()
		}
	}
}
