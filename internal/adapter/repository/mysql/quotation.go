package mysql

import (
	"context"

	"gorm.io/gorm"

	"medquote-backend/internal/domain/quotation"
)

type QuotationRepository struct{ db *gorm.DB }

func NewQuotationRepository(db *gorm.DB) *QuotationRepository { return &QuotationRepository{db: db} }

func (r *QuotationRepository) Create(ctx context.Context, q *quotation.Quotation) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *QuotationRepository) Save(ctx context.Context, q *quotation.Quotation) error {
	return r.db.WithContext(ctx).Save(q).Error
}

func (r *QuotationRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&quotation.Quotation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *QuotationRepository) GetByID(ctx context.Context, id string) (*quotation.Quotation, error) {
	var out quotation.Quotation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *QuotationRepository) GetByIDForUpdate(ctx context.Context, id string) (*quotation.Quotation, error) {
	var out quotation.Quotation
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *QuotationRepository) GetByRFQAndSupplier(ctx context.Context, rfqID, supplierID string) (*quotation.Quotation, error) {
	var out quotation.Quotation
	err := r.db.WithContext(ctx).
		Where("rfq_id = ? AND supplier_id = ?", rfqID, supplierID).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *QuotationRepository) ListByRFQ(ctx context.Context, rfqID string) ([]quotation.Quotation, error) {
	var out []quotation.Quotation
	err := r.db.WithContext(ctx).
		Where("rfq_id = ?", rfqID).
		Order("total_price ASC, created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *QuotationRepository) ListBySupplier(ctx context.Context, supplierID string) ([]quotation.Quotation, error) {
	var out []quotation.Quotation
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *QuotationRepository) RejectPendingExcept(ctx context.Context, rfqID, keepID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&quotation.Quotation{}).
		Where("rfq_id = ? AND id <> ? AND status = ?", rfqID, keepID, quotation.StatusPending).
		Update("status", quotation.StatusRejected)
	return res.RowsAffected, res.Error
}

func (r *QuotationRepository) CountByRFQs(ctx context.Context, rfqIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(rfqIDs))
	if len(rfqIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		RFQID string `gorm:"column:rfq_id"`
		N     int64  `gorm:"column:n"`
	}
	err := r.db.WithContext(ctx).Model(&quotation.Quotation{}).
		Select("rfq_id, COUNT(*) AS n").
		Where("rfq_id IN ?", rfqIDs).
		Group("rfq_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.RFQID] = row.N
	}
	return out, nil
}

func (r *QuotationRepository) QuotedRFQIDs(ctx context.Context, supplierID string, rfqIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(rfqIDs))
	if len(rfqIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&quotation.Quotation{}).
		Where("supplier_id = ? AND rfq_id IN ?", supplierID, rfqIDs).
		Pluck("rfq_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
