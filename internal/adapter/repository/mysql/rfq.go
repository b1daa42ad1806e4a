package mysql

import (
	"context"

	"gorm.io/gorm"

	rfqDomain "medquote-backend/internal/domain/rfq"
)

type RFQRepository struct{ db *gorm.DB }

func NewRFQRepository(db *gorm.DB) *RFQRepository { return &RFQRepository{db: db} }

func (r *RFQRepository) Create(ctx context.Context, q *rfqDomain.RFQ) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *RFQRepository) Save(ctx context.Context, q *rfqDomain.RFQ) error {
	return r.db.WithContext(ctx).Save(q).Error
}

func (r *RFQRepository) GetByID(ctx context.Context, id string) (*rfqDomain.RFQ, error) {
	var out rfqDomain.RFQ
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RFQRepository) GetByIDForUpdate(ctx context.Context, id string) (*rfqDomain.RFQ, error) {
	var out rfqDomain.RFQ
	if err := r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RFQRepository) ListByHospital(ctx context.Context, hospitalID string) ([]rfqDomain.RFQ, error) {
	var out []rfqDomain.RFQ
	err := r.db.WithContext(ctx).
		Where("hospital_id = ?", hospitalID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *RFQRepository) ListOpenByCategories(ctx context.Context, categoryIDs []string) ([]rfqDomain.RFQ, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	var out []rfqDomain.RFQ
	err := r.db.WithContext(ctx).
		Where("status = ? AND category_id IN ?", rfqDomain.StatusOpen, categoryIDs).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}
