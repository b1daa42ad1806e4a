package mysql

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medquote-backend/internal/domain/credit"
	"medquote-backend/internal/domain/notification"
	"medquote-backend/internal/domain/setting"
)

type CreditRepository struct{ db *gorm.DB }

func NewCreditRepository(db *gorm.DB) *CreditRepository { return &CreditRepository{db: db} }

func (r *CreditRepository) Append(ctx context.Context, t *credit.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *CreditRepository) ListBySupplier(ctx context.Context, supplierID string, limit int) ([]credit.Transaction, error) {
	var out []credit.Transaction
	q := r.db.WithContext(ctx).Where("supplier_id = ?", supplierID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *CreditRepository) SumBySupplier(ctx context.Context, supplierID string) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&credit.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("supplier_id = ?", supplierID).
		Scan(&sum).Error
	return sum, err
}

func (r *CreditRepository) GetByReference(ctx context.Context, reference string) (*credit.Transaction, error) {
	var out credit.Transaction
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

type NotificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) CreateBatch(ctx context.Context, ns []notification.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&ns).Error
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*notification.Notification, error) {
	var out notification.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]notification.Notification, error) {
	var out []notification.Notification
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

type SettingRepository struct{ db *gorm.DB }

func NewSettingRepository(db *gorm.DB) *SettingRepository { return &SettingRepository{db: db} }

// CreditSystemEnabled defaults to true when the switch was never written.
func (r *SettingRepository) CreditSystemEnabled(ctx context.Context) (bool, error) {
	var s setting.Setting
	err := r.db.WithContext(ctx).Where(&setting.Setting{Key: setting.KeyCreditSystemEnabled}).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return strconv.ParseBool(s.Value)
}

func (r *SettingRepository) SetCreditSystemEnabled(ctx context.Context, enabled bool) error {
	s := setting.Setting{Key: setting.KeyCreditSystemEnabled, Value: strconv.FormatBool(enabled)}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
}
