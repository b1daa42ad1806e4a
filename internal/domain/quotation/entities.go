package quotation

import (
	"math"
	"time"

	"medquote-backend/internal/domain/errs"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

var (
	ErrNotFound     = errs.New(errs.KindNotFound, "quotation not found")
	ErrDuplicate    = errs.New(errs.KindConflict, "supplier already quoted this rfq")
	ErrNotPending   = errs.New(errs.KindConflict, "quotation is not pending")
	ErrNotOwner     = errs.New(errs.KindForbidden, "quotation belongs to another supplier")
	ErrInvalidPrice = errs.New(errs.KindInvalid, "unit price must be positive")
)

// Table: quotations. At most one row per (rfq_id, supplier_id).
//
// CreditsCharged is what the submission debited; withdrawal refunds exactly it.
type Quotation struct {
	ID              string    `gorm:"primaryKey;type:char(32)" json:"id"`
	RFQID           string    `gorm:"column:rfq_id;type:char(32);not null;uniqueIndex:ux_quotations_rfq_supplier;index:idx_quotations_rfq_status" json:"rfq_id"`
	SupplierID      string    `gorm:"type:char(32);not null;uniqueIndex:ux_quotations_rfq_supplier;index" json:"supplier_id"`
	ProductID       *string   `gorm:"type:char(32)" json:"product_id,omitempty"`
	UnitPrice       float64   `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	TotalPrice      float64   `gorm:"type:decimal(18,2);not null" json:"total_price"`
	DeliveryTime    string    `gorm:"size:64;not null" json:"delivery_time"`
	Notes           *string   `gorm:"type:text" json:"notes,omitempty"`
	IsAutoGenerated bool      `gorm:"not null" json:"is_auto_generated"`
	CreditsCharged  int64     `gorm:"not null" json:"credits_charged"`
	Status          Status    `gorm:"size:16;not null;index:idx_quotations_rfq_status" json:"status"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Quotation) TableName() string { return "quotations" }

// Reprice sets the unit price and recomputes the total for qty, rounded to cents.
func (q *Quotation) Reprice(unitPrice float64, qty int) {
	q.UnitPrice = unitPrice
	q.TotalPrice = math.Round(unitPrice*float64(qty)*100) / 100
}
