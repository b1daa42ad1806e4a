package credit

import (
	"time"

	"medquote-backend/internal/domain/errs"
)

type Type string

const (
	TypePurchase        Type = "purchase"
	TypeDeduction       Type = "deduction"
	TypeRefund          Type = "refund"
	TypeAdminAdjustment Type = "admin_adjustment"
)

var (
	ErrInsufficientCredits = errs.New(errs.KindForbidden, "insufficient credits")
	ErrInvalidAmount       = errs.New(errs.KindInvalid, "invalid credit amount for transaction type")
	ErrUnknownPackage      = errs.New(errs.KindNotFound, "credit package not found")
	ErrUnlimitedSupplier   = errs.New(errs.KindConflict, "supplier has unlimited credits")
)

// Table: credit_transactions. Append-only; rows are never updated or deleted.
type Transaction struct {
	ID           string    `gorm:"primaryKey;type:char(32)" json:"id"`
	SupplierID   string    `gorm:"type:char(32);not null;index:idx_credit_tx_supplier_created" json:"supplier_id"`
	Amount       int64     `gorm:"not null" json:"amount"`
	Type         Type      `gorm:"size:32;not null" json:"type"`
	Description  string    `gorm:"size:512;not null" json:"description"`
	BalanceAfter int64     `gorm:"not null" json:"balance_after"`
	Reference    *string   `gorm:"size:128;uniqueIndex:ux_credit_tx_reference" json:"reference,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_credit_tx_supplier_created" json:"created_at"`
}

func (Transaction) TableName() string { return "credit_transactions" }

// Apply validates a ledger movement against the current balance and returns
// the resulting balance. Purchases and refunds must be positive, deductions
// negative, and adjustments non-zero; the result may never go below zero.
func Apply(balance int64, typ Type, amount int64) (int64, error) {
	switch typ {
	case TypePurchase, TypeRefund:
		if amount <= 0 {
			return balance, ErrInvalidAmount
		}
	case TypeDeduction:
		if amount >= 0 {
			return balance, ErrInvalidAmount
		}
	case TypeAdminAdjustment:
		if amount == 0 {
			return balance, ErrInvalidAmount
		}
	default:
		return balance, ErrInvalidAmount
	}
	next := balance + amount
	if next < 0 {
		return balance, ErrInsufficientCredits
	}
	return next, nil
}
