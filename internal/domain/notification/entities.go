package notification

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"medquote-backend/internal/domain/errs"
)

type Type string

const (
	TypeNewRFQ             Type = "new_rfq"
	TypeQuotationSubmitted Type = "quotation_submitted"
	TypeQuotationAccepted  Type = "quotation_accepted"
	TypeQuotationRejected  Type = "quotation_rejected"
	TypeRFQClosed          Type = "rfq_closed"
	TypeAccountVerified    Type = "account_verified"
	TypeAccountRejected    Type = "account_rejected"
	TypeLowCredits         Type = "low_credits"
)

var ErrNotFound = errs.New(errs.KindNotFound, "notification not found")

// Table: notifications
type Notification struct {
	ID          string            `gorm:"primaryKey;type:char(32)" json:"id"`
	UserID      string            `gorm:"type:char(32);not null;index:idx_notifications_user_read" json:"user_id"`
	Type        Type              `gorm:"size:32;not null" json:"type"`
	Title       string            `gorm:"size:255;not null" json:"title"`
	Message     string            `gorm:"type:text;not null" json:"message"`
	IsRead      bool              `gorm:"not null;index:idx_notifications_user_read" json:"is_read"`
	RFQID       *string           `gorm:"column:rfq_id;type:char(32)" json:"rfq_id,omitempty"`
	QuotationID *string           `gorm:"type:char(32)" json:"quotation_id,omitempty"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

type Repository interface {
	CreateBatch(ctx context.Context, ns []Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// Message is one outbound notification. Recipients are every user linked to
// HospitalID or SupplierID, plus UserIDs.
type Message struct {
	Type        Type
	Title       string
	Body        string
	RFQID       *string
	QuotationID *string
	Metadata    map[string]any

	UserIDs    []string
	HospitalID string
	SupplierID string
}

// Notifier is best-effort: it never reports failure to the caller.
type Notifier interface {
	Notify(ctx context.Context, msgs ...Message)
}
