package rfq

import (
	"time"

	"medquote-backend/internal/domain/errs"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusFulfilled Status = "fulfilled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusFulfilled:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyStandard  Urgency = "standard"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyStandard, UrgencyUrgent, UrgencyEmergency:
		return true
	}
	return false
}

var (
	ErrNotFound          = errs.New(errs.KindNotFound, "rfq not found")
	ErrNotOpen           = errs.New(errs.KindConflict, "rfq is not open")
	ErrInvalidTransition = errs.New(errs.KindConflict, "invalid rfq status transition")
	ErrNotOwner          = errs.New(errs.KindForbidden, "rfq belongs to another hospital")
)

// Table: rfqs
type RFQ struct {
	ID               string    `gorm:"primaryKey;type:char(32)" json:"id"`
	HospitalID       string    `gorm:"type:char(32);not null;index:idx_rfqs_hospital_status" json:"hospital_id"`
	ProductName      string    `gorm:"size:255;not null" json:"product_name"`
	CategoryID       string    `gorm:"type:char(32);not null;index:idx_rfqs_category_status" json:"category_id"`
	ProductID        *string   `gorm:"type:char(32)" json:"product_id,omitempty"`
	Quantity         int       `gorm:"not null" json:"quantity"`
	Unit             string    `gorm:"size:32;not null" json:"unit"`
	DeliveryLocation string    `gorm:"size:512;not null" json:"delivery_location"`
	Urgency          Urgency   `gorm:"size:16;not null" json:"urgency"`
	Specifications   *string   `gorm:"type:text" json:"specifications,omitempty"`
	Status           Status    `gorm:"size:16;not null;index:idx_rfqs_hospital_status;index:idx_rfqs_category_status" json:"status"`
	CreatedBy        string    `gorm:"type:char(32);not null" json:"created_by"`
	StatusUpdatedAt  time.Time `json:"status_updated_at"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RFQ) TableName() string { return "rfqs" }

// CanTransitionTo enforces the one-way machine: open -> closed | fulfilled.
func (r *RFQ) CanTransitionTo(next Status) bool {
	return r.Status == StatusOpen && (next == StatusClosed || next == StatusFulfilled)
}
