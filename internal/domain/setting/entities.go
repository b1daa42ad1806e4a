package setting

import (
	"context"
	"time"
)

const KeyCreditSystemEnabled = "credit_system_enabled"

// Table: settings (key/value admin switches)
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"size:255;not null" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }

// Reader is the read side injected into credit checks.
type Reader interface {
	CreditSystemEnabled(ctx context.Context) (bool, error)
}

type Repository interface {
	Reader
	SetCreditSystemEnabled(ctx context.Context, enabled bool) error
}
