package admin

import "medquote-backend/internal/domain/account"

type VerificationInput struct {
	Status account.VerificationStatus `json:"status" validate:"required,oneof=approved rejected"`
}

type CategoryInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

type AdjustInput struct {
	Delta       int64  `json:"delta" validate:"required"`
	Description string `json:"description" validate:"max=512"`
}

type CreditSystemInput struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type PendingDTO struct {
	Hospitals []account.Hospital `json:"hospitals"`
	Suppliers []account.Supplier `json:"suppliers"`
}
