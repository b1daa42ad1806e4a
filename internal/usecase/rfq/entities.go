package rfq

import (
	"medquote-backend/internal/domain/quotation"
	domain "medquote-backend/internal/domain/rfq"
)

type CreateInput struct {
	ProductName      string  `json:"product_name" validate:"required,max=255"`
	CategoryID       string  `json:"category_id" validate:"required,hex32"`
	ProductID        *string `json:"product_id,omitempty" validate:"omitempty,hex32"`
	Quantity         int     `json:"quantity" validate:"gte=1,lte=1000000"`
	Unit             string  `json:"unit" validate:"required,max=32"`
	DeliveryLocation string  `json:"delivery_location" validate:"required,max=512"`
	Urgency          string  `json:"urgency" validate:"omitempty,oneof=standard urgent emergency"`
	Specifications   *string `json:"specifications,omitempty" validate:"omitempty,max=4000"`
}

type SummaryDTO struct {
	domain.RFQ
	QuotationCount int64 `json:"quotation_count"`
}

type DetailDTO struct {
	domain.RFQ
	Quotations []quotation.Quotation `json:"quotations"`
}

// AvailableDTO is the supplier's matching view of an open RFQ.
type AvailableDTO struct {
	domain.RFQ
	AlreadyQuoted  bool  `json:"already_quoted"`
	QuotationCount int64 `json:"quotation_count"`
}
