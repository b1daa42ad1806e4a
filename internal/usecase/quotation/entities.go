package quotation

type SubmitInput struct {
	RFQID        string  `json:"rfq_id" validate:"required,hex32"`
	UnitPrice    float64 `json:"unit_price" validate:"gt=0,dec2"`
	DeliveryTime string  `json:"delivery_time" validate:"required,max=64"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	ProductID    *string `json:"product_id,omitempty" validate:"omitempty,hex32"`
}

type UpdateInput struct {
	UnitPrice    float64 `json:"unit_price" validate:"gt=0,dec2"`
	DeliveryTime string  `json:"delivery_time" validate:"required,max=64"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type WithdrawDTO struct {
	QuotationID  string `json:"quotation_id"`
	Refunded     int64  `json:"refunded"`
	BalanceAfter int64  `json:"balance_after"`
}

type Options struct {
	// low_credits fires once a debit leaves the balance at or below this.
	LowCreditThreshold int64
}
