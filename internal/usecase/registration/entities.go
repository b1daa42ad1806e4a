package registration

type RegisterHospitalInput struct {
	Name          string  `json:"name" validate:"required,max=255"`
	ContactPerson string  `json:"contact_person" validate:"required,max=255"`
	Email         string  `json:"email" validate:"required,email,max=255"`
	Phone         string  `json:"phone" validate:"required,e164ish"`
	LicenseRef    *string `json:"license_ref,omitempty" validate:"omitempty,max=255"`
}

type ProductInput struct {
	Name             string   `json:"name" validate:"required,max=255"`
	CategoryID       string   `json:"category_id" validate:"required,hex32"`
	Unit             string   `json:"unit" validate:"required,max=32"`
	DefaultUnitPrice float64  `json:"default_unit_price" validate:"gt=0,dec2"`
	MinOrderQty      int      `json:"min_order_quantity" validate:"gte=1"`
	DeliveryTime     string   `json:"delivery_time" validate:"required,max=64"`
	ImageRefs        []string `json:"image_refs,omitempty" validate:"omitempty,max=10,dive,max=512"`
}

type RegisterSupplierInput struct {
	CompanyName   string         `json:"company_name" validate:"required,max=255"`
	ContactPerson string         `json:"contact_person" validate:"required,max=255"`
	Email         string         `json:"email" validate:"required,email,max=255"`
	Phone         string         `json:"phone" validate:"required,e164ish"`
	CategoryIDs   []string       `json:"category_ids" validate:"required,min=1,dive,hex32"`
	DocumentRefs  []string       `json:"document_refs,omitempty" validate:"omitempty,max=10,dive,max=512"`
	Products      []ProductInput `json:"products,omitempty" validate:"omitempty,max=100,dive"`
}

type RegisterStaffInput struct {
	HospitalCode string `json:"hospital_code" validate:"required,hospcode"`
	Name         string `json:"name" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email,max=255"`
	Phone        string `json:"phone" validate:"omitempty,e164ish"`
}
