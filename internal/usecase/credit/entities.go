package credit

type Package struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Credits    int64  `json:"credits"`
	PriceCents int64  `json:"price_cents"`
}

var packages = []Package{
	{ID: "pack_10", Name: "Starter", Credits: 10, PriceCents: 1000},
	{ID: "pack_50", Name: "Growth", Credits: 50, PriceCents: 4500},
	{ID: "pack_100", Name: "Pro", Credits: 100, PriceCents: 8000},
}

func findPackage(id string) (Package, bool) {
	for _, p := range packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

type BalanceDTO struct {
	SupplierID          string `json:"supplier_id"`
	Balance             int64  `json:"balance"`
	Unlimited           bool   `json:"unlimited"`
	CreditSystemEnabled bool   `json:"credit_system_enabled"`
}

type CheckoutDTO struct {
	SessionID string  `json:"session_id"`
	URL       string  `json:"checkout_url"`
	Package   Package `json:"package"`
}

type ConfirmPurchaseInput struct {
	SessionID  string `json:"session_id" validate:"required,max=128"`
	SupplierID string `json:"supplier_id" validate:"required,hex32"`
	PackageID  string `json:"package_id" validate:"required"`
}

type ConsistencyDTO struct {
	SupplierID string `json:"supplier_id"`
	Balance    int64  `json:"balance"`
	LedgerSum  int64  `json:"ledger_sum"`
	Consistent bool   `json:"consistent"`
}
