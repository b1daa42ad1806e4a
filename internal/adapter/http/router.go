package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health       *Handler
	Registration *RegistrationHandler
	RFQ          *RFQHandler
	Quotation    *QuotationHandler
	Catalog      *CatalogHandler
	Credit       *CreditHandler
	Admin        *AdminHandler
	Notification *NotificationHandler
}

// Register mounts the API. protected runs on every /api/v1 route except the
// payment webhook, which authenticates by signature instead.
func Register(e *echo.Echo, h Handlers, protected ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)
	e.POST("/api/v1/payments/webhook", h.Credit.PaymentWebhook)

	api := e.Group("/api/v1", protected...)

	api.GET("/me", h.Registration.Profile)
	api.POST("/register/hospital", h.Registration.RegisterHospital)
	api.POST("/register/supplier", h.Registration.RegisterSupplier)
	api.POST("/register/staff", h.Registration.RegisterStaff)

	api.GET("/categories", h.Catalog.Categories)
	api.GET("/products", h.Catalog.Products)
	api.GET("/supplier/products", h.Catalog.MyProducts)
	api.POST("/supplier/products", h.Catalog.CreateProduct)
	api.PUT("/supplier/products/:product_id", h.Catalog.UpdateProduct)
	api.PATCH("/supplier/products/:product_id/active", h.Catalog.SetProductActive)

	api.POST("/rfqs", h.RFQ.Create)
	api.GET("/rfqs", h.RFQ.List)
	api.GET("/rfqs/available", h.RFQ.Available)
	api.GET("/rfqs/:rfq_id", h.RFQ.Get)
	api.PATCH("/rfqs/:rfq_id/status", h.RFQ.UpdateStatus)
	api.GET("/rfqs/:rfq_id/quotations", h.Quotation.ListForRFQ)

	api.POST("/quotations", h.Quotation.Submit)
	api.GET("/quotations", h.Quotation.ListMine)
	api.PUT("/quotations/:quotation_id", h.Quotation.Update)
	api.DELETE("/quotations/:quotation_id", h.Quotation.Withdraw)
	api.POST("/quotations/:quotation_id/accept", h.Quotation.Accept)

	api.GET("/credits/packages", h.Credit.Packages)
	api.GET("/credits/balance", h.Credit.Balance)
	api.GET("/credits/history", h.Credit.History)
	api.POST("/credits/checkout", h.Credit.Checkout)

	api.GET("/notifications", h.Notification.List)
	api.POST("/notifications/read-all", h.Notification.MarkAllRead)
	api.POST("/notifications/:notification_id/read", h.Notification.MarkRead)

	adm := api.Group("/admin")
	adm.POST("/setup/hospital", h.Registration.SetupAdminHospital)
	adm.POST("/setup/supplier", h.Registration.SetupAdminSupplier)
	adm.GET("/pending", h.Admin.Pending)
	adm.PATCH("/hospitals/:hospital_id/verification", h.Admin.VerifyHospital)
	adm.PATCH("/suppliers/:supplier_id/verification", h.Admin.VerifySupplier)
	adm.PATCH("/users/:user_id/verification", h.Admin.VerifyUser)
	adm.GET("/settings/credit-system", h.Admin.CreditSystem)
	adm.PUT("/settings/credit-system", h.Admin.SetCreditSystem)
	adm.POST("/suppliers/:supplier_id/credits", h.Admin.AdjustCredits)
	adm.GET("/suppliers/:supplier_id/credits/consistency", h.Admin.Consistency)
	adm.POST("/rfqs/:rfq_id/auto-quotations", h.Admin.RetriggerAutoQuotation)
	adm.POST("/categories", h.Admin.CreateCategory)
	adm.DELETE("/categories/:category_id", h.Admin.DeleteCategory)
}
