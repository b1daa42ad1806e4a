package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"medquote-backend/internal/usecase/admin"
)

type AdminHandler struct{ uc *admin.Usecase }

func NewAdminHandler(uc *admin.Usecase) *AdminHandler { return &AdminHandler{uc: uc} }

func (h *AdminHandler) Pending(c echo.Context) error {
	out, err := h.uc.PendingAccounts(c.Request().Context(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) VerifyHospital(c echo.Context) error {
	var req admin.VerificationInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	out, err := h.uc.SetHospitalVerification(c.Request().Context(), identity(c), c.Param("hospital_id"), req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) VerifySupplier(c echo.Context) error {
	var req admin.VerificationInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	out, err := h.uc.SetSupplierVerification(c.Request().Context(), identity(c), c.Param("supplier_id"), req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) VerifyUser(c echo.Context) error {
	var req admin.VerificationInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	out, err := h.uc.SetUserVerification(c.Request().Context(), identity(c), c.Param("user_id"), req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) CreditSystem(c echo.Context) error {
	on, err := h.uc.CreditSystemEnabled(c.Request().Context(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"enabled": on})
}

func (h *AdminHandler) SetCreditSystem(c echo.Context) error {
	var req admin.CreditSystemInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if err := h.uc.SetCreditSystemEnabled(c.Request().Context(), identity(c), *req.Enabled); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"enabled": *req.Enabled})
}

func (h *AdminHandler) AdjustCredits(c echo.Context) error {
	var req admin.AdjustInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	out, err := h.uc.AdjustCredits(c.Request().Context(), identity(c), c.Param("supplier_id"), req.Delta, req.Description)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminHandler) Consistency(c echo.Context) error {
	out, err := h.uc.VerifyConsistency(c.Request().Context(), identity(c), c.Param("supplier_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) RetriggerAutoQuotation(c echo.Context) error {
	if err := h.uc.RetriggerAutoQuotation(c.Request().Context(), identity(c), c.Param("rfq_id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "scheduled"})
}

func (h *AdminHandler) CreateCategory(c echo.Context) error {
	var req admin.CategoryInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	out, err := h.uc.CreateCategory(c.Request().Context(), identity(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminHandler) DeleteCategory(c echo.Context) error {
	if err := h.uc.DeleteCategory(c.Request().Context(), identity(c), c.Param("category_id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
