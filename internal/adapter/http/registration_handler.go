package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"medquote-backend/internal/usecase/access"
	"medquote-backend/internal/usecase/registration"
)

type RegistrationHandler struct {
	uc    *registration.Usecase
	guard *access.Guard
}

func NewRegistrationHandler(uc *registration.Usecase, guard *access.Guard) *RegistrationHandler {
	return &RegistrationHandler{uc: uc, guard: guard}
}

func (h *RegistrationHandler) Profile(c echo.Context) error {
	p, err := h.guard.Profile(c.Request().Context(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *RegistrationHandler) RegisterHospital(c echo.Context) error {
	var req registration.RegisterHospitalInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	p, err := h.uc.RegisterHospital(c.Request().Context(), identity(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *RegistrationHandler) RegisterSupplier(c echo.Context) error {
	var req registration.RegisterSupplierInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	p, err := h.uc.RegisterSupplier(c.Request().Context(), identity(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *RegistrationHandler) RegisterStaff(c echo.Context) error {
	var req registration.RegisterStaffInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	p, err := h.uc.RegisterHospitalStaff(c.Request().Context(), identity(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *RegistrationHandler) SetupAdminHospital(c echo.Context) error {
	var req registration.RegisterHospitalInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	p, err := h.uc.SetupAdminHospital(c.Request().Context(), identity(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *RegistrationHandler) SetupAdminSupplier(c echo.Context) error {
	var req registration.RegisterSupplierInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	p, err := h.uc.SetupAdminSupplier(c.Request().Context(), identity(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}
