package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	domain "medquote-backend/internal/domain/rfq"
	"medquote-backend/internal/usecase/rfq"
)

type RFQHandler struct{ uc *rfq.Usecase }

func NewRFQHandler(uc *rfq.Usecase) *RFQHandler { return &RFQHandler{uc: uc} }

type updateStatusReq struct {
	Status domain.Status `json:"status" validate:"required,oneof=closed"`
}

func (h *RFQHandler) Create(c echo.Context) error {
	var req rfq.CreateInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	r, err := h.uc.Create(c.Request().Context(), identity(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *RFQHandler) List(c echo.Context) error {
	out, err := h.uc.ListForHospital(c.Request().Context(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RFQHandler) Get(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context(), identity(c), c.Param("rfq_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RFQHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	r, err := h.uc.UpdateStatus(c.Request().Context(), identity(c), c.Param("rfq_id"), req.Status)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Available is the supplier's feed of open RFQs in their categories.
func (h *RFQHandler) Available(c echo.Context) error {
	out, err := h.uc.GetAvailable(c.Request().Context(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
