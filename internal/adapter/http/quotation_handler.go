package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"medquote-backend/internal/usecase/quotation"
)

type QuotationHandler struct{ uc *quotation.Usecase }

func NewQuotationHandler(uc *quotation.Usecase) *QuotationHandler { return &QuotationHandler{uc: uc} }

func (h *QuotationHandler) Submit(c echo.Context) error {
	var req quotation.SubmitInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	q, err := h.uc.Submit(c.Request().Context(), identity(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, q)
}

func (h *QuotationHandler) Update(c echo.Context) error {
	var req quotation.UpdateInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	q, err := h.uc.Update(c.Request().Context(), identity(c), c.Param("quotation_id"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *QuotationHandler) Withdraw(c echo.Context) error {
	out, err := h.uc.Withdraw(c.Request().Context(), identity(c), c.Param("quotation_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *QuotationHandler) Accept(c echo.Context) error {
	q, err := h.uc.Accept(c.Request().Context(), identity(c), c.Param("quotation_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *QuotationHandler) ListMine(c echo.Context) error {
	out, err := h.uc.ListForSupplier(c.Request().Context(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *QuotationHandler) ListForRFQ(c echo.Context) error {
	out, err := h.uc.ListForRFQ(c.Request().Context(), identity(c), c.Param("rfq_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
