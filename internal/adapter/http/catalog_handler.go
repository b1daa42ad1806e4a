package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"medquote-backend/internal/usecase/catalog"
)

type CatalogHandler struct{ uc *catalog.Usecase }

func NewCatalogHandler(uc *catalog.Usecase) *CatalogHandler { return &CatalogHandler{uc: uc} }

type productActiveReq struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *CatalogHandler) Categories(c echo.Context) error {
	out, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) Products(c echo.Context) error {
	out, err := h.uc.ListProducts(c.Request().Context(), c.QueryParam("category_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) MyProducts(c echo.Context) error {
	out, err := h.uc.ListMine(c.Request().Context(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	var req catalog.ProductInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	p, err := h.uc.CreateProduct(c.Request().Context(), identity(c), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	var req catalog.ProductInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	p, err := h.uc.UpdateProduct(c.Request().Context(), identity(c), c.Param("product_id"), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHandler) SetProductActive(c echo.Context) error {
	var req productActiveReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	p, err := h.uc.SetProductActive(c.Request().Context(), identity(c), c.Param("product_id"), *req.Active)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
