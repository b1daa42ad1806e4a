package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"medquote-backend/internal/infrastructure/logger"
	"medquote-backend/internal/infrastructure/payment"
	"medquote-backend/internal/usecase/credit"
)

const maxWebhookBody = 64 << 10

type CreditHandler struct {
	uc            *credit.Usecase
	webhookSecret string
}

func NewCreditHandler(uc *credit.Usecase, webhookSecret string) *CreditHandler {
	return &CreditHandler{uc: uc, webhookSecret: webhookSecret}
}

type checkoutReq struct {
	PackageID string `json:"package_id" validate:"required"`
}

func (h *CreditHandler) Packages(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.Packages())
}

func (h *CreditHandler) Balance(c echo.Context) error {
	out, err := h.uc.Balance(c.Request().Context(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CreditHandler) History(c echo.Context) error {
	out, err := h.uc.History(c.Request().Context(), identity(c), queryInt(c, "limit", 50))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CreditHandler) Checkout(c echo.Context) error {
	var req checkoutReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	out, err := h.uc.StartCheckout(c.Request().Context(), identity(c), req.PackageID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// PaymentWebhook credits a paid session. The raw body must carry a valid
// X-Signature; replays of the same session answer 200 with the original row.
func (h *CreditHandler) PaymentWebhook(c echo.Context) error {
	log := logger.FromContext(c)

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if !payment.VerifySignature(h.webhookSecret, body, c.Request().Header.Get(payment.SignatureHeader)) {
		log.Warn("payment webhook signature rejected")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid signature"})
	}

	var req credit.ConfirmPurchaseInput
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	tx, replayed, err := h.uc.ConfirmPurchase(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	log.Info("payment confirmed",
		zap.String("session_id", req.SessionID), zap.String("supplier_id", req.SupplierID), zap.Bool("replayed", replayed))
	return c.JSON(http.StatusOK, map[string]any{"transaction": tx, "replayed": replayed})
}
