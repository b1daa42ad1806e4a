package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	applog "medquote-backend/internal/infrastructure/logger"
)

const SignatureHeader = "X-Signature"

type CheckoutRequest struct {
	SupplierID string
	PackageID  string
	Credits    int64
	PriceCents int64
}

type Session struct {
	ID  string `json:"session_id"`
	URL string `json:"checkout_url"`
}

// SimulatedProvider hands out local checkout URLs. The payment page (or a
// test) later calls the webhook with a body signed by Sign.
type SimulatedProvider struct {
	baseURL string
}

func NewSimulatedProvider(baseURL string) *SimulatedProvider {
	return &SimulatedProvider{baseURL: strings.TrimRight(baseURL, "?")}
}

func (p *SimulatedProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Session, error) {
	sid := "cs_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	q := url.Values{}
	q.Set("session", sid)
	q.Set("package", req.PackageID)
	q.Set("supplier", req.SupplierID)
	applog.Ctx(ctx).Info("checkout session created",
		zap.String("session_id", sid), zap.String("supplier_id", req.SupplierID), zap.String("package_id", req.PackageID))
	return &Session{ID: sid, URL: p.baseURL + "?" + q.Encode()}, nil
}

// Sign returns the hex HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	want, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), want)
}
