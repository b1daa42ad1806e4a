package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var secret = []byte("test-secret")

func sign(t *testing.T, key []byte, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func claims(sub string, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    "medquote-idp",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
}

func serve(t *testing.T, authz string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	var seen string
	e.GET("/me", func(c echo.Context) error {
		seen = Identity(c)
		return c.NoContent(http.StatusNoContent)
	}, Auth(secret, "medquote-idp"))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuth_ValidToken(t *testing.T) {
	tok := sign(t, secret, jwt.SigningMethodHS256, claims("auth0|hospital-1", time.Hour))
	rec, identity := serve(t, "Bearer "+tok)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("want 204, got %d body=%s", rec.Code, rec.Body.String())
	}
	if identity != "auth0|hospital-1" {
		t.Fatalf("identity=%q", identity)
	}
}

func TestAuth_Rejections(t *testing.T) {
	noExp := claims("auth0|x", time.Hour)
	noExp.ExpiresAt = nil
	wrongIss := claims("auth0|x", time.Hour)
	wrongIss.Issuer = "someone-else"

	cases := []struct {
		name  string
		authz string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty bearer", "Bearer  "},
		{"garbage", "Bearer not.a.jwt"},
		{"wrong key", "Bearer " + sign(t, []byte("other"), jwt.SigningMethodHS256, claims("auth0|x", time.Hour))},
		{"wrong alg", "Bearer " + sign(t, secret, jwt.SigningMethodHS512, claims("auth0|x", time.Hour))},
		{"expired", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, claims("auth0|x", -time.Minute))},
		{"no expiry", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, noExp)},
		{"wrong issuer", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, wrongIss)},
		{"no subject", "Bearer " + sign(t, secret, jwt.SigningMethodHS256, claims("", time.Hour))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, identity := serve(t, tc.authz)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("want 401, got %d", rec.Code)
			}
			if identity != "" {
				t.Fatalf("handler ran with identity %q", identity)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, c.Get("X-Request-ID").(string)) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	minted := rec.Header().Get("X-Request-ID")
	if len(minted) != 36 || rec.Body.String() != minted {
		t.Fatalf("minted id=%q body=%q", minted, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "upstream-123" {
		t.Fatalf("caller id not kept: %q", rec.Header().Get("X-Request-ID"))
	}
}
